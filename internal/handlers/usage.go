package handlers

import (
	"net/http"
	"strings"

	"costbook/internal/costing"
	applog "costbook/internal/log"
)

type usedInResponse struct {
	ItemID uint                `json:"itemId"`
	Type   costing.ItemKind    `json:"type"`
	UsedIn []costing.RecipeRef `json:"usedIn"`
}

// UsedIn lists the recipes that directly contain an ingredient or a recipe.
func UsedIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireStore(w, r) {
		return
	}

	ctx := r.Context()
	query := r.URL.Query()
	itemID, ok := parseID(query.Get("id"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	kind, err := costing.ParseItemKind(strings.ToLower(strings.TrimSpace(query.Get("type"))))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		applog.Error(ctx, "failed to load costing snapshot", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	writeJSON(w, http.StatusOK, usedInResponse{
		ItemID: itemID,
		Type:   kind,
		UsedIn: costing.UsedIn(snapshot, itemID, kind),
	})
}
