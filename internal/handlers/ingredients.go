package handlers

import (
	"net/http"
	"strings"
	"time"

	applog "costbook/internal/log"
	"costbook/models"
)

type ingredientRequest struct {
	Title     string  `json:"title"`
	BaseUnits string  `json:"baseUnits"`
	UnitCost  float64 `json:"unitCost"`
	Notes     string  `json:"notes"`
}

type ingredientResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	BaseUnits string    `json:"baseUnits"`
	UnitCost  float64   `json:"unitCost"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:        ingredient.ID,
		Title:     ingredient.Title,
		BaseUnits: string(ingredient.BaseUnits),
		UnitCost:  ingredient.UnitCost,
		Notes:     ingredient.Notes,
		CreatedAt: ingredient.CreatedAt,
		UpdatedAt: ingredient.UpdatedAt,
	}
}

// IngredientResource handles CRUD interactions for ingredient records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ingredients"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			saveIngredient(w, r, 0)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	ingredientID, ok := parseID(path)
	if !ok {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path)
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		saveIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	results, err := store.ListIngredients(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "unable to load ingredients")
		return
	}
	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ingredient, err := store.GetIngredient(r.Context(), ingredientID)
	if err != nil {
		writeStoreError(w, r, err, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

func saveIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := decodeJSON(r, &payload); err != nil {
		applog.Debug(ctx, "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ingredient := models.Ingredient{
		Title:     payload.Title,
		BaseUnits: lookupUnit(payload.BaseUnits),
		UnitCost:  payload.UnitCost,
		Notes:     strings.TrimSpace(payload.Notes),
	}
	ingredient.ID = ingredientID
	if err := store.SaveIngredient(ctx, &ingredient); err != nil {
		writeStoreError(w, r, err, "unable to save ingredient")
		return
	}

	saved, err := store.GetIngredient(ctx, ingredient.ID)
	if err != nil {
		writeStoreError(w, r, err, "unable to load ingredient")
		return
	}

	status := http.StatusOK
	if ingredientID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, projectIngredient(*saved))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	if _, err := store.GetIngredient(ctx, ingredientID); err != nil {
		writeStoreError(w, r, err, "unable to load ingredient")
		return
	}
	if err := store.DeleteIngredient(ctx, ingredientID); err != nil {
		writeStoreError(w, r, err, "unable to delete ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
