package handlers

import (
	"errors"
	"net/http"
	"time"

	"costbook/internal/costing"
	applog "costbook/internal/log"
)

type costRequest struct {
	RecipeID uint `json:"recipeId"`
}

type costDisplay struct {
	Cost     float64  `json:"cost"`
	UnitCost *float64 `json:"unitCost"`
}

type costResponse struct {
	RecipeID   uint                `json:"recipeId"`
	Title      string              `json:"title"`
	Cost       float64             `json:"cost"`
	UnitCost   *float64            `json:"unitCost"`
	Unresolved []costing.LineIssue `json:"unresolved"`
	Display    costDisplay         `json:"display"`
}

type costErrorResponse struct {
	Error string `json:"error"`
	Path  []uint `json:"path,omitempty"`
}

type bulkCostEntry struct {
	costResponse
	Error string `json:"error,omitempty"`
	Path  []uint `json:"path,omitempty"`
}

func projectCost(title string, result costing.CostResult, prefs displayPreferences) costResponse {
	unresolved := result.Unresolved
	if unresolved == nil {
		unresolved = []costing.LineIssue{}
	}
	return costResponse{
		RecipeID:   result.RecipeID,
		Title:      title,
		Cost:       result.Cost,
		UnitCost:   result.UnitCost,
		Unresolved: unresolved,
		Display: costDisplay{
			Cost:     costing.Round(result.Cost, prefs.CostPrecision),
			UnitCost: costing.RoundPtr(result.UnitCost, prefs.UnitCostPrecision),
		},
	}
}

func cyclePath(err error) []uint {
	var cycle *costing.CycleError
	if errors.As(err, &cycle) {
		return cycle.Path
	}
	return nil
}

// Cost resolves the recipe named in the JSON body.
func Cost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireStore(w, r) {
		return
	}

	var payload costRequest
	if err := decodeJSON(r, &payload); err != nil || payload.RecipeID == 0 {
		applog.Debug(r.Context(), "invalid cost payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "recipeId is required")
		return
	}
	resolveRecipeCost(w, r, payload.RecipeID)
}

func resolveRecipeCost(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	start := time.Now()
	defer observeDuration(start)

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		applog.Error(ctx, "failed to load costing snapshot", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	result, err := costing.NewResolver(snapshot).Resolve(ctx, recipeID)
	observeResolution(result, err)
	switch {
	case errors.Is(err, costing.ErrRecipeNotFound):
		writeJSON(w, http.StatusNotFound, costErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, costing.ErrCycleDetected):
		writeJSON(w, http.StatusConflict, costErrorResponse{Error: err.Error(), Path: cyclePath(err)})
		return
	case err != nil:
		applog.Error(ctx, "recipe resolution failed", "recipeID", recipeID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to resolve recipe cost")
		return
	}

	recipe, _ := snapshot.Recipe(recipeID)
	writeJSON(w, http.StatusOK, projectCost(recipe.Title, result, currentPreferences(r)))
}

// Costs resolves every recipe. Each entry either carries a cost or the error that
// stopped its resolution.
func Costs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireStore(w, r) {
		return
	}

	ctx := r.Context()
	start := time.Now()
	defer observeDuration(start)

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		applog.Error(ctx, "failed to load costing snapshot", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	entries, err := costing.ResolveAll(ctx, snapshot, snapshot.RecipeIDs(), settings.BulkConcurrency)
	if err != nil {
		applog.Warn(ctx, "bulk resolution cancelled", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "resolution cancelled")
		return
	}

	prefs := currentPreferences(r)
	response := make([]bulkCostEntry, 0, len(entries))
	for _, entry := range entries {
		observeResolution(entry.Result, entry.Err)
		recipe, _ := snapshot.Recipe(entry.RecipeID)
		if entry.Err != nil {
			response = append(response, bulkCostEntry{
				costResponse: costResponse{RecipeID: entry.RecipeID, Title: recipe.Title, Unresolved: []costing.LineIssue{}},
				Error:        entry.Err.Error(),
				Path:         cyclePath(entry.Err),
			})
			continue
		}
		response = append(response, bulkCostEntry{costResponse: projectCost(recipe.Title, entry.Result, prefs)})
	}

	writeJSON(w, http.StatusOK, response)
}
