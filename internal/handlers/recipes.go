package handlers

import (
	"net/http"
	"strings"
	"time"

	applog "costbook/internal/log"
	"costbook/models"
)

type recipeRequest struct {
	Title      string   `json:"title"`
	Produces   *float64 `json:"produces"`
	Units      string   `json:"units"`
	Status     string   `json:"status"`
	ShowInMenu bool     `json:"showInMenu"`
	Notes      string   `json:"notes"`
}

type recipeResponse struct {
	ID          uint                         `json:"id"`
	Title       string                       `json:"title"`
	Produces    float64                      `json:"produces"`
	Units       string                       `json:"units"`
	Status      string                       `json:"status"`
	ShowInMenu  bool                         `json:"showInMenu"`
	Notes       string                       `json:"notes"`
	Ingredients []ingredientRelationResponse `json:"ingredients,omitempty"`
	SubRecipes  []subRecipeRelationResponse  `json:"subRecipes,omitempty"`
	CreatedAt   time.Time                    `json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:         recipe.ID,
		Title:      recipe.Title,
		Produces:   recipe.Produces,
		Units:      string(recipe.Units),
		Status:     string(recipe.Status),
		ShowInMenu: recipe.ShowInMenu,
		Notes:      recipe.Notes,
		CreatedAt:  recipe.CreatedAt,
		UpdatedAt:  recipe.UpdatedAt,
	}
	for _, rel := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, projectIngredientRelation(rel))
	}
	for _, rel := range recipe.SubRecipes {
		resp.SubRecipes = append(resp.SubRecipes, projectSubRecipeRelation(rel))
	}
	return resp
}

// RecipeResource handles CRUD interactions for recipes and serves
// /api/recipes/{id}/cost.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/recipes"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			saveRecipe(w, r, 0)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idPart, action, _ := strings.Cut(path, "/")
	recipeID, ok := parseID(idPart)
	if !ok {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", idPart)
		http.NotFound(w, r)
		return
	}

	switch action {
	case "":
	case "cost":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resolveRecipeCost(w, r, recipeID)
		return
	default:
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		saveRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	results, err := store.ListRecipes(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "unable to load recipes")
		return
	}
	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	recipe, err := store.GetRecipe(r.Context(), recipeID)
	if err != nil {
		writeStoreError(w, r, err, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

func saveRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var payload recipeRequest
	if err := decodeJSON(r, &payload); err != nil {
		applog.Debug(ctx, "invalid recipe payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	produces := 1.0
	if payload.Produces != nil {
		produces = *payload.Produces
	}
	recipe := models.Recipe{
		Title:      payload.Title,
		Produces:   produces,
		Units:      lookupUnit(payload.Units),
		Status:     models.RecipeStatus(payload.Status),
		ShowInMenu: payload.ShowInMenu,
		Notes:      strings.TrimSpace(payload.Notes),
	}
	recipe.ID = recipeID
	if err := store.SaveRecipe(ctx, &recipe); err != nil {
		writeStoreError(w, r, err, "unable to save recipe")
		return
	}

	saved, err := store.GetRecipe(ctx, recipe.ID)
	if err != nil {
		writeStoreError(w, r, err, "unable to load recipe")
		return
	}

	status := http.StatusOK
	if recipeID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, projectRecipe(*saved))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	if _, err := store.GetRecipe(ctx, recipeID); err != nil {
		writeStoreError(w, r, err, "unable to load recipe")
		return
	}
	if err := store.DeleteRecipe(ctx, recipeID); err != nil {
		writeStoreError(w, r, err, "unable to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
