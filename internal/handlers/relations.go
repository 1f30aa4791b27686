package handlers

import (
	"net/http"
	"strings"

	applog "costbook/internal/log"
	"costbook/models"
)

type relationRequest struct {
	ParentRecipeID uint    `json:"parentRecipeId"`
	ChildID        uint    `json:"childId"`
	Quantity       float64 `json:"quantity"`
	Units          string  `json:"units"`
}

type ingredientRelationResponse struct {
	ID                uint    `json:"id"`
	ParentRecipeID    uint    `json:"parentRecipeId"`
	ChildIngredientID uint    `json:"childIngredientId"`
	Quantity          float64 `json:"quantity"`
	Units             string  `json:"units"`
}

type subRecipeRelationResponse struct {
	ID             uint    `json:"id"`
	ParentRecipeID uint    `json:"parentRecipeId"`
	ChildRecipeID  uint    `json:"childRecipeId"`
	Quantity       float64 `json:"quantity"`
	Units          string  `json:"units"`
}

func projectIngredientRelation(rel models.IngredientRelation) ingredientRelationResponse {
	return ingredientRelationResponse{
		ID:                rel.ID,
		ParentRecipeID:    rel.ParentRecipeID,
		ChildIngredientID: rel.ChildIngredientID,
		Quantity:          rel.Quantity,
		Units:             string(rel.Units),
	}
}

func projectSubRecipeRelation(rel models.SubRecipeRelation) subRecipeRelationResponse {
	return subRecipeRelationResponse{
		ID:             rel.ID,
		ParentRecipeID: rel.ParentRecipeID,
		ChildRecipeID:  rel.ChildRecipeID,
		Quantity:       rel.Quantity,
		Units:          string(rel.Units),
	}
}

// relationRoute splits a relation path into the optional relation id. ok is false when
// the trailing segment is not a valid id.
func relationRoute(r *http.Request, prefix string) (uint, bool) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return 0, true
	}
	return parseID(path)
}

func recipeFilter(r *http.Request) uint {
	id, _ := parseID(r.URL.Query().Get("recipeId"))
	return id
}

func decodeRelation(w http.ResponseWriter, r *http.Request) (relationRequest, bool) {
	var payload relationRequest
	if err := decodeJSON(r, &payload); err != nil {
		applog.Debug(r.Context(), "invalid relation payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return payload, false
	}
	if payload.ParentRecipeID == 0 || payload.ChildID == 0 {
		writeJSONError(w, http.StatusBadRequest, "parentRecipeId and childId are required")
		return payload, false
	}
	return payload, true
}

// IngredientRelationResource handles CRUD interactions for ingredient lines.
func IngredientRelationResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}
	relationID, ok := relationRoute(r, "/api/ingredient-relations")
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	switch {
	case relationID == 0 && r.Method == http.MethodGet:
		results, err := store.ListIngredientRelations(ctx, recipeFilter(r))
		if err != nil {
			writeStoreError(w, r, err, "unable to load ingredient relations")
			return
		}
		responses := make([]ingredientRelationResponse, 0, len(results))
		for _, rel := range results {
			responses = append(responses, projectIngredientRelation(rel))
		}
		writeJSON(w, http.StatusOK, responses)
	case relationID == 0 && r.Method == http.MethodPost,
		relationID != 0 && r.Method == http.MethodPut:
		payload, ok := decodeRelation(w, r)
		if !ok {
			return
		}
		rel := models.IngredientRelation{
			ParentRecipeID:    payload.ParentRecipeID,
			ChildIngredientID: payload.ChildID,
			Quantity:          payload.Quantity,
			Units:             lookupUnit(payload.Units),
		}
		rel.ID = relationID
		if relationID != 0 {
			if _, err := store.GetIngredientRelation(ctx, relationID); err != nil {
				writeStoreError(w, r, err, "unable to load ingredient relation")
				return
			}
		}
		if err := store.SaveIngredientRelation(ctx, &rel); err != nil {
			writeStoreError(w, r, err, "unable to save ingredient relation")
			return
		}
		status := http.StatusOK
		if relationID == 0 {
			status = http.StatusCreated
		}
		writeJSON(w, status, projectIngredientRelation(rel))
	case relationID != 0 && r.Method == http.MethodGet:
		rel, err := store.GetIngredientRelation(ctx, relationID)
		if err != nil {
			writeStoreError(w, r, err, "unable to load ingredient relation")
			return
		}
		writeJSON(w, http.StatusOK, projectIngredientRelation(*rel))
	case relationID != 0 && r.Method == http.MethodDelete:
		if _, err := store.GetIngredientRelation(ctx, relationID); err != nil {
			writeStoreError(w, r, err, "unable to load ingredient relation")
			return
		}
		if err := store.DeleteIngredientRelation(ctx, relationID); err != nil {
			writeStoreError(w, r, err, "unable to delete ingredient relation")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubRecipeRelationResource handles CRUD interactions for sub-recipe lines. Writes that
// would make a recipe contain itself are answered with 409 Conflict.
func SubRecipeRelationResource(w http.ResponseWriter, r *http.Request) {
	if !requireStore(w, r) {
		return
	}
	relationID, ok := relationRoute(r, "/api/sub-recipe-relations")
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	switch {
	case relationID == 0 && r.Method == http.MethodGet:
		results, err := store.ListSubRecipeRelations(ctx, recipeFilter(r))
		if err != nil {
			writeStoreError(w, r, err, "unable to load sub-recipe relations")
			return
		}
		responses := make([]subRecipeRelationResponse, 0, len(results))
		for _, rel := range results {
			responses = append(responses, projectSubRecipeRelation(rel))
		}
		writeJSON(w, http.StatusOK, responses)
	case relationID == 0 && r.Method == http.MethodPost,
		relationID != 0 && r.Method == http.MethodPut:
		payload, ok := decodeRelation(w, r)
		if !ok {
			return
		}
		rel := models.SubRecipeRelation{
			ParentRecipeID: payload.ParentRecipeID,
			ChildRecipeID:  payload.ChildID,
			Quantity:       payload.Quantity,
			Units:          lookupUnit(payload.Units),
		}
		rel.ID = relationID
		if relationID != 0 {
			if _, err := store.GetSubRecipeRelation(ctx, relationID); err != nil {
				writeStoreError(w, r, err, "unable to load sub-recipe relation")
				return
			}
		}
		if err := store.SaveSubRecipeRelation(ctx, &rel); err != nil {
			writeStoreError(w, r, err, "unable to save sub-recipe relation")
			return
		}
		status := http.StatusOK
		if relationID == 0 {
			status = http.StatusCreated
		}
		writeJSON(w, status, projectSubRecipeRelation(rel))
	case relationID != 0 && r.Method == http.MethodGet:
		rel, err := store.GetSubRecipeRelation(ctx, relationID)
		if err != nil {
			writeStoreError(w, r, err, "unable to load sub-recipe relation")
			return
		}
		writeJSON(w, http.StatusOK, projectSubRecipeRelation(*rel))
	case relationID != 0 && r.Method == http.MethodDelete:
		if _, err := store.GetSubRecipeRelation(ctx, relationID); err != nil {
			writeStoreError(w, r, err, "unable to load sub-recipe relation")
			return
		}
		if err := store.DeleteSubRecipeRelation(ctx, relationID); err != nil {
			writeStoreError(w, r, err, "unable to delete sub-recipe relation")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
