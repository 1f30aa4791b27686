package costing

import (
	"fmt"
	"sort"

	"costbook/models"
)

// ItemKind distinguishes the two kinds of relation children.
type ItemKind string

const (
	KindIngredient ItemKind = "ingredient"
	KindRecipe     ItemKind = "recipe"
)

// ParseItemKind accepts "ingredient" or "recipe".
func ParseItemKind(value string) (ItemKind, error) {
	switch ItemKind(value) {
	case KindIngredient, KindRecipe:
		return ItemKind(value), nil
	default:
		return "", fmt.Errorf("unknown item type %q", value)
	}
}

// Edge is a relation seen from its child.
type Edge struct {
	RelationID     uint
	ParentRecipeID uint
	ChildID        uint
	Kind           ItemKind
}

// Graph is the read view the engine consumes. Implementations must not change while a
// resolution is running.
type Graph interface {
	Ingredient(id uint) (models.Ingredient, bool)
	Recipe(id uint) (models.Recipe, bool)
	IngredientRelations(recipeID uint) []models.IngredientRelation
	SubRecipeRelations(recipeID uint) []models.SubRecipeRelation
	RelationsByChild(itemID uint, kind ItemKind) []Edge
}

type childKey struct {
	kind ItemKind
	id   uint
}

// Snapshot is an immutable, id-indexed Graph. It is safe for concurrent reads.
type Snapshot struct {
	ingredients map[uint]models.Ingredient
	recipes     map[uint]models.Recipe
	recipeOrder []uint
	ingRels     map[uint][]models.IngredientRelation
	subRels     map[uint][]models.SubRecipeRelation
	byChild     map[childKey][]Edge
}

var _ Graph = (*Snapshot)(nil)

// NewSnapshot indexes the given records. Relations are kept in id order.
func NewSnapshot(
	ingredients []models.Ingredient,
	recipes []models.Recipe,
	ingredientRelations []models.IngredientRelation,
	subRecipeRelations []models.SubRecipeRelation,
) *Snapshot {
	s := &Snapshot{
		ingredients: make(map[uint]models.Ingredient, len(ingredients)),
		recipes:     make(map[uint]models.Recipe, len(recipes)),
		ingRels:     make(map[uint][]models.IngredientRelation),
		subRels:     make(map[uint][]models.SubRecipeRelation),
		byChild:     make(map[childKey][]Edge),
	}

	for _, ingredient := range ingredients {
		s.ingredients[ingredient.ID] = ingredient
	}
	for _, recipe := range recipes {
		if _, seen := s.recipes[recipe.ID]; !seen {
			s.recipeOrder = append(s.recipeOrder, recipe.ID)
		}
		s.recipes[recipe.ID] = recipe
	}
	sort.Slice(s.recipeOrder, func(i, j int) bool { return s.recipeOrder[i] < s.recipeOrder[j] })

	ingSorted := append([]models.IngredientRelation(nil), ingredientRelations...)
	sort.SliceStable(ingSorted, func(i, j int) bool { return ingSorted[i].ID < ingSorted[j].ID })
	for _, rel := range ingSorted {
		s.ingRels[rel.ParentRecipeID] = append(s.ingRels[rel.ParentRecipeID], rel)
		key := childKey{KindIngredient, rel.ChildIngredientID}
		s.byChild[key] = append(s.byChild[key], Edge{
			RelationID:     rel.ID,
			ParentRecipeID: rel.ParentRecipeID,
			ChildID:        rel.ChildIngredientID,
			Kind:           KindIngredient,
		})
	}

	subSorted := append([]models.SubRecipeRelation(nil), subRecipeRelations...)
	sort.SliceStable(subSorted, func(i, j int) bool { return subSorted[i].ID < subSorted[j].ID })
	for _, rel := range subSorted {
		s.subRels[rel.ParentRecipeID] = append(s.subRels[rel.ParentRecipeID], rel)
		key := childKey{KindRecipe, rel.ChildRecipeID}
		s.byChild[key] = append(s.byChild[key], Edge{
			RelationID:     rel.ID,
			ParentRecipeID: rel.ParentRecipeID,
			ChildID:        rel.ChildRecipeID,
			Kind:           KindRecipe,
		})
	}

	return s
}

func (s *Snapshot) Ingredient(id uint) (models.Ingredient, bool) {
	ingredient, ok := s.ingredients[id]
	return ingredient, ok
}

func (s *Snapshot) Recipe(id uint) (models.Recipe, bool) {
	recipe, ok := s.recipes[id]
	return recipe, ok
}

func (s *Snapshot) IngredientRelations(recipeID uint) []models.IngredientRelation {
	return s.ingRels[recipeID]
}

func (s *Snapshot) SubRecipeRelations(recipeID uint) []models.SubRecipeRelation {
	return s.subRels[recipeID]
}

func (s *Snapshot) RelationsByChild(itemID uint, kind ItemKind) []Edge {
	return s.byChild[childKey{kind, itemID}]
}

// RecipeIDs lists every recipe id in ascending order.
func (s *Snapshot) RecipeIDs() []uint {
	return append([]uint(nil), s.recipeOrder...)
}
