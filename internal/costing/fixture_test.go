package costing

import (
	"gorm.io/gorm"

	"costbook/internal/units"
	"costbook/models"
)

// graphBuilder assembles snapshots for tests. Relation ids are assigned in call order.
type graphBuilder struct {
	ingredients []models.Ingredient
	recipes     []models.Recipe
	ingRels     []models.IngredientRelation
	subRels     []models.SubRecipeRelation
	nextRelID   uint
}

func (b *graphBuilder) ingredient(id uint, title string, base units.Unit, unitCost float64) *graphBuilder {
	b.ingredients = append(b.ingredients, models.Ingredient{
		Model:     gorm.Model{ID: id},
		Title:     title,
		BaseUnits: base,
		UnitCost:  unitCost,
	})
	return b
}

func (b *graphBuilder) recipe(id uint, title string, produces float64, unit units.Unit) *graphBuilder {
	b.recipes = append(b.recipes, models.Recipe{
		Model:    gorm.Model{ID: id},
		Title:    title,
		Produces: produces,
		Units:    unit,
		Status:   models.RecipeStatusActive,
	})
	return b
}

func (b *graphBuilder) uses(parentID, ingredientID uint, quantity float64, unit units.Unit) uint {
	b.nextRelID++
	b.ingRels = append(b.ingRels, models.IngredientRelation{
		Model:             gorm.Model{ID: b.nextRelID},
		ParentRecipeID:    parentID,
		ChildIngredientID: ingredientID,
		Quantity:          quantity,
		Units:             unit,
	})
	return b.nextRelID
}

func (b *graphBuilder) nests(parentID, childID uint, quantity float64, unit units.Unit) uint {
	b.nextRelID++
	b.subRels = append(b.subRels, models.SubRecipeRelation{
		Model:          gorm.Model{ID: b.nextRelID},
		ParentRecipeID: parentID,
		ChildRecipeID:  childID,
		Quantity:       quantity,
		Units:          unit,
	})
	return b.nextRelID
}

func (b *graphBuilder) build() *Snapshot {
	return NewSnapshot(b.ingredients, b.recipes, b.ingRels, b.subRels)
}

// countingGraph records how often each recipe's sub-recipe relations are read.
type countingGraph struct {
	Graph
	subReads map[uint]int
}

func (c *countingGraph) SubRecipeRelations(recipeID uint) []models.SubRecipeRelation {
	c.subReads[recipeID]++
	return c.Graph.SubRecipeRelations(recipeID)
}
