package models

import (
	"gorm.io/gorm"

	"costbook/internal/units"
)

// IngredientRelation uses Quantity of Units of an ingredient inside a parent recipe.
type IngredientRelation struct {
	gorm.Model
	ParentRecipeID    uint       `gorm:"not null;index" json:"parent_recipe_id"`
	ChildIngredientID uint       `gorm:"not null;index" json:"child_ingredient_id"`
	Quantity          float64    `gorm:"not null" json:"quantity"`
	Units             units.Unit `gorm:"type:varchar(32);not null" json:"units"`
}
