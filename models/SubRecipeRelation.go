package models

import (
	"gorm.io/gorm"

	"costbook/internal/units"
)

// SubRecipeRelation uses Quantity of Units of another recipe inside a parent recipe.
// These edges must stay acyclic.
type SubRecipeRelation struct {
	gorm.Model
	ParentRecipeID uint       `gorm:"not null;index" json:"parent_recipe_id"` // Parent Recipe
	ChildRecipeID  uint       `gorm:"not null;index" json:"child_recipe_id"`
	Quantity       float64    `gorm:"not null" json:"quantity"`
	Units          units.Unit `gorm:"type:varchar(32);not null" json:"units"`
}
