package models

import (
	"strings"

	"gorm.io/gorm"

	"costbook/internal/units"
)

// RecipeStatus marks whether a recipe is in active use.
type RecipeStatus string

const (
	RecipeStatusActive   RecipeStatus = "active"
	RecipeStatusInactive RecipeStatus = "inactive"
)

// ValidRecipeStatus reports whether value names a known recipe status.
func ValidRecipeStatus(value string) bool {
	switch RecipeStatus(value) {
	case RecipeStatusActive, RecipeStatusInactive:
		return true
	default:
		return false
	}
}

// NormalizeRecipeStatus falls back to active for unknown values.
func NormalizeRecipeStatus(value string) RecipeStatus {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if ValidRecipeStatus(trimmed) {
		return RecipeStatus(trimmed)
	}
	return RecipeStatusActive
}

// Recipe yields Produces of Units. Its cost is always derived from its relations.
type Recipe struct {
	gorm.Model
	Title      string       `gorm:"not null" json:"title"`
	Produces   float64      `gorm:"not null;default:1" json:"produces"`
	Units      units.Unit   `gorm:"type:varchar(32);not null" json:"units"`
	Status     RecipeStatus `gorm:"type:varchar(16);not null;default:active" json:"status"`
	ShowInMenu bool         `gorm:"not null;default:false" json:"show_in_menu"`
	Notes      string       `gorm:"type:text" json:"notes"`

	Ingredients []IngredientRelation `gorm:"foreignKey:ParentRecipeID" json:"ingredients,omitempty"`
	SubRecipes  []SubRecipeRelation  `gorm:"foreignKey:ParentRecipeID" json:"sub_recipes,omitempty"`
}
