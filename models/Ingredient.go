package models

import (
	"gorm.io/gorm"

	"costbook/internal/units"
)

// Ingredient is a priced leaf of the composition graph. UnitCost is the price of one
// BaseUnits of the ingredient. Titles are unique among live rows only, so a deleted
// title can be reused.
type Ingredient struct {
	gorm.Model
	Title     string     `gorm:"uniqueIndex:idx_ingredients_title,where:deleted_at IS NULL;not null" json:"title"`
	BaseUnits units.Unit `gorm:"type:varchar(32);not null" json:"base_units"`
	UnitCost  float64    `gorm:"not null;default:0" json:"unit_cost"`
	Notes     string     `gorm:"type:text" json:"notes"`
}
