package main

import (
	"strconv"
	"strings"

	"costbook/internal/costing"
	"costbook/internal/units"
)

type costView struct {
	RecipeID        uint                `json:"recipeId" yaml:"recipeId"`
	Title           string              `json:"title" yaml:"title"`
	Cost            float64             `json:"cost" yaml:"cost"`
	UnitCost        *float64            `json:"unitCost" yaml:"unitCost"`
	Unresolved      []costing.LineIssue `json:"unresolved" yaml:"unresolved"`
	DisplayCost     float64             `json:"displayCost" yaml:"displayCost"`
	DisplayUnitCost *float64            `json:"displayUnitCost" yaml:"displayUnitCost"`
	Error           string              `json:"error,omitempty" yaml:"error,omitempty"`
	costPrecision   int
	unitPrecision   int
}

func newCostView(title string, result costing.CostResult, costPrecision, unitPrecision int) costView {
	return costView{
		RecipeID:        result.RecipeID,
		Title:           title,
		Cost:            result.Cost,
		UnitCost:        result.UnitCost,
		Unresolved:      result.Unresolved,
		DisplayCost:     costing.Round(result.Cost, costPrecision),
		DisplayUnitCost: costing.RoundPtr(result.UnitCost, unitPrecision),
		costPrecision:   costPrecision,
		unitPrecision:   unitPrecision,
	}
}

func (v costView) row() []string {
	if v.Error != "" {
		return []string{strconv.FormatUint(uint64(v.RecipeID), 10), v.Title, "-", "-", v.Error}
	}
	unitCost := "-"
	if v.DisplayUnitCost != nil {
		unitCost = strconv.FormatFloat(*v.DisplayUnitCost, 'f', v.unitPrecision, 64)
	}
	issues := make([]string, 0, len(v.Unresolved))
	for _, issue := range v.Unresolved {
		issues = append(issues, string(issue.RelationType)+"#"+strconv.FormatUint(uint64(issue.RelationID), 10)+":"+string(issue.Reason))
	}
	return []string{
		strconv.FormatUint(uint64(v.RecipeID), 10),
		v.Title,
		strconv.FormatFloat(v.DisplayCost, 'f', v.costPrecision, 64),
		unitCost,
		strings.Join(issues, " "),
	}
}

var costHeader = []string{"ID", "RECIPE", "COST", "UNIT COST", "UNRESOLVED"}

func (v costView) Header() []string { return costHeader }
func (v costView) Rows() [][]string { return [][]string{v.row()} }

type costsView []costView

func (v costsView) Header() []string { return costHeader }

func (v costsView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, entry := range v {
		rows = append(rows, entry.row())
	}
	return rows
}

type usedInView struct {
	ItemID uint                `json:"itemId" yaml:"itemId"`
	Type   costing.ItemKind    `json:"type" yaml:"type"`
	UsedIn []costing.RecipeRef `json:"usedIn" yaml:"usedIn"`
}

func (v usedInView) Header() []string { return []string{"ID", "RECIPE"} }

func (v usedInView) Rows() [][]string {
	rows := make([][]string, 0, len(v.UsedIn))
	for _, ref := range v.UsedIn {
		rows = append(rows, []string{strconv.FormatUint(uint64(ref.ID), 10), ref.Title})
	}
	return rows
}

type convertView struct {
	Value      *float64   `json:"value" yaml:"value"`
	From       units.Unit `json:"from" yaml:"from"`
	To         units.Unit `json:"to" yaml:"to"`
	Compatible bool       `json:"compatible" yaml:"compatible"`
}

func (v convertView) Header() []string { return []string{"VALUE", "FROM", "TO", "COMPATIBLE"} }

func (v convertView) Rows() [][]string {
	value := "-"
	if v.Value != nil {
		value = strconv.FormatFloat(*v.Value, 'f', -1, 64)
	}
	return [][]string{{value, string(v.From), string(v.To), strconv.FormatBool(v.Compatible)}}
}

type unitCategoryView struct {
	Category string       `json:"category" yaml:"category"`
	Anchor   units.Unit   `json:"anchor" yaml:"anchor"`
	Units    []units.Unit `json:"units" yaml:"units"`
}

type unitsView []unitCategoryView

func (v unitsView) Header() []string { return []string{"CATEGORY", "ANCHOR", "UNITS"} }

func (v unitsView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, entry := range v {
		names := make([]string, 0, len(entry.Units))
		for _, unit := range entry.Units {
			names = append(names, string(unit))
		}
		rows = append(rows, []string{entry.Category, string(entry.Anchor), strings.Join(names, ", ")})
	}
	return rows
}
