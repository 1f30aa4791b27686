// Package units converts quantities between measurement units of the same category.
//
// Every unit belongs to exactly one Category and carries a fixed multiplicative factor
// relative to its category's anchor unit (milliliters for volume, grams for weight,
// units for generic counts). Conversions never cross categories.
package units

import (
	"sort"
	"strings"
)

// Category partitions units into mutually convertible sets.
type Category int

const (
	// Unknown is the category of any unit not in the catalog.
	Unknown Category = iota
	Volume
	Weight
	Generic
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{Volume, Weight, Generic}
}

func (c Category) String() string {
	switch c {
	case Volume:
		return "volume"
	case Weight:
		return "weight"
	case Generic:
		return "generic"
	case Unknown:
		return "unknown"
	}
	return "unknown"
}

// Anchor returns the canonical unit every other unit of the category is scaled to.
func (c Category) Anchor() Unit {
	switch c {
	case Volume:
		return Milliliters
	case Weight:
		return Grams
	case Generic:
		return Units
	case Unknown:
		return ""
	}
	return ""
}

// Unit names a measurement unit. The zero value is not a valid unit.
type Unit string

const (
	Milliliters Unit = "milliliters"
	Liters      Unit = "liters"
	Teaspoons   Unit = "teaspoons"
	Tablespoons Unit = "tablespoons"
	FluidOunces Unit = "fluid_ounces"
	Cups        Unit = "cups"
	Pints       Unit = "pints"
	Quarts      Unit = "quarts"
	Gallons     Unit = "gallons"

	Milligrams Unit = "milligrams"
	Grams      Unit = "grams"
	Kilograms  Unit = "kilograms"
	Ounces     Unit = "ounces"
	Pounds     Unit = "pounds"

	Units  Unit = "units"
	Dozens Unit = "dozens"
)

type definition struct {
	category Category
	factor   float64
}

var catalog = map[Unit]definition{
	Milliliters: {Volume, 1},
	Liters:      {Volume, 1000},
	// US customary volumes.
	Teaspoons:   {Volume, 4.92892159375},
	Tablespoons: {Volume, 14.78676478125},
	FluidOunces: {Volume, 29.5735295625},
	Cups:        {Volume, 236.5882365},
	Pints:       {Volume, 473.176473},
	Quarts:      {Volume, 946.352946},
	Gallons:     {Volume, 3785.411784},

	Milligrams: {Weight, 0.001},
	Grams:      {Weight, 1},
	Kilograms:  {Weight, 1000},
	Ounces:     {Weight, 28.349523125},
	Pounds:     {Weight, 453.59237},

	Units:  {Generic, 1},
	Dozens: {Generic, 12},
}

var aliases = map[string]Unit{
	"ml":     Milliliters,
	"l":      Liters,
	"tsp":    Teaspoons,
	"tbsp":   Tablespoons,
	"fl oz":  FluidOunces,
	"floz":   FluidOunces,
	"cup":    Cups,
	"pt":     Pints,
	"qt":     Quarts,
	"gal":    Gallons,
	"mg":     Milligrams,
	"g":      Grams,
	"kg":     Kilograms,
	"oz":     Ounces,
	"lb":     Pounds,
	"lbs":    Pounds,
	"ea":     Units,
	"each":   Units,
	"unit":   Units,
	"pcs":    Units,
	"dozen":  Dozens,
	"doz":    Dozens,
	"gram":   Grams,
	"liter":  Liters,
	"pound":  Pounds,
	"ounce":  Ounces,
	"litre":  Liters,
	"litres": Liters,
}

// Parse maps a canonical name or a common abbreviation to a Unit.
func Parse(value string) (Unit, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	if _, ok := catalog[Unit(key)]; ok {
		return Unit(key), true
	}
	if unit, ok := aliases[key]; ok {
		return unit, true
	}
	return "", false
}

// Known reports whether u is part of the catalog.
func (u Unit) Known() bool {
	_, ok := catalog[u]
	return ok
}

// Category returns the category of u, or Unknown.
func (u Unit) Category() Category {
	return catalog[u].category
}

// Convert expresses value, measured in from, in the unit to. Identical units always
// convert, even when they are not in the catalog. The second result is false when the
// units belong to different categories.
func Convert(value float64, from, to Unit) (float64, bool) {
	if from == to {
		return value, true
	}
	src, ok := catalog[from]
	if !ok {
		return 0, false
	}
	dst, ok := catalog[to]
	if !ok {
		return 0, false
	}
	if src.category != dst.category {
		return 0, false
	}
	return value * src.factor / dst.factor, true
}

// AreCompatible reports whether quantities in from can be expressed in to.
func AreCompatible(from, to Unit) bool {
	if from == to {
		return true
	}
	src, ok := catalog[from]
	if !ok {
		return false
	}
	dst, ok := catalog[to]
	if !ok {
		return false
	}
	return src.category == dst.category
}

// InCategory lists the units of c ordered from smallest to largest factor.
func InCategory(c Category) []Unit {
	var out []Unit
	for unit, def := range catalog {
		if def.category == c {
			out = append(out, unit)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		fi, fj := catalog[out[i]].factor, catalog[out[j]].factor
		if fi == fj {
			return out[i] < out[j]
		}
		return fi < fj
	})
	return out
}

// All lists every catalog unit grouped by category.
func All() []Unit {
	var out []Unit
	for _, c := range Categories() {
		out = append(out, InCategory(c)...)
	}
	return out
}
