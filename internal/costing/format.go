package costing

import "math"

// Round rounds value to places decimal places, half away from zero. Call it when
// presenting a cost, never on values fed back into a resolution.
func Round(value float64, places int) float64 {
	if places < 0 {
		return value
	}
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

// RoundPtr rounds a nullable value such as CostResult.UnitCost.
func RoundPtr(value *float64, places int) *float64 {
	if value == nil {
		return nil
	}
	rounded := Round(*value, places)
	return &rounded
}
