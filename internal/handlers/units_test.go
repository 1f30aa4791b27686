package handlers

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantValue  *float64
		compatible bool
	}{
		{name: "kilograms to grams", target: "/api/convert?value=1.5&from=kg&to=grams", wantValue: ptr(1500), compatible: true},
		{name: "cups to milliliters", target: "/api/convert?value=1&from=cups&to=ml", wantValue: ptr(236.5882365), compatible: true},
		{name: "across categories", target: "/api/convert?value=1&from=grams&to=milliliters", compatible: false},
		{name: "identical unknown units", target: "/api/convert?value=3&from=pinch&to=pinch", wantValue: ptr(3), compatible: true},
		{name: "unknown unit", target: "/api/convert?value=3&from=pinch&to=grams", compatible: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, Convert, http.MethodGet, tc.target, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var resp convertResponse
			decodeBody(t, w, &resp)
			if resp.Compatible != tc.compatible {
				t.Fatalf("expected compatible %v, got %v", tc.compatible, resp.Compatible)
			}
			switch {
			case tc.wantValue == nil && resp.Value != nil:
				t.Fatalf("expected null value, got %v", *resp.Value)
			case tc.wantValue != nil && (resp.Value == nil || *resp.Value != *tc.wantValue):
				t.Fatalf("expected value %v, got %v", *tc.wantValue, resp.Value)
			}
		})
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	for _, target := range []string{
		"/api/convert?value=abc&from=g&to=kg",
		"/api/convert?value=1&to=kg",
	} {
		w := serve(t, Convert, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", target, w.Code)
		}
	}
}

func TestPreferencesFilterUnitsAndDisplay(t *testing.T) {
	s := withTestEnvironment(t, true)
	margherita := recipeByTitle(t, s, "Margherita")

	w := serve(t, Preferences, http.MethodPost, "/api/preferences", map[string]any{
		"units":         []string{"kg", "cups"},
		"costPrecision": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var prefs preferencesResponse
	decodeBody(t, w, &prefs)
	if !reflect.DeepEqual(prefs.Units, []string{"cups", "kilograms"}) {
		t.Fatalf("unexpected enabled units: %v", prefs.Units)
	}
	if prefs.CostPrecision != 1 || prefs.UnitCostPrecision != 4 {
		t.Fatalf("unexpected precisions: %+v", prefs)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	w = serve(t, Units, http.MethodGet, "/api/units", nil, cookies...)
	var categories []unitCategoryResponse
	decodeBody(t, w, &categories)
	want := []unitCategoryResponse{
		{Category: "volume", Anchor: "milliliters", Units: []string{"milliliters", "cups"}},
		{Category: "weight", Anchor: "grams", Units: []string{"grams", "kilograms"}},
		{Category: "generic", Anchor: "units", Units: []string{"units"}},
	}
	if !reflect.DeepEqual(categories, want) {
		t.Fatalf("unexpected units listing:\n got %+v\nwant %+v", categories, want)
	}

	w = serve(t, Cost, http.MethodPost, "/api/cost", map[string]any{"recipeId": margherita.ID}, cookies...)
	var cost costResponse
	decodeBody(t, w, &cost)
	if cost.Display.Cost != 2.1 {
		t.Fatalf("expected display cost 2.1 with session precision, got %v", cost.Display.Cost)
	}

	w = serve(t, Preferences, http.MethodGet, "/api/preferences", nil, cookies...)
	decodeBody(t, w, &prefs)
	if prefs.CostPrecision != 1 {
		t.Fatalf("expected stored precision 1, got %d", prefs.CostPrecision)
	}
}

func TestUnitsListsCatalogWithoutSession(t *testing.T) {
	withTestEnvironment(t, false)

	w := serve(t, Units, http.MethodGet, "/api/units?all=true", nil)
	var categories []unitCategoryResponse
	decodeBody(t, w, &categories)
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	if got := fmt.Sprint(categories[2].Units); got != "[units dozens]" {
		t.Fatalf("unexpected generic units: %s", got)
	}
}

func TestPreferencesValidation(t *testing.T) {
	withTestEnvironment(t, false)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "unknown unit", payload: map[string]any{"units": []string{"smidgen"}}},
		{name: "negative precision", payload: map[string]any{"costPrecision": -1}},
		{name: "precision too large", payload: map[string]any{"unitCostPrecision": 12}},
		{name: "unknown field", payload: map[string]any{"theme": "dark"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, Preferences, http.MethodPost, "/api/preferences", tc.payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
