package handlers

import (
	"net/http"
	"strconv"
	"strings"

	applog "costbook/internal/log"
	"costbook/internal/units"
)

type convertResponse struct {
	Value      *float64 `json:"value"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Compatible bool     `json:"compatible"`
}

type unitCategoryResponse struct {
	Category string   `json:"category"`
	Anchor   string   `json:"anchor"`
	Units    []string `json:"units"`
}

// lookupUnit resolves aliases but keeps unrecognised names so identical unknown units
// still convert to themselves.
func lookupUnit(value string) units.Unit {
	if unit, ok := units.Parse(value); ok {
		return unit
	}
	return units.Unit(strings.TrimSpace(value))
}

// Convert expresses ?value= measured in ?from= in the unit ?to=. Incompatible units
// answer with a null value.
func Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	value, err := strconv.ParseFloat(strings.TrimSpace(query.Get("value")), 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid conversion value", "value", query.Get("value"), "error", err)
		writeJSONError(w, http.StatusBadRequest, "value must be a number")
		return
	}
	from := lookupUnit(query.Get("from"))
	to := lookupUnit(query.Get("to"))
	if from == "" || to == "" {
		writeJSONError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	resp := convertResponse{From: string(from), To: string(to)}
	if converted, ok := units.Convert(value, from, to); ok {
		resp.Value = &converted
		resp.Compatible = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// Units lists units per category. Only the session's enabled units are listed unless
// ?all=true is given.
func Units(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	prefs := currentPreferences(r).Units
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		prefs = units.Preferences{}
	}

	response := make([]unitCategoryResponse, 0, len(units.Categories()))
	for _, category := range units.Categories() {
		entry := unitCategoryResponse{
			Category: category.String(),
			Anchor:   string(category.Anchor()),
			Units:    []string{},
		}
		for _, unit := range prefs.Units(category) {
			entry.Units = append(entry.Units, string(unit))
		}
		response = append(response, entry)
	}
	writeJSON(w, http.StatusOK, response)
}
