package handlers

import (
	"net/http"
	"strings"

	applog "costbook/internal/log"
	"costbook/internal/units"
)

const maxPrecision = 8

// displayPreferences are the per-session presentation choices. They are resolved once per
// request and handed to the code that needs them.
type displayPreferences struct {
	Units             units.Preferences
	CostPrecision     int
	UnitCostPrecision int
}

func currentPreferences(r *http.Request) displayPreferences {
	prefs := displayPreferences{
		CostPrecision:     settings.CostPrecision,
		UnitCostPrecision: settings.UnitCostPrecision,
	}
	if sessionManager == nil {
		return prefs
	}

	ctx := r.Context()
	prefs.Units = units.ParsePreferences(sessionManager.GetString(ctx, sessionUnitsKey))
	if sessionManager.Exists(ctx, sessionCostPrecisionKey) {
		prefs.CostPrecision = sessionManager.GetInt(ctx, sessionCostPrecisionKey)
	}
	if sessionManager.Exists(ctx, sessionUnitCostPrecisionKey) {
		prefs.UnitCostPrecision = sessionManager.GetInt(ctx, sessionUnitCostPrecisionKey)
	}
	return prefs
}

type preferencesRequest struct {
	Units             []string `json:"units"`
	CostPrecision     *int     `json:"costPrecision"`
	UnitCostPrecision *int     `json:"unitCostPrecision"`
}

type preferencesResponse struct {
	Units             []string `json:"units"`
	CostPrecision     int      `json:"costPrecision"`
	UnitCostPrecision int      `json:"unitCostPrecision"`
}

func projectPreferences(prefs displayPreferences) preferencesResponse {
	enabled := []string{}
	for _, unit := range units.All() {
		if prefs.Units.Enabled(unit) {
			enabled = append(enabled, string(unit))
		}
	}
	return preferencesResponse{
		Units:             enabled,
		CostPrecision:     prefs.CostPrecision,
		UnitCostPrecision: prefs.UnitCostPrecision,
	}
}

// Preferences reads (GET) or replaces (POST) the session's unit and precision choices.
func Preferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, projectPreferences(currentPreferences(r)))
	case http.MethodPost:
		updatePreferences(w, r)
	default:
		applog.Debug(r.Context(), "preferences request with unsupported method", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func updatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sessionManager == nil {
		applog.Debug(ctx, "session manager not configured; preferences unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "sessions unavailable")
		return
	}

	var payload preferencesRequest
	if err := decodeJSON(r, &payload); err != nil {
		applog.Debug(ctx, "invalid preferences payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	enabled := make([]units.Unit, 0, len(payload.Units))
	for _, value := range payload.Units {
		unit, ok := units.Parse(value)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "unknown unit: "+strings.TrimSpace(value))
			return
		}
		enabled = append(enabled, unit)
	}
	for _, precision := range []*int{payload.CostPrecision, payload.UnitCostPrecision} {
		if precision != nil && (*precision < 0 || *precision > maxPrecision) {
			writeJSONError(w, http.StatusBadRequest, "precision must be between 0 and 8")
			return
		}
	}

	sessionManager.Put(ctx, sessionUnitsKey, units.NewPreferences(enabled...).String())
	if payload.CostPrecision != nil {
		sessionManager.Put(ctx, sessionCostPrecisionKey, *payload.CostPrecision)
	}
	if payload.UnitCostPrecision != nil {
		sessionManager.Put(ctx, sessionUnitCostPrecisionKey, *payload.UnitCostPrecision)
	}

	prefs := currentPreferences(r)
	applog.Debug(ctx, "preferences updated", "units", prefs.Units.String(), "costPrecision", prefs.CostPrecision)
	writeJSON(w, http.StatusOK, projectPreferences(prefs))
}
