package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"costbook/internal/costing"
	"costbook/internal/db"
	applog "costbook/internal/log"
)

// writeJSON encodes payload before touching the response so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
		body.Reset()
		body.WriteString(`{"error":"failed to encode response"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body.Bytes()); err != nil {
		applog.Debug(context.Background(), "failed to write json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func parseID(value string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

// writeStoreError maps a db.Store error onto a status code. Unexpected errors are logged
// and reported with the generic message.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, costing.ErrCycleDetected):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeJSONError(w, http.StatusConflict, "an item with this title already exists")
	case errors.Is(err, db.ErrTitleRequired),
		errors.Is(err, db.ErrUnknownUnit),
		errors.Is(err, db.ErrInvalidQuantity),
		errors.Is(err, db.ErrInvalidUnitCost),
		errors.Is(err, db.ErrInvalidProduces),
		errors.Is(err, db.ErrIncompatibleUnits):
		applog.Debug(r.Context(), "store rejected request", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		applog.Error(r.Context(), message, "error", err)
		writeJSONError(w, http.StatusInternalServerError, message)
	}
}

func requireStore(w http.ResponseWriter, r *http.Request) bool {
	if store == nil {
		applog.Debug(r.Context(), "request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}
