package handlers

import (
	"github.com/alexedwards/scs/v2"

	"costbook/internal/db"
)

const (
	sessionUnitsKey             = "prefs:units"
	sessionCostPrecisionKey     = "prefs:cost_precision"
	sessionUnitCostPrecisionKey = "prefs:unit_cost_precision"
)

// Settings are the server-wide costing defaults. A session may override the precisions.
type Settings struct {
	CostPrecision     int
	UnitCostPrecision int
	BulkConcurrency   int
}

// DefaultSettings matches the configuration defaults.
func DefaultSettings() Settings {
	return Settings{CostPrecision: 2, UnitCostPrecision: 4, BulkConcurrency: 4}
}

var (
	sessionManager *scs.SessionManager
	store          *db.Store
	settings       = DefaultSettings()
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, s *db.Store, defaults Settings) {
	sessionManager = sm
	store = s
	settings = defaults
}
