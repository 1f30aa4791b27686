package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Session  SessionConfig
	Costing  CostingConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr           string
	RateLimit      float64
	RateLimitBurst int
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	Level string
}

// SessionConfig controls the cookie that carries workspace preferences.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// CostingConfig holds presentation and bulk resolution settings. Precision only
// affects displayed values.
type CostingConfig struct {
	CostPrecision     int
	UnitCostPrecision int
	BulkConcurrency   int
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		RateLimit:      parseFloatWithDefault(os.Getenv("RATE_LIMIT"), 50),
		RateLimitBurst: parseIntWithDefault(os.Getenv("RATE_LIMIT_BURST"), 100),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "costbook_session"),
		CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
	}

	cfg.Costing = CostingConfig{
		CostPrecision:     parseIntWithDefault(os.Getenv("COST_PRECISION"), 2),
		UnitCostPrecision: parseIntWithDefault(os.Getenv("UNIT_COST_PRECISION"), 4),
		BulkConcurrency:   parseIntWithDefault(os.Getenv("BULK_CONCURRENCY"), 4),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if cfg.Costing.CostPrecision < 0 || cfg.Costing.UnitCostPrecision < 0 {
		return Config{}, fmt.Errorf("cost precision must not be negative")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
