package db

import (
	"fmt"
	"strings"
	"time"

	"costbook/internal/config"
	"costbook/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const sqlitePrefix = "sqlite://"

// dialectorFor picks the driver from the URL. "sqlite://<dsn>" and "file:" URLs open
// SQLite; anything else is handed to Postgres.
func dialectorFor(url string) gorm.Dialector {
	trimmed := strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(trimmed, sqlitePrefix):
		return sqlite.Open(strings.TrimPrefix(trimmed, sqlitePrefix))
	case strings.HasPrefix(trimmed, "file:"):
		return sqlite.Open(trimmed)
	default:
		return postgres.Open(trimmed)
	}
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(level),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// Initialize opens the configured database and applies the pool settings.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	database, err := gorm.Open(dialectorFor(cfg.URL), gormConfig(logger.Warn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return database, nil
}

// AutoMigrate creates or updates the costing tables.
func AutoMigrate(database *gorm.DB) error {
	if database == nil {
		return fmt.Errorf("database handle is nil")
	}

	return database.AutoMigrate(
		&models.Ingredient{},
		&models.Recipe{},
		&models.IngredientRelation{},
		&models.SubRecipeRelation{},
	)
}

// Configure opens and migrates the database.
func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(database); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return database, nil
}
