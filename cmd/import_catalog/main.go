// Command import_catalog loads ingredient prices from a CSV file.
//
// The file needs a header row with the columns Title, Base Units and Unit Cost; Notes is
// optional. Ingredients are matched by title, ignoring case, and updated in place.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"costbook/internal/config"
	"costbook/internal/db"
	"costbook/internal/db/mock"
	applog "costbook/internal/log"
	"costbook/internal/units"
	"costbook/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

var openDatabase = func(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	if cfg.Database.UseMock || cfg.Database.URL == "" {
		applog.Warn(ctx, "no database configured, importing into the mock database")
		return mock.New(ctx)
	}
	return db.Configure(cfg.Database)
}

type summary struct {
	Created int
	Updated int
	Skipped int
}

func main() {
	csvPath := "catalog.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	ctx := context.Background()
	result, err := run(ctx, csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	applog.Info(ctx, "catalog import finished", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)
}

func run(ctx context.Context, csvPath string) (summary, error) {
	var result summary
	if strings.TrimSpace(csvPath) == "" {
		return result, fmt.Errorf("csv path must not be empty")
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return result, fmt.Errorf("read csv: %w", err)
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return result, fmt.Errorf("open database: %w", err)
	}
	store := db.NewStore(database)

	for idx, record := range records {
		line := idx + 2
		ingredient, err := buildIngredient(record)
		if err != nil {
			applog.Warn(ctx, "skipping catalog row", "line", line, "error", err)
			result.Skipped++
			continue
		}

		existing, err := store.FindIngredientByTitle(ctx, ingredient.Title)
		switch {
		case err == nil:
			ingredient.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return result, fmt.Errorf("line %d: find ingredient %q: %w", line, ingredient.Title, err)
		}

		if err := store.SaveIngredient(ctx, &ingredient); err != nil {
			if rejectedRow(err) {
				applog.Warn(ctx, "skipping catalog row", "line", line, "error", err)
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("line %d: save ingredient %q: %w", line, ingredient.Title, err)
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Created++
		}
		applog.Debug(ctx, "catalog row imported", "line", line, "title", ingredient.Title, "id", ingredient.ID)
	}

	return result, nil
}

// readCSV returns one map per data row keyed by the lower-cased header.
func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(key))
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}
	return records, nil
}

func buildIngredient(row map[string]string) (models.Ingredient, error) {
	title := normalizeText(row["title"])
	if title == "" {
		return models.Ingredient{}, db.ErrTitleRequired
	}
	unit, ok := units.Parse(row["base units"])
	if !ok {
		return models.Ingredient{}, fmt.Errorf("%w: %q", db.ErrUnknownUnit, row["base units"])
	}
	cost, err := parseFirstNumber(row["unit cost"])
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("unit cost %q: %w", row["unit cost"], err)
	}

	if cost < 0 || math.IsInf(cost, 0) {
		return models.Ingredient{}, fmt.Errorf("%w: %q", db.ErrInvalidUnitCost, row["unit cost"])
	}

	return models.Ingredient{
		Title:     title,
		BaseUnits: unit,
		UnitCost:  cost,
		Notes:     normalizeText(row["notes"]),
	}, nil
}

// rejectedRow reports store validation errors, which skip the row instead of stopping the
// import.
func rejectedRow(err error) bool {
	return errors.Is(err, db.ErrTitleRequired) ||
		errors.Is(err, db.ErrUnknownUnit) ||
		errors.Is(err, db.ErrInvalidUnitCost)
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(normalizeValue(value), " "))
}

// parseFirstNumber reads prices written like "1.20", "$1.20" or "1.20 / kg".
func parseFirstNumber(value string) (float64, error) {
	match := numberPattern.FindString(normalizeValue(value))
	if match == "" {
		return 0, errors.New("no number found")
	}
	return strconv.ParseFloat(match, 64)
}
