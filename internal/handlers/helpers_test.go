package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"costbook/internal/db"
	"costbook/internal/db/mock"
	"costbook/models"
)

func testDatabaseName(t *testing.T) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
}

// withTestEnvironment installs a fresh session manager and store for the duration of
// the test. A seeded store holds the mock pizzeria.
func withTestEnvironment(t *testing.T, seeded bool) *db.Store {
	t.Helper()

	originalSession, originalStore, originalSettings := sessionManager, store, settings
	t.Cleanup(func() {
		sessionManager, store, settings = originalSession, originalStore, originalSettings
	})

	var (
		database *gorm.DB
		err      error
	)
	if seeded {
		database, err = mock.NewNamed(context.Background(), testDatabaseName(t))
	} else {
		database, err = gorm.Open(sqlite.Open("file:handlers-"+testDatabaseName(t)+"?mode=memory&cache=shared"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err == nil {
			err = db.AutoMigrate(database)
		}
	}
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := db.NewStore(database)
	Configure(scs.New(), s, DefaultSettings())
	return s
}

func serve(t *testing.T, handler http.HandlerFunc, method, target string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	var h http.Handler = handler
	if sessionManager != nil {
		h = sessionManager.LoadAndSave(handler)
	}
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func recipeByTitle(t *testing.T, s *db.Store, title string) models.Recipe {
	t.Helper()
	recipes, err := s.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("failed to list recipes: %v", err)
	}
	for _, recipe := range recipes {
		if recipe.Title == title {
			return recipe
		}
	}
	t.Fatalf("recipe %q not seeded", title)
	return models.Recipe{}
}
