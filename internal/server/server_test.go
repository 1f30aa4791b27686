package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"costbook/internal/db/mock"
	"costbook/internal/handlers"
)

func resetHandlers(t *testing.T) {
	t.Cleanup(func() {
		handlers.Configure(nil, nil, handlers.DefaultSettings())
	})
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	database, err := mock.NewNamed(context.Background(), "server-session-defaults")
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	srv, err := New(Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}, Database: database})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	resetHandlers(t)

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}
	if srv.config.RateLimit != 50 || srv.config.RateLimitBurst != 100 {
		t.Fatalf("expected default rate limits, got %v/%d", srv.config.RateLimit, srv.config.RateLimitBurst)
	}

	body := bytes.NewBufferString(`{"units":["kg"]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/preferences", body)
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected preferences to be stored, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "costbook_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure {
		t.Fatal("expected cookie secure flag to be true")
	}
}

func TestServerHandler(t *testing.T) {
	srv, err := New(Config{Addr: ":9090"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	resetHandlers(t)

	handler := srv.Handler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/costs", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected /api/costs without database to return 503, got %d", rr.Code)
	}
}

func TestServerServesCostsAndMetrics(t *testing.T) {
	database, err := mock.NewNamed(context.Background(), "server-costs")
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	srv, err := New(Config{Addr: ":9090", Database: database})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	resetHandlers(t)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/costs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /api/costs to return 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var entries []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode costs: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 seeded recipes, got %d", len(entries))
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rr.Code)
	}
	for _, metric := range []string{"costbook_http_requests_total", "costbook_resolutions_total"} {
		if !strings.Contains(rr.Body.String(), metric) {
			t.Fatalf("expected %s in metrics output", metric)
		}
	}
}
