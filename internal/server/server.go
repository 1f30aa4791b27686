package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"costbook/internal/db"
	"costbook/internal/handlers"
	applog "costbook/internal/log"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr           string
	RateLimit      float64
	RateLimitBurst int
	Session        SessionConfig
	Database       *gorm.DB
	Costing        handlers.Settings
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Server wraps an http.Server with the costing API routes and middleware.
type Server struct {
	config      Config
	rateLimiter *rate.Limiter
	httpServer  *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"rateLimit", cfg.RateLimit,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"sessionCookie", cfg.Session.CookieName,
	)

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		applog.Debug(context.Background(), "session lifetime not provided, using default")
		sessionCfg.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		applog.Debug(context.Background(), "session cookie name not provided, using default")
		sessionCfg.CookieName = "costbook_session"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 50
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}
	if cfg.Costing == (handlers.Settings{}) {
		cfg.Costing = handlers.DefaultSettings()
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure

	var store *db.Store
	if cfg.Database != nil {
		store = db.NewStore(cfg.Database)
	}
	handlers.Configure(sessionManager, store, cfg.Costing)

	applog.Debug(context.Background(), "handler dependencies configured", "hasDatabase", store != nil)

	s := &Server{
		config:      cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           sessionManager.LoadAndSave(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	applog.Debug(context.Background(), "http handler chain prepared")
	return s, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Info(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
