package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onetriage/leadintake/internal/http/handlers"
	httpmiddleware "github.com/onetriage/leadintake/internal/http/middleware"
	"github.com/onetriage/leadintake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadsHandler   *handlers.LeadsHandler
	HealthHandler  http.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	// RateLimiter guards the public submit routes. Nil disables limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	health := cfg.HealthHandler
	if health == nil {
		health = handlers.NewHealthHandler(nil, cfg.Logger)
	}
	r.Method(http.MethodGet, "/health", health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.LeadsHandler != nil {
		r.Route("/api/leads", func(api chi.Router) {
			api.Get("/forms/{formType}", cfg.LeadsHandler.Schema)
			api.Group(func(submit chi.Router) {
				if cfg.RateLimiter != nil {
					submit.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
				}
				submit.Post("/{formType}", cfg.LeadsHandler.Submit)
			})
		})
	}

	return r
}
