// Package api provides the HTTP API for the Lereng Aman service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/api/handler"
	"github.com/lerengaman/lerengaman/internal/api/middleware"
	"github.com/lerengaman/lerengaman/internal/api/response"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	AnalysisHandler *handler.AnalysisHandler
	OpsHandler      *handler.OpsHandler
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "lerengaman-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Rate limits: analyses fan out to several upstream APIs, info
	// lookups are cheap.
	analysisRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)  // 100 req/min

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "Resource not found")
	})

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/analysis", func(r chi.Router) {
			r.With(analysisRateLimit).Post("/", cfg.AnalysisHandler.Analyze)
			r.With(standardRateLimit).Get("/", cfg.AnalysisHandler.Info)
			r.Options("/", cfg.AnalysisHandler.Preflight)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", cfg.OpsHandler.HealthCheck)
			r.Get("/ready", cfg.OpsHandler.ReadinessCheck)
			r.Get("/status", cfg.OpsHandler.SystemStatus)
		})
	})

	return r
}
