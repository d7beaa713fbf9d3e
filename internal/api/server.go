// Package api wires the chi router: middleware stack, health and docs
// endpoints, and the analytics routes under /api/v1.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/consumer-insights/internal/api/handler"
	"github.com/albapepper/consumer-insights/internal/cache"
	"github.com/albapepper/consumer-insights/internal/config"
	"github.com/albapepper/consumer-insights/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(source store.Source, db handler.HealthChecker, appCache cache.Store, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	if cfg.MetricsEnabled {
		r.Use(MetricsMiddleware)
	}
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(source, db, appCache, cfg, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Prometheus scrape endpoint
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Get("/consumer/{consumerID}", h.GetConsumerAnalysis)
		r.Get("/predictions", h.GetPredictions)
		r.Get("/summary", h.GetSummary)
		r.Get("/churn-risk", h.GetChurnRisk)
		r.Get("/high-value-candidates", h.GetHighValueCandidates)
	})

	return r
}
