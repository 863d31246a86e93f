package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/ringlog/pkg/archive"
	"github.com/ssargent/ringlog/pkg/ring"
)

// NewRouter builds the chi router with all routes configured. Split out of
// StartServer so tests can drive the full middleware stack with httptest.
func NewRouter(server *Server, metrics *Metrics, apiKey string) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(apiKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Buffer operations
		r.Post("/records", metrics.InstrumentHandler("POST", "/api/v1/records", server.handleAppend))
		r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/records", server.handleDrain))
		r.Delete("/records", metrics.InstrumentHandler("DELETE", "/api/v1/records", server.handleFlush))

		// Level registry
		r.Get("/levels", metrics.InstrumentHandler("GET", "/api/v1/levels", server.handleLevels))
		r.Get("/levels/{name}", metrics.InstrumentHandler("GET", "/api/v1/levels/{name}", server.handleLevelLookup))

		// Diagnostics
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(store *ring.RingStore, config ServerConfig) error {
	metrics := NewMetrics()

	var sink IArchive
	if config.ArchiveDir != "" {
		a, err := archive.Open(config.ArchiveDir)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer a.Close()
		sink = a
	}

	server := NewServer(store, sink, config, metrics)
	r := NewRouter(server, metrics, config.APIKey)

	// Start background metrics updater
	go server.startMetricsUpdater()

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting ringlog REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	return http.ListenAndServe(addr, r)
}
