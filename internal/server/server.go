// Package server exposes the analytics operations as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"MarketAnalyst/internal/analyst"
	"MarketAnalyst/internal/catalog"
)

// Config holds server configuration
type Config struct {
	Port       int
	MaxSymbols int
	Log        zerolog.Logger
	Analyst    *analyst.Analyst
	Catalog    *catalog.Catalog
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	analyst    *analyst.Analyst
	catalog    *catalog.Catalog
	validate   *validator.Validate
	maxSymbols int
	port       int
	now        func() time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		analyst:    cfg.Analyst,
		catalog:    cfg.Catalog,
		validate:   validator.New(),
		maxSymbols: cfg.MaxSymbols,
		port:       cfg.Port,
		now:        time.Now,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(110 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/comparison", s.handleComparison)
		r.Get("/performance", s.handlePerformance)
		r.Get("/risk", s.handleRisk)
		r.Get("/ranges", s.handleRanges)
		r.Get("/fundamentals", s.handleFundamentals)
		r.Get("/indicators/{symbol}", s.handleIndicators)
		r.Get("/forecast/{symbol}", s.handleForecast)
		r.Post("/report", s.handleReport)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
