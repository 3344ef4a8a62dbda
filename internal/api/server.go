// Package api serves the statistics service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/rugby-stats/internal/api/handlers"
	"github.com/ramonehamilton/rugby-stats/internal/metrics"
)

// Backend is the service the API reads from and writes to. *storage.Service
// implements it.
type Backend interface {
	handlers.PlayerService
	handlers.StatsService
	handlers.MatchService
	handlers.ScoringService
	handlers.ExportService
}

// Server is the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	logger     *slog.Logger

	backend  Backend
	importer handlers.SheetImporter
	metrics  *metrics.RequestMetrics
	limiter  *rate.Limiter

	allowedOrigins []string
}

// Config holds configuration for the API server.
type Config struct {
	Port int
	// AllowedOrigins lists CORS origins. Empty allows local development
	// origins only.
	AllowedOrigins []string
	// RecalculateInterval is the minimum time between two recalculation
	// requests. Zero disables the limit.
	RecalculateInterval time.Duration
	Logger              *slog.Logger
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:                8080,
		RecalculateInterval: 10 * time.Second,
	}
}

// NewServer creates a server over backend. Sheet imports go through imp.
func NewServer(cfg *Config, backend Backend, imp handlers.SheetImporter) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	s := &Server{
		router:         chi.NewRouter(),
		port:           cfg.Port,
		logger:         logger,
		backend:        backend,
		importer:       imp,
		metrics:        metrics.NewRequestMetrics(),
		allowedOrigins: origins,
	}
	if cfg.RecalculateInterval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(cfg.RecalculateInterval), 1)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only.
	s.router.Use(s.jsonContentTypeMiddleware)
}

// metricsMiddleware records latency per route pattern, so /players/1 and
// /players/2 share one histogram.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.Observe(r.Method+" "+route, status, time.Since(start))
	})
}

// jsonContentTypeMiddleware rejects request bodies that are not JSON.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root handler, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the request metrics collector.
func (s *Server) Metrics() *metrics.RequestMetrics {
	return s.metrics
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}
