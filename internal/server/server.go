package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server. Zero values get sensible defaults.
type Options struct {
	Port              int
	Token             string // when set, /api requires it
	AllowedOrigins    []string
	DefaultConfidence stats.ConfidenceLevel
	DefaultPower      stats.Power
	Logger            *slog.Logger
}

type Server struct {
	source    store.Source // optional
	opts      Options
	logger    *slog.Logger
	router    chi.Router
	registry  *prometheus.Registry
	metrics   *metrics
	validate  *validator.Validate
	startTime time.Time
}

// New builds a server. src may be nil, in which case the experiment routes
// report 404.
func New(src store.Source, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DefaultConfidence == 0 {
		opts.DefaultConfidence = stats.DefaultConfidence
	}
	if opts.DefaultPower == 0 {
		opts.DefaultPower = stats.DefaultPower
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	registry := prometheus.NewRegistry()
	srv := &Server{
		source:    src,
		opts:      opts,
		logger:    opts.Logger,
		router:    chi.NewRouter(),
		registry:  registry,
		metrics:   newMetrics(registry),
		validate:  newValidator(),
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	// Public endpoints
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/levels", s.handleLevels)
		r.Post("/sample-size", s.handleSampleSize)
		r.Post("/significance", s.handleSignificance)
		r.Get("/experiments", s.handleListExperiments)
		r.Get("/experiments/{name}/significance", s.handleExperimentSignificance)
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "port", s.opts.Port, "auth", s.opts.Token != "")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}
