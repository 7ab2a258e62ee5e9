// Package server exposes the classification, rate and duty pipeline over
// a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marhaven/tariffdesk/internal/catalog"
	"github.com/marhaven/tariffdesk/internal/duty"
	"github.com/marhaven/tariffdesk/internal/forms"
	"github.com/marhaven/tariffdesk/internal/matcher"
	"github.com/marhaven/tariffdesk/internal/rates"
)

// Config holds the HTTP listener settings.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// SourceTimeout bounds each rate aggregation request. A source that
	// exceeds it degrades into a failed provenance entry.
	SourceTimeout time.Duration
}

// DefaultConfig returns the listener settings used when configuration
// leaves them unset.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8899,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		SourceTimeout:   45 * time.Second,
	}
}

// Server wires the pipeline components behind a gorilla/mux router.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *mux.Router
	logger     *slog.Logger
}

// NewServer creates a server serving the given pipeline components.
func NewServer(cfg Config, cat *catalog.Catalog, m *matcher.Matcher, agg *rates.Aggregator, calc *duty.Calculator, pop *forms.Populator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		logger: logger,
	}

	h := &Handler{
		Catalog:       cat,
		Matcher:       m,
		Aggregator:    agg,
		Calculator:    calc,
		Populator:     pop,
		SourceTimeout: cfg.SourceTimeout,
		Logger:        logger,
	}
	s.setupRoutes(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes(h *Handler) {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", h.Search).Methods("POST")
	api.HandleFunc("/rates", h.Rates).Methods("POST")
	api.HandleFunc("/duty", h.Duty).Methods("POST")
	api.HandleFunc("/form", h.Form).Methods("POST")
	api.HandleFunc("/health", h.Health).Methods("GET")

	s.router.Use(requestLogging(s.logger))
}

// Router returns the configured router. Tests mount it directly.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
