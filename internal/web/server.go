// Package web serves the normalization pipeline over HTTP.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/mobcsv/internal/config"
	"github.com/JonMunkholm/mobcsv/internal/history"
	webmw "github.com/JonMunkholm/mobcsv/internal/web/middleware"
)

// RunStore records and lists pipeline runs. Satisfied by *history.Store.
type RunStore interface {
	Record(ctx context.Context, run history.Run) error
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// Server is the HTTP server for mobcsv.
type Server struct {
	cfg     *config.Config
	runs    RunStore // nil when history is disabled
	limiter *Limiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. runs may be nil.
func NewServer(cfg *config.Config, runs RunStore) *Server {
	s := &Server{
		cfg:     cfg,
		runs:    runs,
		limiter: NewLimiter(cfg.Server.MaxConcurrent, cfg.Server.QueueTimeout),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(webmw.Deadline(s.cfg.Server.RequestTimeout))
	s.router.Use(webmw.SecurityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/normalize", s.handleNormalize)
	s.router.Get("/runs", s.handleRuns)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running normalize
// requests to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if active := s.limiter.Status().Active; active > 0 {
		slog.Info("waiting for runs to complete", "active", active)
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.Wait(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
