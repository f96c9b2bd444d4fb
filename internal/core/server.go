// Package core provides the API chassis for the TaskStudy notification
// engine: a chi router with the cross-cutting middleware chain (panic
// recovery, timeouts, request IDs, structured request logging) applied
// before requests reach domain handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskstudy/internal/config"
)

// V1Registrar registers a group of domain routes under the /v1 namespace.
// The indirection keeps core free of imports on the handler packages.
type V1Registrar func(r chi.Router)

// Server encapsulates the router and its cross-cutting dependencies,
// allowing for easy injection during testing.
type Server struct {
	Config *config.Config
	Logger *slog.Logger

	// HealthProbes are checked by GET /health. Registered by main.
	HealthProbes []HealthProbe

	router     *chi.Mux
	registrars []V1Registrar
}

// NewServer initializes the server chassis. The caller registers domain
// routes with RegisterV1 and then calls MountRoutes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// RegisterV1 queues a route group for mounting under /v1.
func (s *Server) RegisterV1(reg V1Registrar) {
	s.registrars = append(s.registrars, reg)
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown complete")
	return nil
}
