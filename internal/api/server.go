// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the scenario lifecycle over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/ManuGH/scenariod/internal/api/middleware"
	"github.com/ManuGH/scenariod/internal/api/problem"
	"github.com/ManuGH/scenariod/internal/health"
	"github.com/ManuGH/scenariod/internal/lifecycle"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Option configures a Server.
type Option func(*Server)

// WithHealth mounts /healthz and /readyz from m.
func WithHealth(m *health.Manager) Option {
	return func(s *Server) { s.health = m }
}

// WithStack replaces the default middleware stack configuration.
func WithStack(cfg middleware.StackConfig) Option {
	return func(s *Server) { s.stack = cfg }
}

// Server exposes the lifecycle registry.
type Server struct {
	registry *lifecycle.Registry
	health   *health.Manager
	validate *validator.Validate
	stack    middleware.StackConfig
}

// New returns a server for reg.
func New(reg *lifecycle.Registry, opts ...Option) (*Server, error) {
	if reg == nil {
		return nil, errors.New("api: scenario registry is required")
	}
	s := &Server{
		registry: reg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		stack: middleware.StackConfig{
			EnableSecurityHeaders: true,
			EnableMetrics:         true,
			EnableLogging:         true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler builds the router with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(s.stack)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, problem.CodeNotFound, "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, problem.CodeMethodNotAllowed, r.Method+" is not allowed here", nil)
	})

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}

	r.Route("/api/v1/scenarios", func(r chi.Router) {
		r.Get("/", s.handleListScenarios)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(scenarioContext)
			r.Get("/", s.handleGetScenario)
			r.Post("/transition", s.handleTransition)
		})
	})
	return r
}

// scenarioContext attaches the path scenario id to the request logger context.
func scenarioContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := sdlog.ContextWithScenarioID(r.Context(), chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
