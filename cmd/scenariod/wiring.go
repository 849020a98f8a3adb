// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ManuGH/scenariod/internal/api"
	"github.com/ManuGH/scenariod/internal/api/middleware"
	"github.com/ManuGH/scenariod/internal/config"
	"github.com/ManuGH/scenariod/internal/daemon"
	"github.com/ManuGH/scenariod/internal/dispatch"
	"github.com/ManuGH/scenariod/internal/health"
	"github.com/ManuGH/scenariod/internal/lifecycle"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/ManuGH/scenariod/internal/scorer"
	"github.com/ManuGH/scenariod/internal/supervisor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// runtime is everything main needs to start the daemon.
type runtime struct {
	registry       *lifecycle.Registry
	health         *health.Manager
	apiHandler     http.Handler
	metricsHandler http.Handler
	workers        []daemon.Worker

	// Set only when the pipeline is enabled.
	pipelineScenario string
	sourceKind       string
}

// buildRuntime wires the lifecycle registry, HTTP surface and optional pipeline from cfg.
func buildRuntime(cfg config.AppConfig) (*runtime, error) {
	reg, err := lifecycle.NewRegistry(cfg.Scenarios, lifecycle.WithObserver(api.MetricsObserver))
	if err != nil {
		return nil, fmt.Errorf("build scenario registry: %w", err)
	}
	api.PublishPhases(reg)

	hm := health.NewManager(cfg.Version)
	hm.SetCheckTimeout(cfg.API.HealthCheckTimeout)
	hm.RegisterChecker(health.NewScenarioChecker(reg))

	rt := &runtime{registry: reg, health: hm}

	if cfg.Pipeline.Enabled {
		w, kind, err := buildPipeline(cfg, reg, hm)
		if err != nil {
			return nil, err
		}
		rt.workers = append(rt.workers, w)
		rt.pipelineScenario = cfg.Pipeline.Scenario
		rt.sourceKind = kind
	}

	stack := middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         cfg.Metrics.Enabled,
		EnableLogging:         true,
		RateLimitRequests:     cfg.API.RateLimitRequests,
		RateLimitWindow:       cfg.API.RateLimitWindow,
	}
	if cfg.Telemetry.Enabled {
		stack.TracingService = cfg.Telemetry.ServiceName
	}
	srv, err := api.New(reg, api.WithHealth(hm), api.WithStack(stack))
	if err != nil {
		return nil, err
	}
	rt.apiHandler = srv.Handler()
	if cfg.Metrics.Enabled {
		rt.metricsHandler = promhttp.Handler()
	}
	return rt, nil
}

// buildPipeline wires source, scorer, loop and supervisor for the gated scenario.
func buildPipeline(cfg config.AppConfig, reg *lifecycle.Registry, hm *health.Manager) (daemon.Worker, string, error) {
	p := cfg.Pipeline
	ctrl, err := reg.Get(p.Scenario)
	if err != nil {
		return daemon.Worker{}, "", fmt.Errorf("pipeline scenario: %w", err)
	}

	opener, kind, err := resolveSource(p.Source)
	if err != nil {
		return daemon.Worker{}, "", fmt.Errorf("pipeline source: %w", err)
	}
	warnCaptureMissing(sdlog.WithComponent("daemon"), p.Source, kind)

	client, err := scorer.New(scorer.Config{URL: p.ScorerURL, Timeout: p.DispatchTimeout})
	if err != nil {
		return daemon.Worker{}, "", fmt.Errorf("scorer client: %w", err)
	}

	gate := lifecycle.PhaseGate{Controller: ctrl}
	logger := sdlog.WithComponent("dispatch").With().Str(sdlog.FieldScenarioID, p.Scenario).Logger()
	loop, err := dispatch.New(dispatch.Config{
		PaceInterval:     p.PaceInterval,
		DispatchTimeout:  p.DispatchTimeout,
		GatePollInterval: p.GatePollInterval,
		Workers:          p.Workers,
		JPEGQuality:      p.JPEGQuality,
	}, opener, client,
		dispatch.WithGate(gate),
		dispatch.WithLogger(logger),
		dispatch.WithSourceName(kind),
	)
	if err != nil {
		return daemon.Worker{}, "", fmt.Errorf("dispatch loop: %w", err)
	}

	sup, err := supervisor.New(supervisor.Config{
		GatePollInterval: p.GatePollInterval,
		InitialBackoff:   p.Retry.InitialBackoff,
		MaxBackoff:       p.Retry.MaxBackoff,
		MaxElapsed:       p.Retry.MaxElapsed,
		MaxRetries:       p.Retry.MaxRetries,
		Repeat:           p.Repeat,
	}, loop, gate, logger)
	if err != nil {
		return daemon.Worker{}, "", fmt.Errorf("supervisor: %w", err)
	}

	hm.RegisterChecker(health.NewDispatchChecker(sup.Status, uint64(p.DegradeAfter)))
	if p.ScorerHealthURL != "" {
		hm.RegisterChecker(health.NewScorerChecker(p.ScorerHealthURL, nil, p.DispatchTimeout))
	}

	daemonLogger := sdlog.WithComponent("daemon")
	daemonLogger.Info().
		Str(sdlog.FieldEvent, "pipeline.configured").
		Str(sdlog.FieldScenarioID, p.Scenario).
		Str(sdlog.FieldSource, kind).
		Str(sdlog.FieldEndpoint, client.Endpoint()).
		Dur("pace_interval", p.PaceInterval).
		Int("workers", p.Workers).
		Msg("frame dispatch pipeline configured")

	return daemon.Worker{Name: "dispatch", Run: func(ctx context.Context) error { return sup.Run(ctx) }}, kind, nil
}
