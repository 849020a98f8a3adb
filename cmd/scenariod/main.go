// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/scenariod/internal/config"
	"github.com/ManuGH/scenariod/internal/daemon"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/ManuGH/scenariod/internal/telemetry"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		case "transition":
			os.Exit(runTransitionCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	sdlog.Configure(sdlog.Config{Level: "info", Service: "scenariod", Version: version})
	logger := sdlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString(config.EnvPrefix+"CONFIG", ""))
	}
	cfg, err := config.NewLoader(path, version).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(sdlog.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	sdlog.Configure(sdlog.Config{Level: cfg.LogLevel, Service: "scenariod", Version: cfg.Version})
	logger = sdlog.WithComponent("daemon")
	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str(sdlog.FieldEvent, "config.loaded").
		Str("source", source).
		Str("path", path).
		Strs("scenarios", cfg.Scenarios).
		Bool("pipeline", cfg.Pipeline.Enabled).
		Msg("configuration loaded")

	rt, err := buildRuntime(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str(sdlog.FieldEvent, "wiring.failed").Msg("failed to build runtime")
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:          cfg.Telemetry.Enabled,
		ServiceName:      cfg.Telemetry.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Telemetry.Environment,
		Exporter:         cfg.Telemetry.Exporter,
		Endpoint:         cfg.Telemetry.Endpoint,
		SamplingRate:     cfg.Telemetry.SamplingRate,
		Scenarios:        cfg.Scenarios,
		PipelineScenario: rt.pipelineScenario,
		SourceKind:       rt.sourceKind,
	})
	if err != nil {
		logger.Fatal().Err(err).Str(sdlog.FieldEvent, "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	deps := daemon.Deps{
		Logger:     logger,
		APIHandler: rt.apiHandler,
	}
	if rt.metricsHandler != nil {
		deps.MetricsHandler = rt.metricsHandler
		deps.MetricsAddr = cfg.Metrics.ListenAddr
	}
	mgr, err := daemon.NewManager(daemon.ServerConfig{
		ListenAddr:      cfg.API.ListenAddr,
		ReadTimeout:     cfg.API.ReadTimeout,
		WriteTimeout:    cfg.API.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, deps)
	if err != nil {
		logger.Fatal().Err(err).Str(sdlog.FieldEvent, "manager.init_failed").Msg("failed to create daemon manager")
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	if err := daemon.NewApp(logger, mgr, rt.workers...).Run(ctx); err != nil {
		logger.Error().Err(err).Str(sdlog.FieldEvent, "daemon.exit_error").Msg("daemon stopped with error")
		os.Exit(1)
	}
}
