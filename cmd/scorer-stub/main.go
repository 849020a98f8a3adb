// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command scorer-stub serves a stand-in inference endpoint for local runs:
// POST /inference answers with a random label, GET /healthz with 200.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/scenariod/internal/api/middleware"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/ManuGH/scenariod/internal/scorer/fake"
)

func main() {
	addr := flag.String("addr", ":8003", "listen address")
	delay := flag.Duration("delay", 0, "artificial latency per request")
	predictionOnly := flag.Bool("prediction-only", true, `answer {"prediction": label} instead of a detections list`)
	labels := flag.String("labels", strings.Join(fake.DefaultLabels, ","), "comma separated labels to choose from")
	flag.Parse()

	sdlog.Configure(sdlog.Config{Service: "scorer-stub"})
	logger := sdlog.WithComponent("scorer-stub")

	opts := []fake.Option{fake.WithDelay(*delay), fake.WithLabels(strings.Split(*labels, ",")...)}
	if *predictionOnly {
		opts = append(opts, fake.WithPredictionOnly())
	}

	router := middleware.NewRouter(middleware.StackConfig{EnableLogging: true})
	router.Mount("/", fake.NewServer(opts...))

	srv := &http.Server{Addr: *addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str(sdlog.FieldEvent, "scorer_stub.listening").Str("addr", *addr).Msg("scorer stub listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str(sdlog.FieldEvent, "scorer_stub.failed").Msg("scorer stub failed")
		os.Exit(1)
	}
}
