// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"

	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Worker is a long-running background task owned by the App.
// Run must return once ctx is done.
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// App runs the Manager next to its background workers.
// A failing worker is logged; it does not take the API down.
type App struct {
	logger  zerolog.Logger
	manager Manager
	workers []Worker
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, workers ...Worker) *App {
	return &App{logger: logger, manager: manager, workers: workers}
}

// Run blocks until ctx is cancelled or the manager fails. Workers are
// cancelled and awaited before Run returns.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var workers errgroup.Group
	for _, w := range a.workers {
		logger := a.logger.With().Str("worker", w.Name).Logger()
		workers.Go(func() error {
			logger.Info().Str(sdlog.FieldEvent, "worker.started").Msg("background worker started")
			err := w.Run(workerCtx)
			switch {
			case err == nil:
				logger.Info().Str(sdlog.FieldEvent, "worker.finished").Msg("background worker finished")
			case errors.Is(err, context.Canceled):
				logger.Debug().Str(sdlog.FieldEvent, "worker.stopped").Msg("background worker stopped")
			default:
				logger.Error().Err(err).Str(sdlog.FieldEvent, "worker.failed").Msg("background worker failed")
			}
			return nil
		})
	}

	// Workers stop before shutdown hooks run so hooks see a quiet system.
	a.manager.RegisterShutdownHook("workers", func(context.Context) error {
		cancelWorkers()
		return workers.Wait()
	})

	err := a.manager.Start(ctx)
	cancelWorkers()
	_ = workers.Wait()
	return err
}
