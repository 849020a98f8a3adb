// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package supervisor keeps a dispatch loop running while its scenario is active.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/scenariod/internal/dispatch"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Runner is satisfied by *dispatch.Loop. Snapshot reports the statistics of
// the invocation in progress.
type Runner interface {
	Execute(ctx context.Context) (dispatch.Stats, error)
	Snapshot() dispatch.Stats
}

// Config controls gate polling and the retry policy for unavailable sources.
type Config struct {
	GatePollInterval time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	// MaxElapsed bounds retries of one run. Zero retries until ctx is done.
	MaxElapsed time.Duration
	// MaxRetries bounds retries of one run. Zero means unlimited.
	MaxRetries int
	// Repeat restarts the loop after the source is exhausted.
	Repeat bool
}

const (
	DefaultGatePollInterval = 250 * time.Millisecond
	DefaultInitialBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff       = 30 * time.Second
)

// Status is the supervisor's view of the most recent loop invocation.
// While Running, Stats are live and LastErr belongs to the current attempt.
type Status struct {
	Running     bool
	Runs        int
	Attempts    int
	Stats       dispatch.Stats
	LastErr     error
	LastErrAt   time.Time
	CompletedAt time.Time
}

// SourceUnavailable reports whether the last attempt failed to open the source.
func (s Status) SourceUnavailable() bool {
	return errors.Is(s.LastErr, dispatch.ErrSourceUnavailable)
}

// Supervisor waits for the gate, runs the loop and retries source failures.
type Supervisor struct {
	cfg    Config
	runner Runner
	gate   dispatch.Gate
	logger zerolog.Logger

	mu     sync.RWMutex
	status Status
}

// New returns a supervisor. gate may be nil, in which case the loop starts immediately.
func New(cfg Config, runner Runner, gate dispatch.Gate, logger zerolog.Logger) (*Supervisor, error) {
	if runner == nil {
		return nil, errors.New("supervisor: runner is required")
	}
	if cfg.GatePollInterval <= 0 {
		cfg.GatePollInterval = DefaultGatePollInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		return nil, fmt.Errorf("supervisor: max backoff %s below initial backoff %s", cfg.MaxBackoff, cfg.InitialBackoff)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("supervisor: max retries must not be negative, got %d", cfg.MaxRetries)
	}
	return &Supervisor{
		cfg:    cfg,
		runner: runner,
		gate:   gate,
		logger: logger.With().Str(sdlog.FieldComponent, "supervisor").Logger(),
	}, nil
}

// Status returns a copy of the current status.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()
	if st.Running {
		st.Stats = s.runner.Snapshot()
	}
	return st
}

// Run blocks until ctx is done, a permanent error occurs, or the source is
// exhausted without Repeat. Context cancellation is reported as ctx.Err().
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := s.waitForGate(ctx); err != nil {
			return err
		}
		if err := s.runWithRetry(ctx); err != nil {
			return err
		}
		if !s.cfg.Repeat {
			s.logger.Info().Str(sdlog.FieldEvent, "supervisor.finished").Msg("frame source exhausted")
			return nil
		}
		s.logger.Info().Str(sdlog.FieldEvent, "supervisor.repeat").Msg("frame source exhausted, restarting")
		if err := sleep(ctx, s.cfg.GatePollInterval); err != nil {
			return err
		}
	}
}

func (s *Supervisor) waitForGate(ctx context.Context) error {
	if s.gate == nil || s.gate.Allow() {
		return ctx.Err()
	}
	s.logger.Debug().Str(sdlog.FieldEvent, "supervisor.waiting").Msg("waiting for scenario to become active")
	for !s.gate.Allow() {
		if err := sleep(ctx, s.cfg.GatePollInterval); err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) newBackoff() backoff.BackOff {
	ebo := backoff.NewExponentialBackOff()
	ebo.InitialInterval = s.cfg.InitialBackoff
	ebo.MaxInterval = s.cfg.MaxBackoff
	ebo.MaxElapsedTime = s.cfg.MaxElapsed
	ebo.Reset()
	if s.cfg.MaxRetries > 0 {
		return backoff.WithMaxRetries(ebo, uint64(s.cfg.MaxRetries))
	}
	return ebo
}

func (s *Supervisor) runWithRetry(ctx context.Context) error {
	attempt := 0
	op := func() error {
		attempt++
		s.update(func(st *Status) {
			st.Running = true
			st.Runs++
			st.Attempts = attempt
			st.LastErr = nil
			st.Stats = dispatch.Stats{}
		})
		stats, err := s.runner.Execute(ctx)
		s.update(func(st *Status) {
			st.Running = false
			st.Stats = stats
			st.LastErr = err
			if err != nil {
				st.LastErrAt = time.Now()
			} else {
				st.CompletedAt = time.Now()
			}
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, dispatch.ErrSourceUnavailable):
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().
			Err(err).
			Str(sdlog.FieldEvent, "supervisor.retry").
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("frame source unavailable, retrying")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(s.newBackoff(), ctx), notify)
	if err != nil && ctx.Err() == nil {
		s.logger.Error().
			Err(err).
			Str(sdlog.FieldEvent, "supervisor.failed").
			Int("attempts", attempt).
			Msg("dispatch loop stopped with error")
	}
	return err
}

func (s *Supervisor) update(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
	s.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
