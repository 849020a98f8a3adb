// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch runs the frame dispatch loop: pull a frame, convert it,
// encode it, submit it to the scorer, pace, repeat. A failed frame never
// stops the stream.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ManuGH/scenariod/internal/frames"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/ManuGH/scenariod/internal/metrics"
	"github.com/ManuGH/scenariod/internal/scorer"
	"github.com/ManuGH/scenariod/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Scorer submits one encoded frame to the remote scorer.
type Scorer interface {
	Score(ctx context.Context, image []byte) ([]scorer.Detection, error)
}

// Encoder produces the transport representation of a frame.
type Encoder interface {
	Encode(f frames.Frame) ([]byte, error)
}

// Gate is consulted once per iteration before a frame is pulled.
type Gate interface {
	Allow() bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithGate holds the loop while gate is closed.
func WithGate(g Gate) Option {
	return func(l *Loop) { l.gate = g }
}

// WithResultSink receives every per-frame result. With Workers > 1 it is called concurrently.
func WithResultSink(fn func(Result)) Option {
	return func(l *Loop) { l.sink = fn }
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithSourceName labels the source in logs.
func WithSourceName(name string) Option {
	return func(l *Loop) { l.sourceName = name }
}

// Loop drives frames from an Opener to a Scorer.
type Loop struct {
	cfg        Config
	opener     frames.Opener
	scorer     Scorer
	encoder    Encoder
	preprocess func(frames.Frame) (frames.Frame, error)
	gate       Gate
	sink       func(Result)
	logger     zerolog.Logger
	tracer     trace.Tracer
	sourceName string

	mu      sync.Mutex
	current *tally
}

// New builds a loop. opener and sc are required.
func New(cfg Config, opener frames.Opener, sc Scorer, opts ...Option) (*Loop, error) {
	if opener == nil {
		return nil, errors.New("dispatch: frame opener is required")
	}
	if sc == nil {
		return nil, errors.New("dispatch: scorer is required")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	l := &Loop{
		cfg:        cfg,
		opener:     opener,
		scorer:     sc,
		encoder:    frames.JPEGEncoder{Quality: cfg.JPEGQuality},
		preprocess: frames.ToRGB,
		logger:     sdlog.WithComponent("dispatch"),
		tracer:     telemetry.Tracer("scenariod/dispatch"),
		current:    &tally{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sourceName != "" {
		l.logger = l.logger.With().Str(sdlog.FieldSource, l.sourceName).Logger()
	}
	return l, nil
}

// Handle owns an opened source. Close is idempotent and nil-safe.
type Handle struct {
	src    frames.Source
	once   sync.Once
	err    error
	logger zerolog.Logger
}

// Close releases the source.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		h.err = h.src.Close()
		if h.err != nil {
			h.logger.Warn().Err(h.err).Str(sdlog.FieldEvent, "dispatch.close_failed").Msg("frame source close failed")
			return
		}
		h.logger.Debug().Str(sdlog.FieldEvent, "dispatch.source_closed").Msg("frame source released")
	})
	return h.err
}

// Open acquires the frame source. Failure is reported as ErrSourceUnavailable.
func (l *Loop) Open(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	l.current = &tally{}
	l.mu.Unlock()

	src, err := l.opener.Open(ctx)
	if err == nil && src == nil {
		err = errors.New("opener returned no source")
	}
	if err != nil {
		metrics.ObserveRun("source_unavailable")
		l.logger.Error().
			Err(err).
			Str(sdlog.FieldEvent, "dispatch.source_unavailable").
			Msg("cannot open frame source")
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	l.logger.Info().Str(sdlog.FieldEvent, "dispatch.source_opened").Msg("frame source opened")
	return &Handle{src: src, logger: l.logger}, nil
}

// Execute opens the source, runs the loop and always closes the source.
func (l *Loop) Execute(ctx context.Context) (Stats, error) {
	h, err := l.Open(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer h.Close()
	return l.Run(ctx, h)
}

// Snapshot returns the statistics of the running or most recent invocation.
func (l *Loop) Snapshot() Stats {
	l.mu.Lock()
	t := l.current
	l.mu.Unlock()
	return t.snapshot()
}

// Run processes frames until the source is exhausted, an unrecoverable
// acquisition error occurs, or ctx is cancelled. Per-frame failures are
// recorded in the returned Stats and never end the run.
func (l *Loop) Run(ctx context.Context, h *Handle) (Stats, error) {
	if h == nil || h.src == nil {
		return Stats{}, errors.New("dispatch: run without an open handle")
	}

	t := &tally{s: Stats{StartedAt: time.Now()}}
	l.mu.Lock()
	l.current = t
	l.mu.Unlock()

	l.logger.Info().
		Str(sdlog.FieldEvent, "dispatch.started").
		Dur("pace_interval", l.cfg.PaceInterval).
		Dur("dispatch_timeout", l.cfg.DispatchTimeout).
		Int("workers", l.cfg.Workers).
		Msg("dispatch loop started")

	err := l.run(ctx, h.src, t)
	stats := t.snapshot()

	evt := l.logger.Info()
	outcome := "completed"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome = "cancelled"
	default:
		outcome = "acquisition_failed"
		evt = l.logger.Error().Err(err)
	}
	metrics.ObserveRun(outcome)
	evt.
		Str(sdlog.FieldEvent, "dispatch.stopped").
		Str("outcome", outcome).
		Uint64("frames", stats.Frames).
		Uint64("succeeded", stats.Succeeded).
		Uint64("dispatch_failures", stats.DispatchFailures).
		Uint64("decode_failures", stats.DecodeFailures).
		Msg("dispatch loop stopped")
	return stats, err
}

func (l *Loop) run(ctx context.Context, src frames.Source, t *tally) error {
	var g errgroup.Group
	g.SetLimit(l.cfg.Workers)
	concurrent := l.cfg.Workers > 1

	for {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return err
		}

		if l.gate != nil && !l.gate.Allow() {
			if err := sleep(ctx, l.cfg.GatePollInterval); err != nil {
				_ = g.Wait()
				return err
			}
			continue
		}

		frame, err := src.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return g.Wait()
		case ctx.Err() != nil:
			_ = g.Wait()
			return ctx.Err()
		case errors.Is(err, frames.ErrMalformedFrame):
			l.recordDecodeFailure(t, frame.Seq, err)
			if err := sleep(ctx, l.cfg.PaceInterval); err != nil {
				_ = g.Wait()
				return err
			}
			continue
		default:
			_ = g.Wait()
			return fmt.Errorf("acquire frame: %w", err)
		}

		if concurrent {
			g.Go(func() error {
				l.process(ctx, frame, t)
				return nil
			})
		} else {
			l.process(ctx, frame, t)
		}

		if err := sleep(ctx, l.cfg.PaceInterval); err != nil {
			_ = g.Wait()
			return err
		}
	}
}

// process runs preprocess, encode and dispatch for one frame.
func (l *Loop) process(ctx context.Context, frame frames.Frame, t *tally) {
	ctx, span := l.tracer.Start(ctx, "dispatch.frame", trace.WithAttributes(
		telemetry.FrameAttributes(frame.Seq, frame.Resolution(), 0)...,
	))
	defer span.End()

	rgb, err := l.preprocess(frame)
	if err != nil {
		span.SetStatus(codes.Error, "preprocess")
		span.SetAttributes(telemetry.ErrorAttributes("decode")...)
		l.recordDecodeFailure(t, frame.Seq, err)
		return
	}
	encoded, err := l.encoder.Encode(rgb)
	if err != nil {
		span.SetStatus(codes.Error, "encode")
		span.SetAttributes(telemetry.ErrorAttributes("decode")...)
		l.recordDecodeFailure(t, frame.Seq, err)
		return
	}
	span.SetAttributes(attribute.Int(telemetry.FrameBytesKey, len(encoded)))

	dctx, cancel := context.WithTimeout(ctx, l.cfg.DispatchTimeout)
	start := time.Now()
	detections, err := l.scorer.Score(dctx, encoded)
	latency := time.Since(start)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			// Cancelled by the caller, not a scorer failure.
			span.SetStatus(codes.Error, "cancelled")
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch")
		span.SetAttributes(telemetry.ErrorAttributes("dispatch")...)
		wrapped := fmt.Errorf("%w: seq=%d: %w", ErrDispatchFailure, frame.Seq, err)
		t.dispatchFailure(wrapped)
		metrics.ObserveFrame(metrics.ResultDispatchFailure)
		l.logger.Warn().
			Err(err).
			Str(sdlog.FieldEvent, "dispatch.failed").
			Uint64(sdlog.FieldSeq, frame.Seq).
			Dur(sdlog.FieldLatency, latency).
			Msg("frame dispatch failed, continuing with next frame")
		l.emit(Result{Seq: frame.Seq, Err: wrapped, Latency: latency})
		return
	}

	labels := scorer.Labels(detections)
	span.SetAttributes(attribute.Int(telemetry.ScorerDetectionsKey, len(detections)))
	t.success(time.Now())
	metrics.ObserveFrame(metrics.ResultSuccess)
	metrics.ObserveDispatch(latency, len(encoded))
	metrics.ObserveDetections(labels)
	l.logger.Info().
		Str(sdlog.FieldEvent, "dispatch.scored").
		Uint64(sdlog.FieldSeq, frame.Seq).
		Str(sdlog.FieldResolution, frame.Resolution()).
		Int(sdlog.FieldBytes, len(encoded)).
		Strs(sdlog.FieldDetections, labels).
		Dur(sdlog.FieldLatency, latency).
		Msg("inference response")
	l.emit(Result{Seq: frame.Seq, Detections: detections, Latency: latency})
}

func (l *Loop) recordDecodeFailure(t *tally, seq uint64, cause error) {
	wrapped := fmt.Errorf("%w: seq=%d: %w", ErrDecodeFailure, seq, cause)
	t.decodeFailure(wrapped)
	metrics.ObserveFrame(metrics.ResultDecodeFailure)
	l.logger.Warn().
		Err(cause).
		Str(sdlog.FieldEvent, "dispatch.decode_failed").
		Uint64(sdlog.FieldSeq, seq).
		Msg("frame could not be prepared, continuing with next frame")
	l.emit(Result{Seq: seq, Err: wrapped})
}

func (l *Loop) emit(r Result) {
	if l.sink != nil {
		l.sink(r)
	}
}

// sleep waits for d or until ctx is done. A zero duration only checks ctx.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
