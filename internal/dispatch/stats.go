// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"sync"
	"time"

	"github.com/ManuGH/scenariod/internal/scorer"
)

// Result is the outcome of one frame. Err == nil means success.
type Result struct {
	Seq        uint64
	Detections []scorer.Detection
	Err        error
	Latency    time.Duration
}

// OK reports whether the frame was scored.
func (r Result) OK() bool { return r.Err == nil }

// Stats summarises a loop invocation.
type Stats struct {
	Frames              uint64
	Succeeded           uint64
	DispatchFailures    uint64
	DecodeFailures      uint64
	ConsecutiveFailures uint64
	LastError           string
	LastSuccessAt       time.Time
	StartedAt           time.Time
}

// Failures is the sum of both per-frame failure kinds.
func (s Stats) Failures() uint64 { return s.DispatchFailures + s.DecodeFailures }

type tally struct {
	mu sync.Mutex
	s  Stats
}

func (t *tally) success(at time.Time) {
	t.mu.Lock()
	t.s.Frames++
	t.s.Succeeded++
	t.s.ConsecutiveFailures = 0
	t.s.LastSuccessAt = at
	t.mu.Unlock()
}

func (t *tally) dispatchFailure(err error) {
	t.mu.Lock()
	t.s.Frames++
	t.s.DispatchFailures++
	t.s.ConsecutiveFailures++
	t.s.LastError = err.Error()
	t.mu.Unlock()
}

func (t *tally) decodeFailure(err error) {
	t.mu.Lock()
	t.s.Frames++
	t.s.DecodeFailures++
	t.s.ConsecutiveFailures++
	t.s.LastError = err.Error()
	t.mu.Unlock()
}

func (t *tally) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}
