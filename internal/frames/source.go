// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package frames

import (
	"context"
	"io"
	"sync"
)

// Source yields a lazy, finite, non-restartable sequence of frames.
//
// Next returns io.EOF once the sequence is exhausted. An error wrapping
// ErrMalformedFrame concerns only that frame; any other error is unrecoverable.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// Opener acquires a Source.
type Opener interface {
	Open(ctx context.Context) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Source, error)

func (f OpenerFunc) Open(ctx context.Context) (Source, error) { return f(ctx) }

// Step is one scripted result of a SliceSource.
type Step struct {
	Frame Frame
	Err   error
}

// SliceSource replays an in-memory script. It is safe for concurrent use.
type SliceSource struct {
	mu     sync.Mutex
	steps  []Step
	pos    int
	closed bool
}

// NewSliceSource returns a source yielding frames in order.
func NewSliceSource(frames ...Frame) *SliceSource {
	steps := make([]Step, len(frames))
	for i, f := range frames {
		steps[i] = Step{Frame: f}
	}
	return &SliceSource{steps: steps}
}

// NewScriptedSource returns a source yielding each step's frame or error.
func NewScriptedSource(steps ...Step) *SliceSource {
	return &SliceSource{steps: steps}
}

func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pos >= len(s.steps) {
		return Frame{}, io.EOF
	}
	st := s.steps[s.pos]
	s.pos++
	return st.Frame, st.Err
}

func (s *SliceSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (s *SliceSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
