// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fsm provides a small generic finite state machine.
package fsm

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTransition is returned when no edge exists for (state, event).
var ErrUnknownTransition = errors.New("unknown transition")

// Transition is one edge: Event moves the machine from From to To.
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

type edge[S ~string, E ~string] struct {
	from  S
	event E
}

// Machine applies events to a current state. It is strict: an event without
// an edge from the current state is an error and leaves the state unchanged.
// Safe for concurrent use.
type Machine[S ~string, E ~string] struct {
	mu    sync.RWMutex
	state S
	next  map[edge[S, E]]S
}

// New builds a machine starting in initial. Two edges sharing (From, Event) are rejected.
func New[S ~string, E ~string](initial S, transitions []Transition[S, E]) (*Machine[S, E], error) {
	next := make(map[edge[S, E]]S, len(transitions))
	for _, t := range transitions {
		k := edge[S, E]{from: t.From, event: t.Event}
		if prev, dup := next[k]; dup {
			return nil, fmt.Errorf("duplicate transition %s --%s--> %s (already --> %s)", t.From, t.Event, t.To, prev)
		}
		next[k] = t.To
	}
	return &Machine[S, E]{state: initial, next: next}, nil
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Fire applies event and returns the resulting state. On error the returned
// state is the unchanged current one.
func (m *Machine[S, E]) Fire(event E) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	to, ok := m.next[edge[S, E]{from: m.state, event: event}]
	if !ok {
		return m.state, fmt.Errorf("%w: state=%s event=%s", ErrUnknownTransition, m.state, event)
	}
	m.state = to
	return to, nil
}
