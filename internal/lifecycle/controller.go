// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuGH/scenariod/internal/fsm"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/rs/zerolog"
)

// Observer is notified after every applied transition.
type Observer func(ctx context.Context, scenario string, tr Transition)

// Option configures a Controller.
type Option func(*Controller)

// WithName labels the controller (the scenario id) in logs and observer calls.
func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers an observer. Observers run outside the transition lock,
// one transition at a time, in the order transitions were applied. An observer
// must not request a transition on the same controller.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Outcome describes what a transition request did.
type Outcome struct {
	From    Phase
	To      Phase
	Trigger Trigger
	Changed bool
}

// Controller is the single source of truth for a scenario's phase.
//
// Transition requests are serialized: read, decide and apply happen under one
// lock, so concurrent requests never interleave. CurrentPhase never observes a
// value other than the pre- or post-transition phase.
type Controller struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	machine   *fsm.Machine[Phase, Trigger]
	name      string
	logger    zerolog.Logger
	observers []Observer
}

// NewController returns a controller in PhaseInactive.
func NewController(opts ...Option) *Controller {
	m, err := fsm.New(PhaseInactive, machineEdges())
	if err != nil {
		// The table is static; a duplicate edge is a programming error.
		panic(fmt.Sprintf("lifecycle: invalid transition table: %v", err))
	}
	c := &Controller{
		machine: m,
		logger:  sdlog.WithComponent("lifecycle"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.name != "" {
		c.logger = c.logger.With().Str(sdlog.FieldScenarioID, c.name).Logger()
	}
	return c
}

// Name returns the label given with WithName.
func (c *Controller) Name() string { return c.name }

// CurrentPhase returns the current phase without side effects.
func (c *Controller) CurrentPhase() Phase {
	return c.machine.State()
}

// Next returns the transition that would leave the current phase.
func (c *Controller) Next() Transition {
	tr, _ := Successor(c.CurrentPhase())
	return tr
}

// RequestTransition moves the controller to target if target is the successor
// of the current phase. Requesting the current phase is a successful no-op.
func (c *Controller) RequestTransition(ctx context.Context, target string) (Phase, error) {
	out, err := c.Apply(ctx, target)
	if err != nil {
		return c.CurrentPhase(), err
	}
	return out.To, nil
}

// Apply is RequestTransition with the full outcome reported.
func (c *Controller) Apply(ctx context.Context, target string) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := sdlog.WithContext(ctx, c.logger)

	c.mu.Lock()
	from := c.machine.State()

	to, err := ParsePhase(target)
	if err != nil {
		c.mu.Unlock()
		logger.Warn().
			Str(sdlog.FieldEvent, "lifecycle.invalid_phase").
			Str(sdlog.FieldOldPhase, from.String()).
			Str(sdlog.FieldTarget, target).
			Msg("rejected transition to unknown phase")
		return Outcome{From: from, To: from}, &TransitionError{Kind: ErrInvalidPhase, From: from, Target: target}
	}

	if to == from {
		c.mu.Unlock()
		logger.Info().
			Str(sdlog.FieldEvent, "lifecycle.noop").
			Str(sdlog.FieldOldPhase, from.String()).
			Msg("already in requested phase")
		return Outcome{From: from, To: from}, nil
	}

	// The machine only knows the edge into target from its predecessor, so a
	// failed Fire is exactly a non-adjacent request.
	tr, _ := inbound(to)
	applied, err := c.machine.Fire(tr.Trigger)
	if err != nil {
		c.mu.Unlock()
		expected, _ := Successor(from)
		logger.Warn().
			Err(err).
			Str(sdlog.FieldEvent, "lifecycle.illegal_transition").
			Str(sdlog.FieldOldPhase, from.String()).
			Str(sdlog.FieldTarget, to.String()).
			Str("expected", expected.To.String()).
			Msg("rejected transition to non-adjacent phase")
		return Outcome{From: from, To: from}, &TransitionError{Kind: ErrIllegalTransition, From: from, Target: target}
	}

	// notifyMu is taken before c.mu is released so observers see transitions
	// in the order they were applied.
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	logger.Info().
		Str(sdlog.FieldEvent, "lifecycle.transition").
		Str(sdlog.FieldOldPhase, from.String()).
		Str(sdlog.FieldNewPhase, applied.String()).
		Str(sdlog.FieldTrigger, string(tr.Trigger)).
		Msg("phase changed")

	for _, o := range c.observers {
		o(ctx, c.name, tr)
	}
	return Outcome{From: from, To: applied, Trigger: tr.Trigger, Changed: true}, nil
}
