// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package lifecycle owns the operational phase of a scenario and the single
// cycle it may travel: inactive, startup, active, shutdown, back to inactive.
package lifecycle

import (
	"fmt"
	"strings"
)

// Phase is one of the six fixed operational phases.
type Phase string

const (
	PhaseInactive             Phase = "inactive"
	PhaseInitStartup          Phase = "init_startup"
	PhaseInStartupProcessing  Phase = "in_startup_processing"
	PhaseActive               Phase = "active"
	PhaseInitShutdown         Phase = "init_shutdown"
	PhaseInShutdownProcessing Phase = "in_shutdown_processing"
)

// cycleOrder lists the phases in their intended order of travel.
var cycleOrder = [...]Phase{
	PhaseInactive,
	PhaseInitStartup,
	PhaseInStartupProcessing,
	PhaseActive,
	PhaseInitShutdown,
	PhaseInShutdownProcessing,
}

// Phases returns all valid phases in cycle order.
func Phases() []Phase {
	out := make([]Phase, len(cycleOrder))
	copy(out, cycleOrder[:])
	return out
}

// Valid reports whether p is one of the six known phases.
func (p Phase) Valid() bool {
	for _, known := range cycleOrder {
		if p == known {
			return true
		}
	}
	return false
}

func (p Phase) String() string { return string(p) }

// ParsePhase maps a wire token onto a Phase. Surrounding whitespace and case are ignored.
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
	return p, nil
}

// Trigger names the event that moves a phase to its successor.
type Trigger string

const (
	TriggerStartup            Trigger = "startup"
	TriggerProcessingStartup  Trigger = "processing_startup"
	TriggerActivate           Trigger = "activate"
	TriggerShutdown           Trigger = "shutdown"
	TriggerProcessingShutdown Trigger = "processing_shutdown"
	TriggerDeactivate         Trigger = "deactivate"
)
