// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

// PhaseGate opens only while its controller is Active.
type PhaseGate struct {
	Controller *Controller
}

// Allow takes one read of the current phase.
func (g PhaseGate) Allow() bool {
	return g.Controller != nil && g.Controller.CurrentPhase() == PhaseActive
}
