// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/scenariod/internal/fsm"

// Transition is a single allowed edge in the lifecycle cycle.
type Transition struct {
	From    Phase
	Trigger Trigger
	To      Phase
}

// transitionsTable is keyed by source phase: every phase has exactly one way out.
var transitionsTable = map[Phase]Transition{
	PhaseInactive:             {From: PhaseInactive, Trigger: TriggerStartup, To: PhaseInitStartup},
	PhaseInitStartup:          {From: PhaseInitStartup, Trigger: TriggerProcessingStartup, To: PhaseInStartupProcessing},
	PhaseInStartupProcessing:  {From: PhaseInStartupProcessing, Trigger: TriggerActivate, To: PhaseActive},
	PhaseActive:               {From: PhaseActive, Trigger: TriggerShutdown, To: PhaseInitShutdown},
	PhaseInitShutdown:         {From: PhaseInitShutdown, Trigger: TriggerProcessingShutdown, To: PhaseInShutdownProcessing},
	PhaseInShutdownProcessing: {From: PhaseInShutdownProcessing, Trigger: TriggerDeactivate, To: PhaseInactive},
}

// Successor returns the only transition leaving from.
func Successor(from Phase) (Transition, bool) {
	tr, ok := transitionsTable[from]
	return tr, ok
}

// inbound returns the only transition entering to. Since each phase has a
// single way in, a target phase names its trigger.
func inbound(to Phase) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.To == to {
			return tr, true
		}
	}
	return Transition{}, false
}

func machineEdges() []fsm.Transition[Phase, Trigger] {
	edges := make([]fsm.Transition[Phase, Trigger], 0, len(transitionsTable))
	for _, from := range cycleOrder {
		tr := transitionsTable[from]
		edges = append(edges, fsm.Transition[Phase, Trigger]{From: tr.From, Event: tr.Trigger, To: tr.To})
	}
	return edges
}
