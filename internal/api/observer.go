// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"

	"github.com/ManuGH/scenariod/internal/lifecycle"
	"github.com/ManuGH/scenariod/internal/metrics"
)

// MetricsObserver exports applied transitions as Prometheus series.
// Register it with lifecycle.WithObserver.
func MetricsObserver(_ context.Context, scenario string, tr lifecycle.Transition) {
	metrics.RecordTransition(scenario, string(tr.Trigger), tr.To.String())
	metrics.SetPhase(scenario, tr.To.String(), phaseNames())
}

// PublishPhases seeds the phase gauge for every scenario in reg.
func PublishPhases(reg *lifecycle.Registry) {
	names := phaseNames()
	for _, id := range reg.IDs() {
		ctrl, err := reg.Get(id)
		if err != nil {
			continue
		}
		metrics.SetPhase(id, ctrl.CurrentPhase().String(), names)
	}
}

func phaseNames() []string {
	phases := lifecycle.Phases()
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.String()
	}
	return out
}
