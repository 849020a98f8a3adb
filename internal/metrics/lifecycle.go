// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics holds the Prometheus collectors of scenariod.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenariod_lifecycle_transitions_total",
		Help: "Applied lifecycle transitions by scenario, trigger and destination phase",
	}, []string{"scenario", "trigger", "to"})

	lifecycleRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenariod_lifecycle_rejections_total",
		Help: "Rejected lifecycle transition requests by scenario and reason",
	}, []string{"scenario", "reason"})

	lifecyclePhase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scenariod_lifecycle_phase",
		Help: "Current lifecycle phase per scenario (current=1; others 0)",
	}, []string{"scenario", "phase"})
)

// RecordTransition counts an applied transition.
func RecordTransition(scenario, trigger, to string) {
	lifecycleTransitions.WithLabelValues(scenario, trigger, to).Inc()
}

// RecordRejection counts a rejected transition request.
func RecordRejection(scenario, reason string) {
	lifecycleRejections.WithLabelValues(scenario, reason).Inc()
}

// SetPhase marks current as the active phase of scenario among all phases.
func SetPhase(scenario, current string, all []string) {
	for _, p := range all {
		value := 0.0
		if p == current {
			value = 1.0
		}
		lifecyclePhase.WithLabelValues(scenario, p).Set(value)
	}
}
