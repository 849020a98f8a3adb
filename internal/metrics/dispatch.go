// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcome labels.
const (
	ResultSuccess         = "success"
	ResultDispatchFailure = "dispatch_failure"
	ResultDecodeFailure   = "decode_failure"
)

var (
	dispatchFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenariod_dispatch_frames_total",
		Help: "Frames handled by the dispatch loop by result",
	}, []string{"result"})

	dispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenariod_dispatch_latency_seconds",
		Help:    "Time from submitting a frame to receiving the scorer answer",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	dispatchBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scenariod_dispatch_frame_bytes",
		Help:    "Size of encoded frames submitted to the scorer",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	dispatchDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenariod_dispatch_detections_total",
		Help: "Detections returned by the scorer by label",
	}, []string{"label"})

	dispatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenariod_dispatch_runs_total",
		Help: "Dispatch loop invocations by outcome",
	}, []string{"outcome"})
)

// ObserveFrame records the outcome of one frame.
func ObserveFrame(result string) {
	dispatchFrames.WithLabelValues(result).Inc()
}

// ObserveDispatch records a completed scorer round trip.
func ObserveDispatch(latency time.Duration, encodedBytes int) {
	dispatchLatency.Observe(latency.Seconds())
	dispatchBytes.Observe(float64(encodedBytes))
}

// ObserveDetections counts returned labels.
func ObserveDetections(labels []string) {
	for _, l := range labels {
		dispatchDetections.WithLabelValues(l).Inc()
	}
}

// ObserveRun records how a loop invocation ended.
func ObserveRun(outcome string) {
	dispatchRuns.WithLabelValues(outcome).Inc()
}
