// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Frame attributes
	FrameSeqKey        = "frame.seq"
	FrameResolutionKey = "frame.resolution"
	FrameBytesKey      = "frame.encoded_bytes"

	// Scorer attributes
	ScorerEndpointKey   = "scorer.endpoint"
	ScorerDetectionsKey = "scorer.detections"

	// Lifecycle attributes
	ScenarioIDKey = "scenario.id"
	PhaseKey      = "lifecycle.phase"

	// Error attributes
	ErrorTypeKey = "error.type"

	// Resource attributes
	ResourceScenariosKey        = "scenariod.scenarios"
	ResourcePipelineScenarioKey = "scenariod.pipeline.scenario"
	ResourceSourceKindKey       = "scenariod.pipeline.source_kind"
)

// FrameAttributes creates frame-related span attributes.
func FrameAttributes(seq uint64, resolution string, encodedBytes int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int64(FrameSeqKey, int64(seq)),
	}
	if resolution != "" {
		attrs = append(attrs, attribute.String(FrameResolutionKey, resolution))
	}
	if encodedBytes > 0 {
		attrs = append(attrs, attribute.Int(FrameBytesKey, encodedBytes))
	}
	return attrs
}

// ErrorAttributes tags a span with a stable error class.
func ErrorAttributes(errType string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, errType)}
}
