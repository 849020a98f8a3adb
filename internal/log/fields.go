// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldScenarioID = "scenario_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Lifecycle fields
	FieldOldPhase = "old_phase"
	FieldNewPhase = "new_phase"
	FieldTarget   = "target"
	FieldTrigger  = "trigger"

	// Frame fields
	FieldSeq        = "seq"
	FieldSource     = "source"
	FieldResolution = "resolution"
	FieldBytes      = "bytes"

	// Scorer fields
	FieldEndpoint   = "endpoint"
	FieldDetections = "detections"
	FieldLatency    = "latency"
)
