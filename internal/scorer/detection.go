// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package scorer

// Box is a bounding region in pixel coordinates of the submitted frame.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the scorer returned no region.
func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// Detection is one labelled region reported by the scorer.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
	Box        Box     `json:"box"`
}

// Response is the canonical scorer response body.
// Prediction carries the single-label form some scorers answer with.
type Response struct {
	Detections []Detection `json:"detections"`
	Prediction string      `json:"prediction,omitempty"`
}

// Labels returns the detection labels in order.
func Labels(ds []Detection) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Label
	}
	return out
}
