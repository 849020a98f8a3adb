// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package capture opens video files, streams and devices through OpenCV.
//
// The OpenCV binding is compiled in with the gocv build tag; without it every
// Open fails with ErrNotCompiled, which the dispatch loop reports as an
// unavailable source.
package capture

import "errors"

// ErrNotCompiled is returned by Open when the binary was built without gocv.
var ErrNotCompiled = errors.New("video capture support not compiled in (build with -tags gocv)")

// Opener opens URI with OpenCV's VideoCapture: a file path, an rtsp/http URL,
// or a numeric device index.
type Opener struct {
	URI string
}
