//go:build !gocv
// +build !gocv

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"context"
	"fmt"

	"github.com/ManuGH/scenariod/internal/frames"
)

// Available reports whether OpenCV capture is compiled in.
const Available = false

// Open is a stub when OpenCV support is not compiled in.
func (o Opener) Open(_ context.Context) (frames.Source, error) {
	return nil, fmt.Errorf("open %q: %w", o.URI, ErrNotCompiled)
}
