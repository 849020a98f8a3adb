// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/scenariod/internal/frames"
	"github.com/ManuGH/scenariod/internal/frames/capture"
	sdlog "github.com/ManuGH/scenariod/internal/log"
	"github.com/rs/zerolog"
)

const dirScheme = "dir://"

// resolveSource maps a configured source string to a frame opener:
//
//	testpattern://?count=N&w=W&h=H  synthetic frames
//	dir:///path or an existing dir  image files in name order
//	anything else                   OpenCV capture (file, rtsp://, device index)
func resolveSource(raw string) (frames.Opener, string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, "", fmt.Errorf("frame source is empty")
	case strings.HasPrefix(raw, frames.PatternScheme+"://"):
		p, err := frames.ParsePatternURI(raw)
		if err != nil {
			return nil, "", err
		}
		return p, "pattern", nil
	case strings.HasPrefix(raw, dirScheme):
		return frames.DirOpener{Path: strings.TrimPrefix(raw, dirScheme)}, "dir", nil
	}
	if info, err := os.Stat(raw); err == nil && info.IsDir() {
		return frames.DirOpener{Path: raw}, "dir", nil
	}
	return capture.Opener{URI: raw}, "capture", nil
}

// warnCaptureMissing logs a hint when raw resolved to OpenCV capture but the
// binary was built without it.
func warnCaptureMissing(logger zerolog.Logger, raw, kind string) bool {
	if kind != "capture" || capture.Available {
		return false
	}
	logger.Warn().
		Str(sdlog.FieldEvent, "pipeline.capture_unavailable").
		Str(sdlog.FieldSource, raw).
		Msg("source is not a directory or testpattern:// URI and capture support is not compiled in; rebuild with -tags gocv or fix the path")
	return true
}
