// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package frames defines raw video frames, the sources that produce them and
// the conversions applied before a frame leaves the process.
package frames

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedFrame marks a frame whose pixel data cannot be interpreted.
// It is a per-frame condition: the source remains usable.
var ErrMalformedFrame = errors.New("malformed frame")

// PixelFormat describes the byte layout of Frame.Data.
type PixelFormat string

const (
	FormatBGR24 PixelFormat = "bgr24"
	FormatRGB24 PixelFormat = "rgb24"
	FormatGray8 PixelFormat = "gray8"
)

// Channels returns bytes per pixel, or 0 for an unknown format.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatBGR24, FormatRGB24:
		return 3
	case FormatGray8:
		return 1
	default:
		return 0
	}
}

// Frame is one raster image, packed row-major without padding.
type Frame struct {
	Seq        uint64
	Width      int
	Height     int
	Format     PixelFormat
	Data       []byte
	CapturedAt time.Time
}

// Validate checks that dimensions, format and buffer length agree.
func (f Frame) Validate() error {
	ch := f.Format.Channels()
	switch {
	case ch == 0:
		return fmt.Errorf("%w: seq=%d unknown pixel format %q", ErrMalformedFrame, f.Seq, f.Format)
	case f.Width <= 0 || f.Height <= 0:
		return fmt.Errorf("%w: seq=%d invalid size %dx%d", ErrMalformedFrame, f.Seq, f.Width, f.Height)
	case len(f.Data) != f.Width*f.Height*ch:
		return fmt.Errorf("%w: seq=%d want %d bytes, have %d", ErrMalformedFrame, f.Seq, f.Width*f.Height*ch, len(f.Data))
	}
	return nil
}

// Resolution formats the frame size as WxH.
func (f Frame) Resolution() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}
