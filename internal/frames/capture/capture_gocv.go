//go:build gocv
// +build gocv

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package capture

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ManuGH/scenariod/internal/frames"
	"gocv.io/x/gocv"
)

// Available reports whether OpenCV capture is compiled in.
const Available = true

func (o Opener) Open(ctx context.Context) (frames.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vc, err := gocv.OpenVideoCapture(o.URI)
	if err != nil {
		return nil, fmt.Errorf("open video capture %q: %w", o.URI, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("open video capture %q: device not opened", o.URI)
	}
	return &source{vc: vc, mat: gocv.NewMat(), scratch: gocv.NewMat()}, nil
}

type source struct {
	vc      *gocv.VideoCapture
	mat     gocv.Mat
	scratch gocv.Mat
	seq     uint64
	closed  bool
}

func (s *source) Next(ctx context.Context) (frames.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frames.Frame{}, err
	}
	if s.closed {
		return frames.Frame{}, io.EOF
	}
	// VideoCapture reports end of stream and read failure the same way.
	if ok := s.vc.Read(&s.mat); !ok {
		return frames.Frame{}, io.EOF
	}
	s.seq++
	if s.mat.Empty() {
		return frames.Frame{}, fmt.Errorf("%w: seq=%d empty mat", frames.ErrMalformedFrame, s.seq)
	}

	src := s.mat
	format := frames.FormatBGR24
	switch s.mat.Channels() {
	case 3:
	case 1:
		format = frames.FormatGray8
	case 4:
		gocv.CvtColor(s.mat, &s.scratch, gocv.ColorBGRAToBGR)
		src = s.scratch
	default:
		return frames.Frame{}, fmt.Errorf("%w: seq=%d unsupported channel count %d", frames.ErrMalformedFrame, s.seq, s.mat.Channels())
	}
	if !src.IsContinuous() {
		cloned := src.Clone()
		defer cloned.Close()
		src = cloned
	}

	return frames.Frame{
		Seq:        s.seq,
		Width:      src.Cols(),
		Height:     src.Rows(),
		Format:     format,
		Data:       src.ToBytes(),
		CapturedAt: time.Now(),
	}, nil
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.mat.Close()
	_ = s.scratch.Close()
	return s.vc.Close()
}
