// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package frames

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

// PatternScheme selects the synthetic source in source URIs.
const PatternScheme = "testpattern"

// PatternOpener generates moving BGR gradient frames, like a camera would deliver.
// Count <= 0 yields frames until the context is cancelled.
type PatternOpener struct {
	Count  int
	Width  int
	Height int
}

// ParsePatternURI reads testpattern://?count=N&w=W&h=H.
func ParsePatternURI(raw string) (PatternOpener, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return PatternOpener{}, fmt.Errorf("parse pattern uri: %w", err)
	}
	if u.Scheme != PatternScheme {
		return PatternOpener{}, fmt.Errorf("not a %s uri: %q", PatternScheme, raw)
	}
	p := PatternOpener{Width: 320, Height: 240}
	q := u.Query()
	for key, dst := range map[string]*int{"count": &p.Count, "w": &p.Width, "h": &p.Height} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return PatternOpener{}, fmt.Errorf("pattern uri %s=%q: %w", key, v, err)
		}
		*dst = n
	}
	if p.Width <= 0 || p.Height <= 0 {
		return PatternOpener{}, fmt.Errorf("pattern size must be positive, got %dx%d", p.Width, p.Height)
	}
	return p, nil
}

func (o PatternOpener) Open(ctx context.Context) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("pattern size must be positive, got %dx%d", o.Width, o.Height)
	}
	return &patternSource{cfg: o}, nil
}

type patternSource struct {
	cfg    PatternOpener
	seq    uint64
	closed bool
}

func (s *patternSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.closed || (s.cfg.Count > 0 && s.seq >= uint64(s.cfg.Count)) {
		return Frame{}, io.EOF
	}
	s.seq++
	w, h := s.cfg.Width, s.cfg.Height
	data := make([]byte, w*h*3)
	shift := byte(s.seq * 4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			data[i] = byte(x*255/w) + shift // B
			data[i+1] = byte(y * 255 / h)   // G
			data[i+2] = 255 - data[i]       // R
		}
	}
	return Frame{Seq: s.seq, Width: w, Height: h, Format: FormatBGR24, Data: data, CapturedAt: time.Now()}, nil
}

func (s *patternSource) Close() error {
	s.closed = true
	return nil
}
