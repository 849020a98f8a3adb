// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package frames

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
}

// DirOpener plays the image files of a directory in lexical order, one frame per file.
type DirOpener struct {
	Path string
}

func (o DirOpener) Open(ctx context.Context) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(o.Path)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(o.Path, e.Name()))
		}
	}
	sort.Strings(files)
	return &dirSource{files: files}, nil
}

type dirSource struct {
	files []string
	pos   int
	seq   uint64
}

func (s *dirSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.files == nil || s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}
	path := s.files[s.pos]
	s.pos++
	s.seq++

	// A file that vanished or became unreadable since Open costs only its frame.
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: seq=%d open %s: %w", ErrMalformedFrame, s.seq, filepath.Base(path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: seq=%d decode %s: %v", ErrMalformedFrame, s.seq, filepath.Base(path), err)
	}
	frame := FromImage(img)
	frame.Seq = s.seq
	frame.CapturedAt = time.Now()
	return frame, nil
}

func (s *dirSource) Close() error {
	s.files = nil
	return nil
}
