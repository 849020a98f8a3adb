// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDirOpener_PlaysFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002.png"), color.RGBA{G: 255, A: 255})
	writePNG(t, filepath.Join(dir, "001.png"), color.RGBA{R: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "003.jpg"), []byte("not a jpeg"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	src, err := DirOpener{Path: dir}.Open(context.Background())
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	first, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, FormatRGB24, first.Format)
	assert.Equal(t, "4x3", first.Resolution())
	assert.Equal(t, []byte{255, 0, 0}, first.Data[:3])
	require.NoError(t, first.Validate())

	second, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 0}, second.Data[:3])

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, ErrMalformedFrame, "undecodable file is a per-frame failure")

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestDirOpener_FileRemovedAfterOpenSkipsOneFrame(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "001.png"), color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "002.png"), color.RGBA{G: 255, A: 255})

	src, err := DirOpener{Path: dir}.Open(context.Background())
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, os.Remove(filepath.Join(dir, "001.png")))

	ctx := context.Background()
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, ErrMalformedFrame)
	assert.ErrorIs(t, err, os.ErrNotExist)

	next, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Seq)
	assert.Equal(t, []byte{0, 255, 0}, next.Data[:3])
}

func TestDirOpener_MissingDirectory(t *testing.T) {
	_, err := DirOpener{Path: filepath.Join(t.TempDir(), "missing")}.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPatternOpener(t *testing.T) {
	p, err := ParsePatternURI("testpattern://?count=3&w=8&h=4")
	require.NoError(t, err)
	assert.Equal(t, PatternOpener{Count: 3, Width: 8, Height: 4}, p)

	src, err := p.Open(context.Background())
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		f, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(i), f.Seq)
		assert.Equal(t, FormatBGR24, f.Format)
		require.NoError(t, f.Validate())
	}
	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, src.Close())
}

func TestParsePatternURI_Errors(t *testing.T) {
	for _, raw := range []string{"file:///x", "testpattern://?w=abc", "testpattern://?w=0"} {
		_, err := ParsePatternURI(raw)
		assert.Error(t, err, raw)
	}
}

func TestSliceSource(t *testing.T) {
	boom := errors.New("boom")
	src := NewScriptedSource(Step{Frame: Frame{Seq: 1}}, Step{Err: boom})
	ctx := context.Background()

	f, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.Seq)
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, boom)
	_, err = src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)

	assert.False(t, src.Closed())
	require.NoError(t, src.Close())
	assert.True(t, src.Closed())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewSliceSource(Frame{}).Next(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}
