// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// ToRGB converts a frame to RGB channel order. Capture devices deliver BGR;
// the scorer expects RGB. Gray frames pass through unchanged.
func ToRGB(f Frame) (Frame, error) {
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	if f.Format != FormatBGR24 {
		return f, nil
	}
	out := f
	out.Format = FormatRGB24
	out.Data = make([]byte, len(f.Data))
	for i := 0; i+2 < len(f.Data); i += 3 {
		out.Data[i] = f.Data[i+2]
		out.Data[i+1] = f.Data[i+1]
		out.Data[i+2] = f.Data[i]
	}
	return out, nil
}

// DefaultJPEGQuality is used when JPEGEncoder.Quality is zero.
const DefaultJPEGQuality = 90

// JPEGEncoder turns RGB24 or Gray8 frames into baseline JPEG bytes.
type JPEGEncoder struct {
	Quality int
}

// Encode returns the frame as a JPEG image.
func (e JPEGEncoder) Encode(f Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	img, err := toImage(f)
	if err != nil {
		return nil, err
	}
	q := e.Quality
	if q <= 0 {
		q = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	buf.Grow(len(f.Data) / 8)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("jpeg encode seq=%d: %w", f.Seq, err)
	}
	return buf.Bytes(), nil
}

func toImage(f Frame) (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case FormatGray8:
		img := image.NewGray(rect)
		copy(img.Pix, f.Data)
		return img, nil
	case FormatRGB24:
		img := image.NewRGBA(rect)
		for src, dst := 0, 0; src < len(f.Data); src, dst = src+3, dst+4 {
			img.Pix[dst] = f.Data[src]
			img.Pix[dst+1] = f.Data[src+1]
			img.Pix[dst+2] = f.Data[src+2]
			img.Pix[dst+3] = 0xff
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: seq=%d cannot encode %s, convert to rgb first", ErrMalformedFrame, f.Seq, f.Format)
	}
}

// FromImage packs any decoded image into an RGB24 frame.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data = append(data, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return Frame{Width: w, Height: h, Format: FormatRGB24, Data: data}
}
