package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for the supported original formats.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"picstash/internal/picstash"
)

// Defaults for thumbnail generation.
const (
	DefaultMaxDimension = 320
	DefaultQuality      = 80
)

// Generator derives JPEG previews from original image bytes, bounded to
// MaxDimension on the longest side with the aspect ratio preserved.
// Output is deterministic for identical input. Generation is a pure
// transform; the caller persists the result.
type Generator struct {
	MaxDimension int
	Quality      int
}

// NewGenerator creates a Generator with the default dimension and quality.
func NewGenerator() *Generator {
	return &Generator{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Generate decodes the original, scales it down and re-encodes as JPEG.
// Undecodable input fails with ErrUnsupportedMediaType.
func (g *Generator) Generate(original []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", picstash.ErrUnsupportedMediaType, err)
	}

	bounds := src.Bounds()
	w, h := targetSize(bounds.Dx(), bounds.Dy(), g.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: g.Quality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// targetSize bounds the longest side to max, preserving aspect ratio.
// Images already within bounds keep their dimensions (the thumbnail still
// normalizes the format).
func targetSize(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		scaled := h * max / w
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}
	scaled := w * max / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}

// Compile-time check that Generator implements picstash.Thumbnailer
var _ picstash.Thumbnailer = (*Generator)(nil)
