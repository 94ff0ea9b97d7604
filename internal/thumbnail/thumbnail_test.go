package thumbnail_test

import (
	"bytes"
	"errors"
	"image/jpeg"
	"testing"

	"picstash/internal/picstash"
	"picstash/internal/testutil"
	"picstash/internal/thumbnail"
)

func TestGenerator_Generate(t *testing.T) {
	gen := thumbnail.NewGenerator()

	t.Run("bounds the longest side", func(t *testing.T) {
		thumb, err := gen.Generate(testutil.PNG(t, 1600, 900, 1))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		img, err := jpeg.Decode(bytes.NewReader(thumb))
		if err != nil {
			t.Fatalf("thumbnail is not a decodable JPEG: %v", err)
		}

		b := img.Bounds()
		if b.Dx() != thumbnail.DefaultMaxDimension {
			t.Errorf("width = %d, want %d", b.Dx(), thumbnail.DefaultMaxDimension)
		}
		// 1600x900 scaled to 320 wide keeps the 16:9 shape.
		if b.Dy() != 180 {
			t.Errorf("height = %d, want 180", b.Dy())
		}
	})

	t.Run("portrait images scale on the height", func(t *testing.T) {
		thumb, err := gen.Generate(testutil.PNG(t, 900, 1600, 2))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		img, err := jpeg.Decode(bytes.NewReader(thumb))
		if err != nil {
			t.Fatalf("decoding thumbnail: %v", err)
		}
		if b := img.Bounds(); b.Dy() != thumbnail.DefaultMaxDimension || b.Dx() != 180 {
			t.Errorf("dimensions = %dx%d, want 180x%d", b.Dx(), b.Dy(), thumbnail.DefaultMaxDimension)
		}
	})

	t.Run("small images keep their dimensions", func(t *testing.T) {
		thumb, err := gen.Generate(testutil.PNG(t, 100, 80, 3))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		img, err := jpeg.Decode(bytes.NewReader(thumb))
		if err != nil {
			t.Fatalf("decoding thumbnail: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
			t.Errorf("dimensions = %dx%d, want 100x80", b.Dx(), b.Dy())
		}
	})

	t.Run("output is deterministic", func(t *testing.T) {
		data := testutil.PNG(t, 640, 480, 4)
		a, err := gen.Generate(data)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		b, err := gen.Generate(data)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Error("identical input produced different thumbnails")
		}
	})

	t.Run("rejects non-image input", func(t *testing.T) {
		_, err := gen.Generate([]byte("not an image"))
		if !errors.Is(err, picstash.ErrUnsupportedMediaType) {
			t.Errorf("Generate(text) = %v, want ErrUnsupportedMediaType", err)
		}
	})
}
