package source

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/matzehuels/threadart/pkg/errors"
)

func encoded(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeRaster(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"cat.png", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }},
		{"cat.bmp", func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) }},
		{"no-extension", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(bytes.NewReader(encoded(t, tt.encode)), tt.name)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
				t.Errorf("size = %v, want 8x4", b.Size())
			}
		})
	}
}

func TestDecodeSVG(t *testing.T) {
	const doc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100">
  <rect x="0" y="0" width="100" height="100" fill="black"/>
</svg>`

	img, err := Decode(strings.NewReader(doc), "logo.svg")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != SVGSide || b.Dy() != SVGSide/2 {
		t.Fatalf("size = %v, want %dx%d", b.Size(), SVGSide, SVGSide/2)
	}
	if r, _, _, _ := img.At(100, 100).RGBA(); r>>8 > 10 {
		t.Errorf("rect pixel red = %d, want black", r>>8)
	}
	if r, _, _, _ := img.At(900, 100).RGBA(); r>>8 != 255 {
		t.Errorf("background pixel red = %d, want white", r>>8)
	}
}

func TestDecodeSniffsSVG(t *testing.T) {
	const doc = `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`
	if _, err := Decode(strings.NewReader(doc), "upload"); err != nil {
		t.Errorf("Decode: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		file string
	}{
		{"garbage", "definitely not an image", "cat.png"},
		{"svg without viewBox", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, "logo.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.data), tt.file)
			if !errors.Is(err, errors.ErrCodeInvalidImage) {
				t.Errorf("Decode() error = %v, want INVALID_IMAGE", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.png")
	if err := os.WriteFile(path, encoded(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err != nil {
		t.Errorf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Load(\"\") error = %v, want INVALID_PATH", err)
	}
}
