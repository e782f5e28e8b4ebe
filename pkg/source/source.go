// Package source decodes the images a thread is computed from.
//
// Raster formats (PNG, JPEG, GIF, BMP, WebP, TIFF) are decoded with EXIF
// orientation applied. SVG documents are rasterized onto white with their
// longest side at [SVGSide] pixels.
package source

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/threadart/pkg/errors"
)

// SVGSide is the longest side, in pixels, SVG sources are rasterized at.
const SVGSide = 1000

// MaxBytes bounds how much of a source is read.
const MaxBytes = 64 << 20

// Load reads and decodes the image at path.
func Load(path string) (image.Image, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f, filepath.Base(path))
}

// Decode decodes an image. name is only used to recognize SVG documents
// and for error messages; other formats are sniffed from their content.
func Decode(r io.Reader, name string) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "read %s", name)
	}
	if len(data) > MaxBytes {
		return nil, errors.New(errors.ErrCodeInvalidImage, "%s is larger than %d bytes", name, MaxBytes)
	}
	if isSVG(name, data) {
		return decodeSVG(data, name)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", name)
	}
	if img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "%s has no pixels", name)
	}
	return img, nil
}

func isSVG(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

func decodeSVG(data []byte, name string) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "parse svg %s", name)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "svg %s has no viewBox", name)
	}
	scale := SVGSide / max(w, h)
	width, height := max(int(w*scale), 1), max(int(h*scale), 1)
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}
