package ink

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

// PixelsPerQuality is the longest side of the raster at quality 1.
const PixelsPerQuality = 100

// Sampler reduces one RGBA pixel to the scalar the scorer works with.
type Sampler func(pix []uint8) float64

// Channel returns a sampler reading a single channel (0 red, 1 green, 2 blue).
func Channel(ch int) Sampler {
	return func(pix []uint8) float64 { return float64(pix[ch]) }
}

// Raster is the ink simulator for one image session.
type Raster struct {
	size     geometry.Size
	baseline *image.RGBA
	canvas   *Canvas

	snapshot *image.RGBA
	dirty    bool

	lineWidth       float64
	opacityInternal float64
	color           render.Color
}

// Prepare flattens src onto white and resamples it to the working resolution
// of the given quality.
func Prepare(src image.Image, quality int) *image.RGBA {
	b := src.Bounds()
	size := geometry.BestFit(geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, float64(PixelsPerQuality*max(quality, 1)))
	w, h := max(int(size.Width), 1), max(int(size.Height), 1)

	resized := imaging.Resize(src, w, h, imaging.Linear)
	flat := imaging.Overlay(imaging.New(w, h, color.White), resized, image.Pt(0, 0), 1.0)
	return &image.RGBA{Pix: flat.Pix, Stride: flat.Stride, Rect: flat.Rect}
}

// NewRaster builds the simulator from a source image. adjust remaps the
// prepared image in place into the baseline; it may be nil.
func NewRaster(src image.Image, quality int, adjust func(*image.RGBA)) *Raster {
	base := Prepare(src, quality)
	if adjust != nil {
		adjust(base)
	}
	return FromBaseline(base)
}

// FromBaseline builds the simulator around an already adjusted baseline.
func FromBaseline(base *image.RGBA) *Raster {
	b := base.Bounds()
	r := &Raster{
		size:      geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())},
		baseline:  base,
		canvas:    NewCanvas(b.Dx(), b.Dy()),
		lineWidth: 1,
	}
	r.Reset()
	return r
}

// Size returns the raster dimensions in pixels.
func (r *Raster) Size() geometry.Size { return r.size }

// Reset restores the device surface to the baseline.
func (r *Raster) Reset() {
	r.canvas.Load(r.baseline)
	r.canvas.SetLineWidth(r.lineWidth)
	r.dirty = true
}

// SetLineProperties derives the simulated stroke from the thread thickness
// (in output units at quality 1), the opacity of the final render and the
// quality factor. Strokes never get thinner than one pixel: below that the
// opacity is reduced instead.
func (r *Raster) SetLineProperties(thickness, opacity float64, quality int) {
	theoretical := thickness * float64(quality)
	if theoretical <= 1 {
		r.lineWidth = 1
		r.opacityInternal = 0.5 * opacity * theoretical
	} else {
		r.lineWidth = theoretical
		r.opacityInternal = 0.5 * opacity
	}
	r.canvas.SetLineWidth(r.lineWidth)
	r.canvas.SetStroke(r.color, r.opacityInternal, render.Lighten)
}

// LineWidth returns the simulated stroke width in pixels.
func (r *Raster) LineWidth() float64 { return r.lineWidth }

// OpacityInternal returns the opacity strokes are committed with.
func (r *Raster) OpacityInternal() float64 { return r.opacityInternal }

// SetColor selects the channel subsequent commits add ink to.
func (r *Raster) SetColor(c render.Color) {
	r.color = c
	r.canvas.SetStroke(c, r.opacityInternal, render.Lighten)
}

// Commit strokes the segment a-b and invalidates the snapshot.
func (r *Raster) Commit(a, b geometry.Point) {
	r.canvas.Line(a, b)
	r.dirty = true
}

// Snapshot returns the 8-bit view of the surface, rebuilding it only when a
// commit or reset happened since the last call.
func (r *Raster) Snapshot() *image.RGBA {
	if r.snapshot == nil {
		r.snapshot = image.NewRGBA(image.Rect(0, 0, r.canvas.Width(), r.canvas.Height()))
		r.dirty = true
	}
	if r.dirty {
		r.canvas.CopyTo(r.snapshot)
		r.dirty = false
	}
	return r.snapshot
}

// Sample returns the bilinearly interpolated value at p, in [0,255].
func (r *Raster) Sample(p geometry.Point, s Sampler) float64 {
	img := r.Snapshot()
	w, h := r.canvas.Width(), r.canvas.Height()

	minX := clamp(int(math.Floor(p.X)), 0, w-1)
	maxX := clamp(int(math.Ceil(p.X)), 0, w-1)
	minY := clamp(int(math.Floor(p.Y)), 0, h-1)
	maxY := clamp(int(math.Ceil(p.Y)), 0, h-1)

	at := func(x, y int) float64 {
		i := y*img.Stride + 4*x
		return s(img.Pix[i : i+4])
	}

	fx := math.Mod(p.X, 1)
	fy := math.Mod(p.Y, 1)
	top := mix(at(minX, minY), at(maxX, minY), fx)
	bottom := mix(at(minX, maxY), at(maxX, maxY), fx)
	return mix(top, bottom, fy)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func mix(a, b, x float64) float64 {
	return a*(1-x) + b*x
}
