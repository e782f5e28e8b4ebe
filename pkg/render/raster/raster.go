// Package raster renders a thread to a bitmap and encodes it as PNG.
//
// Two backends exist, selected by [render.Capability]:
//
//   - Advanced composites with the same additive and difference blends the
//     ink simulator uses.
//   - Basic draws with fogleman/gg using plain alpha blending; dark thread is
//     approximated by painting the inverted channel mask.
package raster

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/render"
)

// Renderer draws into an in-memory bitmap. It implements render.Renderer.
type Renderer struct {
	width, height int
	capability    render.Capability

	canvas *ink.Canvas // advanced
	gc     *gg.Context // basic

	blur   float64
	result image.Image
}

var _ render.Renderer = (*Renderer)(nil)

// New returns a renderer producing width x height images.
func New(width, height int, capability render.Capability) *Renderer {
	r := &Renderer{
		width:      max(width, 1),
		height:     max(height, 1),
		capability: capability,
	}
	r.Resize()
	return r
}

// Resize allocates the drawing surface if needed.
func (r *Renderer) Resize() {
	if r.capability == render.Basic {
		if r.gc == nil {
			r.gc = gg.NewContext(r.width, r.height)
		}
		return
	}
	if r.canvas == nil {
		r.canvas = ink.NewCanvas(r.width, r.height)
	}
}

// Size returns the image dimensions.
func (r *Renderer) Size() geometry.Size {
	return geometry.Size{Width: float64(r.width), Height: float64(r.height)}
}

// Initialize clears the surface to the background color.
func (r *Renderer) Initialize(info render.Info) {
	bg, err := ParseColor(info.Background)
	if err != nil {
		bg, _ = ParseColor("white")
	}
	r.blur = info.Blur
	r.result = nil

	if r.capability == render.Basic {
		r.gc.SetColor(bg)
		r.gc.Clear()
		return
	}
	r.canvas.Fill(bg)
}

// DrawConnectedPoints strokes each segment of the polyline separately.
func (r *Renderer) DrawConnectedPoints(points []geometry.Point, c render.Color, opacity float64, mode render.Compositing, thickness float64) {
	if len(points) < 2 {
		return
	}
	r.result = nil

	if r.capability == render.Basic {
		raw := render.RawColor(c)
		if mode == render.Darken {
			raw = render.RGB{R: 1 - raw.R, G: 1 - raw.G, B: 1 - raw.B}
		}
		r.gc.SetRGBA(raw.R, raw.G, raw.B, opacity)
		r.gc.SetLineWidth(thickness)
		r.gc.SetLineCapRound()
		for _, s := range render.Segments(points) {
			r.gc.DrawLine(s[0].X, s[0].Y, s[1].X, s[1].Y)
			r.gc.Stroke()
		}
		return
	}

	r.canvas.SetLineWidth(thickness)
	r.canvas.SetStroke(c, opacity, mode)
	r.canvas.Polyline(points)
}

// DrawPoints fills a disc per point.
func (r *Renderer) DrawPoints(points []geometry.Point, color string, diameter float64) {
	col, err := ParseColor(color)
	if err != nil || len(points) == 0 {
		return
	}
	r.result = nil

	if r.capability == render.Basic {
		r.gc.SetColor(col)
		for _, p := range points {
			r.gc.DrawCircle(p.X, p.Y, 0.5*diameter)
			r.gc.Fill()
		}
		return
	}
	for _, p := range points {
		r.canvas.Disc(p, 0.5*diameter, col)
	}
}

// Finalize produces the output image, applying the blur if any.
func (r *Renderer) Finalize() {
	var img image.Image
	if r.capability == render.Basic {
		img = r.gc.Image()
	} else {
		img = r.canvas.RGBA()
	}
	if r.blur > 0 {
		img = imaging.Blur(img, r.blur)
	}
	r.result = img
}

// Image returns the last finalized image, finalizing first if drawing
// happened since.
func (r *Renderer) Image() image.Image {
	if r.result == nil {
		r.Finalize()
	}
	return r.result
}

// EncodePNG writes the image as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return imaging.Encode(w, r.Image(), imaging.PNG)
}
