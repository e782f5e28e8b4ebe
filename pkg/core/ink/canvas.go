package ink

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

// Canvas is a floating point RGB surface that strokes are blended onto.
//
// Stroke coverage is rasterized with rasterx into an alpha mask, then the
// stroke color is combined with the surface using the active compositing
// mode. Lighten adds the stroke and saturates at 255; darken applies a
// difference blend weighted by coverage.
type Canvas struct {
	width, height int
	pix           []float32 // 3 values per pixel, row major

	mask    *image.Alpha
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
	filler  *rasterx.Filler

	lineWidth float64
	value     [3]float32
	mode      render.Compositing
}

// NewCanvas returns a black canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 1), max(height, 1)
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, mask, mask.Bounds())
	scanner.SetClip(mask.Bounds())
	c := &Canvas{
		width:     width,
		height:    height,
		pix:       make([]float32, 3*width*height),
		mask:      mask,
		scanner:   scanner,
		dasher:    rasterx.NewDasher(width, height, scanner),
		filler:    rasterx.NewFiller(width, height, scanner),
		lineWidth: 1,
	}
	c.dasher.SetColor(color.Alpha{A: 0xff})
	c.filler.SetColor(color.Alpha{A: 0xff})
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Fill sets every pixel to col, ignoring alpha.
func (c *Canvas) Fill(col color.Color) {
	r, g, b, _ := col.RGBA()
	fr, fg, fb := float32(r>>8), float32(g>>8), float32(b>>8)
	for i := 0; i < len(c.pix); i += 3 {
		c.pix[i], c.pix[i+1], c.pix[i+2] = fr, fg, fb
	}
}

// Load copies the RGB channels of img into the canvas. img must have the
// canvas dimensions.
func (c *Canvas) Load(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < c.height && y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < c.width && x < b.Dx(); x++ {
			i := 3 * (y*c.width + x)
			c.pix[i] = float32(row[4*x])
			c.pix[i+1] = float32(row[4*x+1])
			c.pix[i+2] = float32(row[4*x+2])
		}
	}
}

// SetLineWidth sets the width of subsequent strokes.
func (c *Canvas) SetLineWidth(w float64) {
	c.lineWidth = w
}

// SetStroke configures the color and blend of subsequent strokes. The
// channel mask of col is scaled by ceil(255*opacity).
func (c *Canvas) SetStroke(col render.Color, opacity float64, mode render.Compositing) {
	v := float32(render.StrokeValue(opacity))
	raw := render.RawColor(col)
	c.value = [3]float32{v * float32(raw.R), v * float32(raw.G), v * float32(raw.B)}
	c.mode = mode
}

// Line strokes a single segment with round caps.
func (c *Canvas) Line(a, b geometry.Point) {
	c.dasher.Clear()
	c.dasher.SetStroke(fixed.Int26_6(c.lineWidth*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	c.dasher.Start(rasterx.ToFixedP(a.X, a.Y))
	c.dasher.Line(rasterx.ToFixedP(b.X, b.Y))
	c.dasher.Stop(false)
	c.dasher.Draw()

	pad := c.lineWidth + 2
	c.blendStroke(c.area(
		math.Min(a.X, b.X)-pad, math.Min(a.Y, b.Y)-pad,
		math.Max(a.X, b.X)+pad, math.Max(a.Y, b.Y)+pad,
	))
}

// Polyline strokes every consecutive pair of points as its own segment, so
// overlapping joints accumulate like separate passes of thread.
func (c *Canvas) Polyline(points []geometry.Point) {
	for i := 0; i+1 < len(points); i++ {
		c.Line(points[i], points[i+1])
	}
}

// Disc paints a filled circle with plain alpha blending.
func (c *Canvas) Disc(center geometry.Point, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	c.filler.Clear()
	rasterx.AddCircle(center.X, center.Y, radius, c.filler)
	c.filler.Draw()

	r, g, b, a := col.RGBA()
	alpha := float32(a) / 0xffff
	src := [3]float32{float32(r >> 8), float32(g >> 8), float32(b >> 8)}
	rect := c.area(center.X-radius-1, center.Y-radius-1, center.X+radius+1, center.Y+radius+1)
	c.eachCovered(rect, func(i int, cov float32) {
		k := cov * alpha
		for ch := range 3 {
			// src is alpha-premultiplied
			c.pix[i+ch] = src[ch]*cov + c.pix[i+ch]*(1-k)
		}
	})
}

// RGBA returns an 8-bit copy of the canvas.
func (c *Canvas) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	c.CopyTo(img)
	return img
}

// CopyTo writes an 8-bit view of the canvas into img, which must have the
// canvas dimensions.
func (c *Canvas) CopyTo(img *image.RGBA) {
	for y := 0; y < c.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < c.width; x++ {
			i := 3 * (y*c.width + x)
			row[4*x] = toByte(c.pix[i])
			row[4*x+1] = toByte(c.pix[i+1])
			row[4*x+2] = toByte(c.pix[i+2])
			row[4*x+3] = 0xff
		}
	}
}

func (c *Canvas) blendStroke(rect image.Rectangle) {
	v := c.value
	if c.mode == render.Lighten {
		c.eachCovered(rect, func(i int, cov float32) {
			for ch := range 3 {
				c.pix[i+ch] = min(255, c.pix[i+ch]+v[ch]*cov)
			}
		})
		return
	}
	c.eachCovered(rect, func(i int, cov float32) {
		for ch := range 3 {
			p := c.pix[i+ch]
			d := p - v[ch]
			if d < 0 {
				d = -d
			}
			c.pix[i+ch] = p*(1-cov) + d*cov
		}
	})
}

// eachCovered calls fn for every pixel of rect with non-zero coverage, then
// clears the mask over rect.
func (c *Canvas) eachCovered(rect image.Rectangle, fn func(i int, cov float32)) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := c.mask.Pix[y*c.mask.Stride:]
		for x := rect.Min.X; x < rect.Max.X; x++ {
			m := row[x]
			if m == 0 {
				continue
			}
			fn(3*(y*c.width+x), float32(m)/255)
			row[x] = 0
		}
	}
}

func (c *Canvas) area(x0, y0, x1, y1 float64) image.Rectangle {
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return r.Intersect(c.mask.Bounds())
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.RoundToEven(float64(v)))
	}
}
