// Package svg renders a thread as a standalone SVG document.
//
// The document uses a fixed 1000x1000 viewBox. Each draw call becomes one
// group of <line> elements sharing a stroke; with advanced compositing the
// lines blend with mix-blend-mode: difference, and lighten renders invert
// the whole picture onto black.
//
//	r := svg.New(render.Advanced)
//	plotter := compute.NewPlotter(r, computer, compute.PlotOptions{})
//	plotter.Plot()
//	os.WriteFile("thread.svg", r.Bytes(), 0o644)
package svg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

const (
	// Width and Height of the viewBox.
	Width  = 1000
	Height = 1000

	margin       = 10
	blurFilterID = "gaussianBlur"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithBackgroundFill overrides the fill of the background rectangle.
// Advanced lighten renders rely on the invert filter, so the default is
// always white.
func WithBackgroundFill(fill string) Option {
	return func(r *Renderer) { r.fill = fill }
}

// Renderer accumulates an SVG document. It implements render.Renderer.
type Renderer struct {
	capability render.Capability
	fill       string

	w       writer
	hasBlur bool
}

// New returns an SVG renderer for the given compositing capability.
func New(capability render.Capability, opts ...Option) *Renderer {
	r := &Renderer{capability: capability, fill: "white"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ render.Renderer = (*Renderer)(nil)

// Resize is a no-op: the viewBox is fixed.
func (r *Renderer) Resize() {}

// Size returns the viewBox dimensions.
func (r *Renderer) Size() geometry.Size {
	return geometry.Size{Width: Width, Height: Height}
}

// Initialize starts a new document.
func (r *Renderer) Initialize(info render.Info) {
	r.w = writer{}
	r.hasBlur = info.Blur > 0

	r.w.line(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>`)
	r.w.start(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 %d %d">`, Width, Height)

	if r.hasBlur {
		r.w.start(`<defs>`)
		r.w.start(`<filter id="%s" x="0" y="0">`, blurFilterID)
		r.w.line(`<feGaussianBlur in="SourceGraphic" stdDeviation="%s"/>`, num(info.Blur))
		r.w.end(`</filter>`)
		r.w.end(`</defs>`)
		r.w.start(`<g filter="url(#%s)">`, blurFilterID)
	}

	r.w.line(`<rect fill="%s" stroke="none" x="%d" y="%d" width="%d" height="%d"/>`,
		r.fill, -margin, -margin, Width+2*margin, Height+2*margin)
}

// Finalize closes the document.
func (r *Renderer) Finalize() {
	if r.hasBlur {
		r.w.end(`</g>`)
	}
	r.w.end(`</svg>`)
}

// DrawConnectedPoints writes one group holding a <line> per segment.
func (r *Renderer) DrawConnectedPoints(points []geometry.Point, c render.Color, opacity float64, mode render.Compositing, thickness float64) {
	segments := render.Segments(points)
	if len(segments) == 0 {
		return
	}

	raw := render.RawColor(c)
	var stroke string
	if r.capability == render.Advanced {
		r.w.start(`<defs>`)
		r.w.start(`<style type="text/css">`)
		r.w.start(`<![CDATA[`)
		r.w.line(`line { mix-blend-mode: difference; }`)
		if mode == render.Lighten {
			r.w.line(`svg { filter: invert(1); background: black; }`)
		}
		r.w.end(`]]>`)
		r.w.end(`</style>`)
		r.w.end(`</defs>`)

		v := float64(render.StrokeValue(opacity))
		stroke = fmt.Sprintf("rgb(%s, %s, %s)", num(raw.R*v), num(raw.G*v), num(raw.B*v))
	} else {
		// Plain alpha blending cannot subtract light: paint black thread
		// and let the opacity do the work.
		stroke = fmt.Sprintf("rgba(0, 0, 0, %s)", num(opacity))
	}

	r.w.start(`<g stroke="%s" stroke-width="%s" stroke-linecap="round" fill="none">`, stroke, num(thickness))
	for _, s := range segments {
		r.w.line(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`, s[0].X, s[0].Y, s[1].X, s[1].Y)
	}
	r.w.end(`</g>`)
}

// DrawPoints writes one group holding a <circle> per point.
func (r *Renderer) DrawPoints(points []geometry.Point, color string, diameter float64) {
	if len(points) == 0 {
		return
	}
	r.w.start(`<g fill="%s" stroke="none">`, color)
	for _, p := range points {
		r.w.line(`<circle cx="%.1f" cy="%.1f" r="%s"/>`, p.X, p.Y, num(0.5*diameter))
	}
	r.w.end(`</g>`)
}

// Bytes returns the document written so far.
func (r *Renderer) Bytes() []byte {
	return bytes.Clone(r.w.buf.Bytes())
}

// String returns the document written so far.
func (r *Renderer) String() string {
	return r.w.buf.String()
}

// writer emits tab-indented lines.
type writer struct {
	buf    bytes.Buffer
	indent int
}

func (w *writer) line(format string, args ...any) {
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	w.buf.WriteString(strings.Repeat("\t", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *writer) start(format string, args ...any) {
	w.line(format, args...)
	w.indent++
}

func (w *writer) end(format string, args ...any) {
	w.indent--
	w.line(format, args...)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
