package pipeline

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/threadart/pkg/config"
	"github.com/matzehuels/threadart/pkg/core/compute"
	threadio "github.com/matzehuels/threadart/pkg/io"
	"github.com/matzehuels/threadart/pkg/render/raster"
	"github.com/matzehuels/threadart/pkg/render/svg"
)

// Render generates output artifacts in the requested formats.
func Render(c *compute.Computer, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = RenderSVG(c, opts.Display)
		case FormatPNG:
			data, err = RenderPNG(c, opts.Display, opts.PNGSize)
		case FormatJSON:
			var buf bytes.Buffer
			err = threadio.WriteJSON(threadio.FromComputer(c), &buf)
			data = buf.Bytes()
		case FormatTXT:
			data = []byte(c.Instructions())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderSVG plots the thread into an SVG document.
func RenderSVG(c *compute.Computer, d config.Display) []byte {
	r := svg.New(d.Capability)
	compute.NewPlotter(r, c, d.PlotOptions()).Redraw()
	return r.Bytes()
}

// RenderPNG plots the thread into a PNG whose longest side is size pixels.
func RenderPNG(c *compute.Computer, d config.Display, size int) ([]byte, error) {
	w, h := PNGDimensions(c, size)
	r := raster.New(w, h, d.Capability)
	compute.NewPlotter(r, c, d.PlotOptions()).Redraw()

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGDimensions keeps the raster aspect ratio with the longest side at size.
func PNGDimensions(c *compute.Computer, size int) (int, int) {
	rs := c.RasterSize()
	longest := max(rs.Width, rs.Height)
	w := int(math.Round(float64(size) * rs.Width / longest))
	h := int(math.Round(float64(size) * rs.Height / longest))
	return max(w, 1), max(h, 1)
}
