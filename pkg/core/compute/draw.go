package compute

import (
	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

// DefaultPegColor is the color of peg markers.
const DefaultPegColor = "red"

// Indicators is a snapshot of the live quality figures.
type Indicators struct {
	PegCount        int `json:"peg_count"`
	SegmentCount    int `json:"segment_count"`
	ErrorAverage    int `json:"error_average"`
	ErrorMeanSquare int `json:"error_mean_square"`
	ErrorVariance   int `json:"error_variance"`
}

// Indicators returns the current indicator values.
func (c *Computer) Indicators() Indicators {
	return Indicators{
		PegCount:        c.layout.Len(),
		SegmentCount:    c.SegmentCount(),
		ErrorAverage:    c.errs.Average,
		ErrorMeanSquare: c.errs.MeanSquare,
		ErrorVariance:   c.errs.Variance,
	}
}

// Compositing returns the blend the final render uses: dark thread darkens a
// light background, light thread lightens a dark one.
func (c *Computer) Compositing() render.Compositing {
	if c.opts.Invert {
		return render.Lighten
	}
	return render.Darken
}

// Background returns the background color of the final render.
func (c *Computer) Background() string {
	if c.opts.Invert {
		return "black"
	}
	return "white"
}

// DrawThread emits the thread to r, skipping the first skip segments. With
// skip 0 the whole thread is drawn.
func (c *Computer) DrawThread(r render.Renderer, skip int) {
	t := c.transformation(r)
	width := t.Scaling * float64(c.opts.Quality) * c.opts.Thickness
	mode := c.Compositing()

	c.strategy.Iterate(skip, func(seq []int, color render.Color) {
		points := make([]geometry.Point, len(seq))
		for i, p := range seq {
			points[i] = t.Transform(c.peg(p))
		}
		r.DrawConnectedPoints(points, color, c.opts.Opacity, mode, width)
	})
}

// DrawPegs emits one marker per peg.
func (c *Computer) DrawPegs(r render.Renderer, color string) {
	t := c.transformation(r)
	diameter := 0.5 * t.Scaling * float64(c.opts.Quality)
	r.DrawPoints(t.TransformAll(c.layout.Points()), color, diameter)
}

func (c *Computer) transformation(r render.Renderer) geometry.Transformation {
	return geometry.NewTransformation(r.Size(), c.raster.Size())
}
