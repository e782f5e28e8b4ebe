// Package pegs computes the fixed anchor points a thread is strung between.
//
// A [Layout] is computed once per session in a reference domain whose longest
// side is [ReferenceSide] units, then rescaled to the ink raster so that the
// arrangement does not depend on the quality setting.
//
// Two frame shapes are supported:
//
//   - [Rectangle]: pegs evenly spread along the four sides, clockwise from the
//     top-left corner. Two pegs on the same row or column are too close.
//   - [Ellipse]: pegs at evenly spaced angles on the inscribed ellipse. Two pegs
//     within π/8 of each other are too close.
package pegs

import (
	"math"
	"strings"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/errors"
)

// ReferenceSide is the longest side of the domain pegs are laid out in.
const ReferenceSide = 1000

// MinAngle is the smallest angular distance allowed between two ellipse pegs.
const MinAngle = math.Pi / 8

// Shape selects the frame the pegs are arranged on.
type Shape int

const (
	Rectangle Shape = iota
	Ellipse
)

// String returns the lower-case name of the shape.
func (s Shape) String() string {
	switch s {
	case Rectangle:
		return "rectangle"
	case Ellipse:
		return "ellipse"
	default:
		return "unknown"
	}
}

// ParseShape converts a shape name into a Shape. The numeric forms "0" and "1"
// are accepted as well.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangle", "rect", "0":
		return Rectangle, nil
	case "ellipse", "circle", "1":
		return Ellipse, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidShape, "unknown shape %q (want rectangle or ellipse)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Peg is an anchor point. Angle is only meaningful for ellipse layouts.
type Peg struct {
	X, Y  float64
	Angle float64
}

// Point returns the position of the peg.
func (p Peg) Point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

// Layout is an ordered set of pegs and the exclusion rule that goes with it.
// Pegs are identified by their index.
type Layout struct {
	Shape Shape
	Pegs  []Peg
}

// Len returns the number of pegs.
func (l Layout) Len() int { return len(l.Pegs) }

// Points returns the positions of all pegs, in order.
func (l Layout) Points() []geometry.Point {
	pts := make([]geometry.Point, len(l.Pegs))
	for i, p := range l.Pegs {
		pts[i] = p.Point()
	}
	return pts
}

// TooClose reports whether a segment between pegs i and j would be
// degenerate. It is symmetric in i and j.
func (l Layout) TooClose(i, j int) bool {
	a, b := l.Pegs[i], l.Pegs[j]
	if l.Shape == Ellipse {
		d := math.Abs(a.Angle - b.Angle)
		return min(d, 2*math.Pi-d) <= MinAngle
	}
	return a.X == b.X || a.Y == b.Y
}

// Rescale maps a layout computed in the from domain onto the to domain.
// Both axes are scaled independently.
func (l Layout) Rescale(from, to geometry.Size) Layout {
	out := Layout{Shape: l.Shape, Pegs: make([]Peg, len(l.Pegs))}
	for i, p := range l.Pegs {
		out.Pegs[i] = Peg{
			X:     p.X * to.Width / from.Width,
			Y:     p.Y * to.Height / from.Height,
			Angle: p.Angle,
		}
	}
	return out
}

// Bounds returns the largest X and Y coordinates of the layout.
func (l Layout) Bounds() geometry.Size {
	var s geometry.Size
	for _, p := range l.Pegs {
		s.Width = max(s.Width, p.X)
		s.Height = max(s.Height, p.Y)
	}
	return s
}

// Compute lays out pegs on the given domain. Spacing must be positive.
func Compute(domain geometry.Size, shape Shape, spacing float64) Layout {
	if shape == Ellipse {
		return Layout{Shape: Ellipse, Pegs: ellipse(domain, spacing)}
	}
	return Layout{Shape: Rectangle, Pegs: rectangle(domain, spacing)}
}

// ReferenceDomain returns the domain pegs are computed in for a raster of the
// given size: the longest side is ReferenceSide, the other follows the aspect
// ratio, rounded.
func ReferenceDomain(raster geometry.Size) geometry.Size {
	ratio := raster.Width / raster.Height
	if ratio > 1 {
		return geometry.Size{Width: ReferenceSide, Height: math.Round(ReferenceSide / ratio)}
	}
	return geometry.Size{Width: math.Round(ReferenceSide * ratio), Height: ReferenceSide}
}

// ForRaster computes the layout in the reference domain and rescales it to
// the raster.
func ForRaster(raster geometry.Size, shape Shape, spacing float64) Layout {
	domain := ReferenceDomain(raster)
	return Compute(domain, shape, spacing).Rescale(domain, raster)
}

func rectangle(domain geometry.Size, spacing float64) []Peg {
	maxX, maxY := domain.Width, domain.Height
	nw := int(math.Ceil(maxX / spacing))
	nh := int(math.Ceil(maxY / spacing))

	pegs := make([]Peg, 0, 2*(nw+nh))
	pegs = append(pegs, Peg{X: 0, Y: 0})
	for i := 1; i < nw; i++ {
		pegs = append(pegs, Peg{X: maxX * float64(i) / float64(nw), Y: 0})
	}
	pegs = append(pegs, Peg{X: maxX, Y: 0})
	for i := 1; i < nh; i++ {
		pegs = append(pegs, Peg{X: maxX, Y: maxY * float64(i) / float64(nh)})
	}
	pegs = append(pegs, Peg{X: maxX, Y: maxY})
	for i := nw - 1; i >= 1; i-- {
		pegs = append(pegs, Peg{X: maxX * float64(i) / float64(nw), Y: maxY})
	}
	pegs = append(pegs, Peg{X: 0, Y: maxY})
	for i := nh - 1; i >= 1; i-- {
		pegs = append(pegs, Peg{X: 0, Y: maxY * float64(i) / float64(nh)})
	}
	return pegs
}

func ellipse(domain geometry.Size, spacing float64) []Peg {
	n := int(math.Ceil(math.Pi * max(domain.Width, domain.Height) / spacing))
	step := 2 * math.Pi / float64(n)
	pegs := make([]Peg, n)
	for i := range pegs {
		a := float64(i) * step
		pegs[i] = Peg{
			X:     0.5 * domain.Width * (1 + math.Cos(a)),
			Y:     0.5 * domain.Height * (1 + math.Sin(a)),
			Angle: a,
		}
	}
	return pegs
}
