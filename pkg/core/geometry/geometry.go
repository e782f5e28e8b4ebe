// Package geometry holds the small set of 2D types shared by the peg layout,
// the ink raster and the renderers.
package geometry

import "math"

// Point is a position in raster or device space.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Lerp returns the point at ratio r on the segment from a to b.
func Lerp(a, b Point, r float64) Point {
	return Point{
		X: mix(a.X, b.X, r),
		Y: mix(a.Y, b.Y, r),
	}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// BestFit scales size so that its longest side equals maxSide, keeping the
// aspect ratio. Both sides are rounded up to whole units.
func BestFit(size Size, maxSide float64) Size {
	longest := max(size.Width, size.Height)
	if longest <= 0 {
		return Size{}
	}
	f := maxSide / longest
	return Size{
		Width:  math.Ceil(size.Width * f),
		Height: math.Ceil(size.Height * f),
	}
}

func mix(a, b, x float64) float64 {
	return a*(1-x) + b*x
}
