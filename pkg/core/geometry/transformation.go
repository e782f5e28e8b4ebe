package geometry

// Transformation maps points from an element's space into a frame, using a
// uniform scale and centering the element on both axes.
type Transformation struct {
	Scaling float64
	Origin  Point
}

// NewTransformation fits element inside frame.
func NewTransformation(frame, element Size) Transformation {
	scaling := min(frame.Width/element.Width, frame.Height/element.Height)
	return Transformation{
		Scaling: scaling,
		Origin: Point{
			X: 0.5 * (frame.Width - scaling*element.Width),
			Y: 0.5 * (frame.Height - scaling*element.Height),
		},
	}
}

// Transform maps p from element space to frame space.
func (t Transformation) Transform(p Point) Point {
	return Point{
		X: t.Origin.X + p.X*t.Scaling,
		Y: t.Origin.Y + p.Y*t.Scaling,
	}
}

// TransformAll maps every point of pts.
func (t Transformation) TransformAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Transform(p)
	}
	return out
}
