package pegs

import (
	"math"
	"testing"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/errors"
)

func TestRectangleLayout(t *testing.T) {
	l := Compute(geometry.Size{Width: 100, Height: 100}, Rectangle, 20)

	// A side of 100 at spacing 20 is five intervals, which leaves four
	// intermediate pegs per side besides the corners: 4 + 4*4 = 20. Reading
	// the side as four pegs including one corner gives 16, which drops the
	// peg at 80 on every side.
	if got := l.Len(); got != 20 {
		t.Fatalf("Len() = %d, want 20", got)
	}

	want := []geometry.Point{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 40, Y: 0}, {X: 60, Y: 0}, {X: 80, Y: 0},
		{X: 100, Y: 0}, {X: 100, Y: 20}, {X: 100, Y: 40}, {X: 100, Y: 60}, {X: 100, Y: 80},
		{X: 100, Y: 100}, {X: 80, Y: 100}, {X: 60, Y: 100}, {X: 40, Y: 100}, {X: 20, Y: 100},
		{X: 0, Y: 100}, {X: 0, Y: 80}, {X: 0, Y: 60}, {X: 0, Y: 40}, {X: 0, Y: 20},
	}
	for i, p := range l.Points() {
		if math.Abs(p.X-want[i].X) > 1e-9 || math.Abs(p.Y-want[i].Y) > 1e-9 {
			t.Errorf("peg %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestRectangleCornersOnce(t *testing.T) {
	l := Compute(geometry.Size{Width: 300, Height: 170}, Rectangle, 33)
	seen := make(map[geometry.Point]bool)
	for _, p := range l.Points() {
		if seen[p] {
			t.Fatalf("peg %v appears twice", p)
		}
		seen[p] = true
	}
	for _, c := range []geometry.Point{{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 170}, {X: 0, Y: 170}} {
		if !seen[c] {
			t.Errorf("corner %v missing", c)
		}
	}
	// ceil(300/33)=10, ceil(170/33)=6
	if got, want := l.Len(), 2*(10+6); got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestEllipseLayout(t *testing.T) {
	domain := geometry.Size{Width: 1000, Height: 600}
	l := Compute(domain, Ellipse, 20)

	want := int(math.Ceil(math.Pi * 1000 / 20))
	if l.Len() != want {
		t.Fatalf("Len() = %d, want %d", l.Len(), want)
	}
	first := l.Pegs[0]
	if first.X != 1000 || first.Y != 300 || first.Angle != 0 {
		t.Errorf("first peg = %+v, want {1000 300 0}", first)
	}
	for i, p := range l.Pegs {
		// (x-cx)²/rx² + (y-cy)²/ry² == 1
		dx := (p.X - 500) / 500
		dy := (p.Y - 300) / 300
		if math.Abs(dx*dx+dy*dy-1) > 1e-9 {
			t.Errorf("peg %d not on ellipse: %+v", i, p)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, shape := range []Shape{Rectangle, Ellipse} {
		t.Run(shape.String(), func(t *testing.T) {
			raster := geometry.Size{Width: 200, Height: 134}
			a := ForRaster(raster, shape, 12)
			b := ForRaster(raster, shape, 12)
			if a.Len() != b.Len() {
				t.Fatalf("Len differs: %d vs %d", a.Len(), b.Len())
			}
			for i := range a.Pegs {
				if a.Pegs[i] != b.Pegs[i] {
					t.Fatalf("peg %d differs: %+v vs %+v", i, a.Pegs[i], b.Pegs[i])
				}
			}
		})
	}
}

func TestTooCloseSymmetric(t *testing.T) {
	layouts := []Layout{
		Compute(geometry.Size{Width: 1000, Height: 700}, Rectangle, 40),
		Compute(geometry.Size{Width: 1000, Height: 700}, Ellipse, 40),
	}
	for _, l := range layouts {
		t.Run(l.Shape.String(), func(t *testing.T) {
			for i := range l.Pegs {
				if !l.TooClose(i, i) {
					t.Errorf("TooClose(%d, %d) = false, want true", i, i)
				}
				for j := range l.Pegs {
					if l.TooClose(i, j) != l.TooClose(j, i) {
						t.Fatalf("TooClose not symmetric for (%d, %d)", i, j)
					}
				}
			}
		})
	}
}

func TestTooCloseEllipseWraps(t *testing.T) {
	l := Compute(geometry.Size{Width: 1000, Height: 1000}, Ellipse, 100)
	n := l.Len()
	if !l.TooClose(0, n-1) {
		t.Errorf("first and last pegs should be too close across the wrap")
	}
	if l.TooClose(0, n/2) {
		t.Errorf("opposite pegs should not be too close")
	}
}

func TestTooCloseRectangle(t *testing.T) {
	l := Compute(geometry.Size{Width: 100, Height: 100}, Rectangle, 20)
	tests := []struct {
		i, j int
		want bool
	}{
		{0, 3, true},   // same top row
		{0, 19, true},  // same left column
		{1, 14, true},  // vertical line x=20, top to bottom
		{1, 7, false},  // top to right side
		{0, 10, false}, // diagonal
	}
	for _, tt := range tests {
		if got := l.TooClose(tt.i, tt.j); got != tt.want {
			t.Errorf("TooClose(%d, %d) = %v, want %v (%v, %v)", tt.i, tt.j, got, tt.want, l.Pegs[tt.i], l.Pegs[tt.j])
		}
	}
}

func TestReferenceDomain(t *testing.T) {
	tests := []struct {
		raster geometry.Size
		want   geometry.Size
	}{
		{geometry.Size{Width: 200, Height: 100}, geometry.Size{Width: 1000, Height: 500}},
		{geometry.Size{Width: 100, Height: 300}, geometry.Size{Width: 333, Height: 1000}},
		{geometry.Size{Width: 100, Height: 100}, geometry.Size{Width: 1000, Height: 1000}},
	}
	for _, tt := range tests {
		if got := ReferenceDomain(tt.raster); got != tt.want {
			t.Errorf("ReferenceDomain(%v) = %v, want %v", tt.raster, got, tt.want)
		}
	}
}

func TestForRasterRescales(t *testing.T) {
	raster := geometry.Size{Width: 200, Height: 100}
	l := ForRaster(raster, Rectangle, 100)
	b := l.Bounds()
	if b != raster {
		t.Errorf("Bounds() = %v, want %v", b, raster)
	}
	// ceil(1000/100)=10, ceil(500/100)=5
	if l.Len() != 30 {
		t.Errorf("Len() = %d, want 30", l.Len())
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"rectangle", Rectangle, false},
		{"Ellipse", Ellipse, false},
		{"circle", Ellipse, false},
		{"0", Rectangle, false},
		{"1", Ellipse, false},
		{"triangle", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShape(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShape(%q) error = %v", tt.in, err)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidShape) {
					t.Errorf("error code = %v, want INVALID_SHAPE", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseShape(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
