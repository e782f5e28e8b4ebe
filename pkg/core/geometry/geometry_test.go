package geometry

import (
	"math"
	"testing"
)

func TestBestFit(t *testing.T) {
	tests := []struct {
		name    string
		size    Size
		maxSide float64
		want    Size
	}{
		{
			name:    "landscape",
			size:    Size{Width: 400, Height: 300},
			maxSide: 100,
			want:    Size{Width: 100, Height: 75},
		},
		{
			name:    "portrait rounds up",
			size:    Size{Width: 333, Height: 1000},
			maxSide: 200,
			want:    Size{Width: 67, Height: 200},
		},
		{
			name:    "upscale",
			size:    Size{Width: 10, Height: 10},
			maxSide: 300,
			want:    Size{Width: 300, Height: 300},
		},
		{
			name:    "empty",
			size:    Size{},
			maxSide: 100,
			want:    Size{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestFit(tt.size, tt.maxSide); got != tt.want {
				t.Errorf("BestFit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformationCentersElement(t *testing.T) {
	tr := NewTransformation(Size{Width: 1000, Height: 500}, Size{Width: 100, Height: 100})

	if tr.Scaling != 5 {
		t.Fatalf("Scaling = %v, want 5", tr.Scaling)
	}
	if tr.Origin != (Point{X: 250, Y: 0}) {
		t.Errorf("Origin = %v, want {250 0}", tr.Origin)
	}

	got := tr.Transform(Point{X: 100, Y: 100})
	if got != (Point{X: 750, Y: 500}) {
		t.Errorf("Transform(100,100) = %v, want {750 500}", got)
	}
}

func TestTransformAll(t *testing.T) {
	tr := NewTransformation(Size{Width: 200, Height: 200}, Size{Width: 100, Height: 100})
	got := tr.TransformAll([]Point{{X: 0, Y: 0}, {X: 50, Y: 25}})
	want := []Point{{X: 0, Y: 0}, {X: 100, Y: 50}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TransformAll()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLerpAndDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}

	if d := Distance(a, b); d != 5 {
		t.Errorf("Distance() = %v, want 5", d)
	}
	mid := Lerp(a, b, 0.5)
	if math.Abs(mid.X-1.5) > 1e-12 || math.Abs(mid.Y-2) > 1e-12 {
		t.Errorf("Lerp(0.5) = %v, want {1.5 2}", mid)
	}
}
