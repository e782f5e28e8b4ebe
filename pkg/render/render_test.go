package render

import (
	"testing"

	"github.com/matzehuels/threadart/pkg/core/geometry"
)

func TestRawColor(t *testing.T) {
	tests := []struct {
		c    Color
		want RGB
	}{
		{Monochrome, RGB{1, 1, 1}},
		{Red, RGB{R: 1}},
		{Green, RGB{G: 1}},
		{Blue, RGB{B: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.c.String(), func(t *testing.T) {
			if got := RawColor(tt.c); got != tt.want {
				t.Errorf("RawColor(%v) = %+v, want %+v", tt.c, got, tt.want)
			}
		})
	}
}

func TestParseColorRoundTrip(t *testing.T) {
	for _, c := range []Color{Monochrome, Red, Green, Blue} {
		got, err := ParseColor(c.String())
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseColor(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if _, err := ParseColor("purple"); err == nil {
		t.Error("ParseColor(purple) should fail")
	}
}

func TestStrokeValue(t *testing.T) {
	tests := []struct {
		opacity float64
		want    int
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{16.0 / 256 / 2, 8},
		{1.0 / 512, 1},
	}
	for _, tt := range tests {
		if got := StrokeValue(tt.opacity); got != tt.want {
			t.Errorf("StrokeValue(%v) = %d, want %d", tt.opacity, got, tt.want)
		}
	}
}

func TestSegments(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	segs := Segments(pts)
	if len(segs) != 2 {
		t.Fatalf("len = %d, want 2", len(segs))
	}
	if segs[1][0] != pts[1] || segs[1][1] != pts[2] {
		t.Errorf("segs[1] = %v", segs[1])
	}
	if Segments(pts[:1]) != nil {
		t.Error("single point should yield no segments")
	}
}

func TestParseCapability(t *testing.T) {
	for in, want := range map[string]Capability{"": Advanced, "advanced": Advanced, "basic": Basic} {
		got, err := ParseCapability(in)
		if err != nil || got != want {
			t.Errorf("ParseCapability(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCapability("fancy"); err == nil {
		t.Error("expected error")
	}
}
