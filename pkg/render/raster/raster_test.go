package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

var horizontal = []geometry.Point{{X: -10, Y: 20}, {X: 50, Y: 20}}

func rgbAt(r *Renderer, x, y int) (uint8, uint8, uint8) {
	cr, cg, cb, _ := r.Image().At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

func TestDarkThreadOnWhite(t *testing.T) {
	for _, capability := range []render.Capability{render.Advanced, render.Basic} {
		t.Run(capability.String(), func(t *testing.T) {
			r := New(40, 40, capability)
			r.Initialize(render.Info{Background: "white"})
			r.DrawConnectedPoints(horizontal, render.Monochrome, 1, render.Darken, 6)
			r.Finalize()

			if cr, cg, cb := rgbAt(r, 20, 20); cr > 5 || cg > 5 || cb > 5 {
				t.Errorf("thread pixel = (%d, %d, %d), want black", cr, cg, cb)
			}
			if cr, _, _ := rgbAt(r, 20, 2); cr != 255 {
				t.Errorf("background pixel red = %d, want 255", cr)
			}
		})
	}
}

func TestLightThreadOnBlack(t *testing.T) {
	r := New(40, 40, render.Advanced)
	r.Initialize(render.Info{Background: "black"})
	r.DrawConnectedPoints(horizontal, render.Red, 0.5, render.Lighten, 6)
	r.DrawConnectedPoints(horizontal, render.Red, 0.5, render.Lighten, 6)
	r.Finalize()

	cr, cg, cb := rgbAt(r, 20, 20)
	if cr != 255 || cg != 0 || cb != 0 {
		t.Errorf("thread pixel = (%d, %d, %d), want saturated red", cr, cg, cb)
	}
}

func TestDrawPoints(t *testing.T) {
	for _, capability := range []render.Capability{render.Advanced, render.Basic} {
		t.Run(capability.String(), func(t *testing.T) {
			r := New(40, 40, capability)
			r.Initialize(render.Info{Background: "black"})
			r.DrawPoints([]geometry.Point{{X: 20, Y: 20}}, "red", 10)

			if cr, cg, _ := rgbAt(r, 20, 20); cr < 250 || cg != 0 {
				t.Errorf("peg pixel = (%d, %d), want red", cr, cg)
			}
			if cr, _, _ := rgbAt(r, 2, 2); cr != 0 {
				t.Errorf("outside pixel red = %d, want 0", cr)
			}
		})
	}
}

func TestBlur(t *testing.T) {
	r := New(40, 40, render.Advanced)
	r.Initialize(render.Info{Background: "white", Blur: 3})
	r.DrawConnectedPoints(horizontal, render.Monochrome, 1, render.Darken, 2)
	r.Finalize()

	// the sharp line would leave row 16 untouched
	if cr, _, _ := rgbAt(r, 20, 16); cr == 255 {
		t.Error("blur did not spread the thread")
	}
}

func TestEncodePNG(t *testing.T) {
	r := New(30, 20, render.Advanced)
	r.Initialize(render.Info{Background: "#336699"})

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("size = %v, want 30x20", b.Size())
	}
	want := color.RGBA{0x33, 0x66, 0x99, 0xff}
	if got := color.RGBAModel.Convert(img.At(5, 5)); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"white", "#ffffff", false},
		{" Red ", "#ff0000", false},
		{"#abc", "#aabbcc", false},
		{"#123456", "#123456", false},
		{"chartreuse-ish", "", true},
		{"#12", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if err == nil && got.Hex() != tt.want {
				t.Errorf("ParseColor(%q) = %s, want %s", tt.in, got.Hex(), tt.want)
			}
		})
	}
}
