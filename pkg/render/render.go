package render

import (
	"fmt"

	"github.com/matzehuels/threadart/pkg/core/geometry"
)

// Color is a thread channel.
type Color int

const (
	Monochrome Color = iota
	Red
	Green
	Blue
)

// String returns the lower-case channel name.
func (c Color) String() string {
	switch c {
	case Monochrome:
		return "monochrome"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// ParseColor is the inverse of Color.String.
func ParseColor(s string) (Color, error) {
	switch s {
	case "monochrome":
		return Monochrome, nil
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	default:
		return 0, fmt.Errorf("unknown color %q", s)
	}
}

// RGB is a per-channel weight in [0,1].
type RGB struct {
	R, G, B float64
}

// RawColor returns the channel mask of c. Monochrome thread affects all three
// channels.
func RawColor(c Color) RGB {
	switch c {
	case Red:
		return RGB{R: 1}
	case Green:
		return RGB{G: 1}
	case Blue:
		return RGB{B: 1}
	default:
		return RGB{R: 1, G: 1, B: 1}
	}
}

// Compositing selects how thread ink combines with what is already drawn.
type Compositing int

const (
	Darken Compositing = iota
	Lighten
)

func (m Compositing) String() string {
	if m == Lighten {
		return "lighten"
	}
	return "darken"
}

// Capability describes which blend modes a backend can honour.
type Capability int

const (
	// Advanced backends implement additive (lighten) and difference (darken)
	// blending.
	Advanced Capability = iota
	// Basic backends only alpha-blend, approximating darken by painting the
	// inverted channel mask.
	Basic
)

func (c Capability) String() string {
	if c == Basic {
		return "basic"
	}
	return "advanced"
}

// ParseCapability parses "advanced" or "basic".
func ParseCapability(s string) (Capability, error) {
	switch s {
	case "", "advanced":
		return Advanced, nil
	case "basic":
		return Basic, nil
	default:
		return 0, fmt.Errorf("unknown compositing capability %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Capability) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Capability) UnmarshalText(b []byte) error {
	v, err := ParseCapability(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Info configures a redraw pass.
type Info struct {
	Background string  // CSS-like color string
	Blur       float64 // blur radius in device units, 0 disables blur
}

// Renderer is implemented by every output backend.
type Renderer interface {
	// Resize adjusts the output to its current dimensions.
	Resize()
	// Initialize starts a redraw pass by clearing to the background.
	Initialize(info Info)
	// Finalize ends a redraw pass.
	Finalize()
	// DrawConnectedPoints strokes the polyline through points, one segment
	// at a time, with the given channel, opacity in [0,1], blend mode and
	// line width.
	DrawConnectedPoints(points []geometry.Point, c Color, opacity float64, mode Compositing, thickness float64)
	// DrawPoints fills a disc of the given diameter at each point.
	DrawPoints(points []geometry.Point, color string, diameter float64)
	// Size returns the output dimensions.
	Size() geometry.Size
}

// StrokeValue is the 8-bit channel intensity a stroke of the given opacity
// carries under advanced compositing.
func StrokeValue(opacity float64) int {
	v := 255 * opacity
	n := int(v)
	if float64(n) < v {
		n++
	}
	return n
}

// Segments splits a polyline into its consecutive point pairs.
func Segments(points []geometry.Point) [][2]geometry.Point {
	if len(points) < 2 {
		return nil
	}
	out := make([][2]geometry.Point, len(points)-1)
	for i := range out {
		out[i] = [2]geometry.Point{points[i], points[i+1]}
	}
	return out
}
