// Package thread holds the peg sequences of a thread and the policy deciding
// which channel grows next.
//
// A [Strategy] is either [Monochrome] (one sequence) or [TriColor] (one
// sequence per red, green and blue channel). Sequences store peg indices and
// only ever grow at the tail or get truncated from the tail.
package thread

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/errors"
	"github.com/matzehuels/threadart/pkg/render"
)

// Mode selects the strategy variant.
type Mode int

const (
	ModeMonochrome Mode = iota
	ModeColors
)

func (m Mode) String() string {
	if m == ModeColors {
		return "colors"
	}
	return "monochrome"
}

// ParseMode accepts "monochrome" or "colors" (also "0"/"1").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monochrome", "mono", "0":
		return ModeMonochrome, nil
	case "colors", "color", "rgb", "1":
		return ModeColors, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want monochrome or colors)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Strategy is the capability set shared by the thread variants.
type Strategy interface {
	// Mode reports the variant.
	Mode() Mode
	// TotalSegments is the sum of segments over all channels.
	TotalSegments() int
	// Lower truncates the channels so that the total matches target, or as
	// close as the channel apportionment allows.
	Lower(target int)
	// Iterate calls fn for each channel that still has segments after
	// skipping the first skip segments of the thread. seq starts at the
	// first peg of the first undrawn segment.
	Iterate(skip int, fn func(seq []int, c render.Color))
	// ToGrow returns the sequence that receives the next segment.
	ToGrow() (*[]int, render.Color)
	// Adjust remaps a prepared source image into the simulation baseline.
	// invert is set when the thread is light on a dark background.
	Adjust(img *image.RGBA, invert bool)
	// SamplerFor returns the sampler used while growing channel c.
	SamplerFor(c render.Color) ink.Sampler
	// Sequences returns the stored sequences in channel order.
	Sequences() [][]int
	// Restore replaces the stored sequences.
	Restore(seqs [][]int) error
}

// New returns an empty strategy for mode.
func New(mode Mode) Strategy {
	if mode == ModeColors {
		return NewTriColor()
	}
	return NewMonochrome()
}

// segments returns the number of segments of a sequence.
func segments(seq []int) int {
	if len(seq) > 1 {
		return len(seq) - 1
	}
	return 0
}

// lower truncates seq to at most target segments.
func lower(seq []int, target int) []int {
	if target > 0 {
		return seq[:min(len(seq), target+1)]
	}
	return seq[:0]
}

// iterate calls fn with the tail of seq starting at segment from.
func iterate(seq []int, c render.Color, from int, fn func([]int, render.Color)) {
	if from < segments(seq) {
		fn(seq[from:], c)
	}
}

func adjuster(invert bool) func(v float64) uint8 {
	if invert {
		return func(v float64) uint8 { return uint8(math.RoundToEven((255 - v) / 2)) }
	}
	return func(v float64) uint8 { return uint8(math.RoundToEven(v / 2)) }
}

func checkChannels(seqs [][]int, want int) error {
	if len(seqs) != want {
		return fmt.Errorf("expected %d sequences, got %d", want, len(seqs))
	}
	return nil
}
