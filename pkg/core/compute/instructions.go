package compute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/render"
)

// Messages returned by Instructions when no instructions can be given.
const (
	InstructionsMonochromeOnly = "Instructions are only available for monochrome mode."
	InstructionsBlackOnly      = "Instructions are only available for black thread."
)

// Instructions returns a step by step guide to reproduce the thread with
// real pegs and thread. Only black monochrome thread on a light background
// can be reproduced; other sessions get an explanatory message.
func (c *Computer) Instructions() string {
	if c.strategy.Mode() != thread.ModeMonochrome {
		return InstructionsMonochromeOnly
	}
	if c.opts.Invert {
		return InstructionsBlackOnly
	}

	bounds := c.layout.Bounds()
	thickness := c.opts.Thickness * float64(c.opts.Quality)

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("Generated by threadart.\n")
	add("Here are instructions to reproduce this in real life. For the best result, make sure you computed it at the highest quality and the highest thread opacity.\n")
	add("Space units used below are abstract, just scale it to whatever size you want. Typically, you can choose 1 unit = 1 millimeter.")
	add("Computed for a total size of %sx%s.", num(bounds.Width), num(bounds.Height))
	add("Computed for a black thread of width %s and opacity %s (this is equivalent to an opaque thread of width %s).",
		num(thickness), num(c.opts.Opacity), num(thickness*c.opts.Opacity))

	add("\nFirst here are the positions of the pegs:")
	for i, p := range c.layout.Pegs {
		add("  - PEG_%d: x=%.2f ; y=%.2f", i, p.X, p.Y)
	}

	add("\nThen here are the steps of the thread:")
	c.strategy.Iterate(0, func(seq []int, _ render.Color) {
		add("  - First start from PEG_%d", seq[0])
		for i := 1; i < len(seq); i++ {
			add("  - then go to PEG_%d (this is segment %d / %d)", seq[i], i, len(seq)-1)
		}
	})

	return strings.Join(lines, "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
