package thread

import (
	"image"
	"slices"

	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/render"
)

// Monochrome is a single black (or white, when inverted) thread.
type Monochrome struct {
	pegs []int
}

// NewMonochrome returns an empty monochrome thread.
func NewMonochrome() *Monochrome {
	return &Monochrome{}
}

func (m *Monochrome) Mode() Mode { return ModeMonochrome }

func (m *Monochrome) TotalSegments() int { return segments(m.pegs) }

func (m *Monochrome) Lower(target int) { m.pegs = lower(m.pegs, target) }

func (m *Monochrome) Iterate(skip int, fn func([]int, render.Color)) {
	iterate(m.pegs, render.Monochrome, skip, fn)
}

func (m *Monochrome) ToGrow() (*[]int, render.Color) {
	return &m.pegs, render.Monochrome
}

// Adjust converts the image to gray, halved so that white maps to mid-gray.
func (m *Monochrome) Adjust(img *image.RGBA, invert bool) {
	adjust := adjuster(invert)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		avg := (float64(img.Pix[i]) + float64(img.Pix[i+1]) + float64(img.Pix[i+2])) / 3
		v := adjust(avg)
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = v, v, v
	}
}

// SamplerFor reads the red channel; the baseline is gray so any channel
// would do.
func (m *Monochrome) SamplerFor(render.Color) ink.Sampler {
	return ink.Channel(0)
}

func (m *Monochrome) Sequences() [][]int {
	return [][]int{slices.Clone(m.pegs)}
}

func (m *Monochrome) Restore(seqs [][]int) error {
	if err := checkChannels(seqs, 1); err != nil {
		return err
	}
	m.pegs = slices.Clone(seqs[0])
	return nil
}
