package thread

import (
	"image"
	"slices"

	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/render"
)

// Repartition is a per-channel segment budget.
type Repartition struct {
	Red, Green, Blue int
}

// Total returns the sum of the three budgets.
func (r Repartition) Total() int { return r.Red + r.Green + r.Blue }

// Frequencies is the share of ink demand of each channel. The three values
// sum to 1.
type Frequencies struct {
	Red, Green, Blue float64
}

// EvenFrequencies is used when an image carries no ink demand at all.
var EvenFrequencies = Frequencies{Red: 1.0 / 3, Green: 1.0 / 3, Blue: 1.0 / 3}

// TriColor grows one thread per red, green and blue channel, splitting the
// segment count according to the color energy of the source.
type TriColor struct {
	red, green, blue []int
	freq             Frequencies
}

// NewTriColor returns an empty tri-color thread with an even split. The
// split is replaced when Adjust measures the source.
func NewTriColor() *TriColor {
	return &TriColor{freq: EvenFrequencies}
}

// Frequencies returns the measured channel energy.
func (t *TriColor) Frequencies() Frequencies { return t.freq }

// SetFrequencies overrides the channel energy.
func (t *TriColor) SetFrequencies(f Frequencies) { t.freq = f }

func (t *TriColor) Mode() Mode { return ModeColors }

func (t *TriColor) TotalSegments() int {
	return segments(t.red) + segments(t.green) + segments(t.blue)
}

// Repartition splits total over the channels. Each channel first gets the
// floor of its ideal share; the remaining units go one at a time to the
// channel with the largest gap, blue winning ties.
func (t *TriColor) Repartition(total int) Repartition {
	total = max(total, 0)
	idealR := float64(total) * t.freq.Red
	idealG := float64(total) * t.freq.Green
	idealB := float64(total) * t.freq.Blue

	rep := Repartition{
		Red:   int(idealR),
		Green: int(idealG),
		Blue:  int(idealB),
	}
	for rep.Total() < total {
		sum := float64(max(1, rep.Total()))
		gapR := idealR - float64(rep.Red)/sum
		gapG := idealG - float64(rep.Green)/sum
		gapB := idealB - float64(rep.Blue)/sum

		switch {
		case gapR > gapG && gapR > gapB:
			rep.Red++
		case gapG > gapR && gapG > gapB:
			rep.Green++
		default:
			rep.Blue++
		}
	}
	return rep
}

func (t *TriColor) Lower(target int) {
	rep := t.Repartition(target)
	t.red = lower(t.red, rep.Red)
	t.green = lower(t.green, rep.Green)
	t.blue = lower(t.blue, rep.Blue)
}

func (t *TriColor) Iterate(skip int, fn func([]int, render.Color)) {
	rep := t.Repartition(skip)
	iterate(t.red, render.Red, rep.Red, fn)
	iterate(t.green, render.Green, rep.Green, fn)
	iterate(t.blue, render.Blue, rep.Blue, fn)
}

func (t *TriColor) ToGrow() (*[]int, render.Color) {
	rep := t.Repartition(t.TotalSegments() + 1)
	if rep.Red > 0 && len(t.red) < rep.Red+1 {
		return &t.red, render.Red
	}
	if rep.Green > 0 && len(t.green) < rep.Green+1 {
		return &t.green, render.Green
	}
	return &t.blue, render.Blue
}

// Adjust halves every channel and measures how much ink each channel needs.
// On a light background ink demand is the complement of the source.
func (t *TriColor) Adjust(img *image.RGBA, invert bool) {
	adjust := adjuster(invert)
	var sumR, sumG, sumB float64
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sumR += float64(img.Pix[i])
		sumG += float64(img.Pix[i+1])
		sumB += float64(img.Pix[i+2])
		img.Pix[i] = adjust(float64(img.Pix[i]))
		img.Pix[i+1] = adjust(float64(img.Pix[i+1]))
		img.Pix[i+2] = adjust(float64(img.Pix[i+2]))
		n++
	}
	if !invert {
		full := 255 * float64(n)
		sumR, sumG, sumB = full-sumR, full-sumG, full-sumB
	}
	t.freq = frequencies(sumR, sumG, sumB)
}

func frequencies(r, g, b float64) Frequencies {
	total := r + g + b
	if total <= 0 {
		return EvenFrequencies
	}
	return Frequencies{Red: r / total, Green: g / total, Blue: b / total}
}

func (t *TriColor) SamplerFor(c render.Color) ink.Sampler {
	switch c {
	case render.Green:
		return ink.Channel(1)
	case render.Blue:
		return ink.Channel(2)
	default:
		return ink.Channel(0)
	}
}

func (t *TriColor) Sequences() [][]int {
	return [][]int{slices.Clone(t.red), slices.Clone(t.green), slices.Clone(t.blue)}
}

func (t *TriColor) Restore(seqs [][]int) error {
	if err := checkChannels(seqs, 3); err != nil {
		return err
	}
	t.red = slices.Clone(seqs[0])
	t.green = slices.Clone(seqs[1])
	t.blue = slices.Clone(seqs[2])
	return nil
}
