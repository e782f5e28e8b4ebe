package compute

import (
	"math"
	"slices"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/errors"
)

// grow appends one segment to seq and commits it to the raster.
func (c *Computer) grow(seq *[]int, sampler ink.Sampler) error {
	var from, to int
	if len(*seq) == 0 {
		a, b, err := c.bestStart(sampler)
		if err != nil {
			return err
		}
		*seq = append(*seq, a)
		from, to = a, b
	} else {
		from = (*seq)[len(*seq)-1]
		history := (*seq)[len(*seq)-min(len(*seq), HistorySize):]
		next, err := c.bestNext(from, history, sampler)
		if err != nil {
			return err
		}
		to = next
	}
	*seq = append(*seq, to)
	c.raster.Commit(c.peg(from), c.peg(to))
	return nil
}

// bestStart scores a strided subset of all peg pairs.
func (c *Computer) bestStart(sampler ink.Sampler) (int, int, error) {
	n := c.layout.Len()
	step := 1 + n/100

	best := math.Inf(-1)
	var candidates [][2]int
	for i := 0; i < n; i += step {
		for j := i + 1; j < n; j += step {
			if c.layout.TooClose(i, j) {
				continue
			}
			score := c.potential(i, j, sampler)
			switch {
			case score > best:
				best = score
				candidates = append(candidates[:0], [2]int{i, j})
			case score == best:
				candidates = append(candidates, [2]int{i, j})
			}
		}
	}
	if len(candidates) == 0 {
		return 0, 0, errors.New(errors.ErrCodeDegenerateLayout,
			"no usable starting segment among %d pegs", n)
	}
	pick := candidates[c.rng.IntN(len(candidates))]
	return pick[0], pick[1], nil
}

// bestNext scores every peg reachable from current.
func (c *Computer) bestNext(current int, avoid []int, sampler ink.Sampler) (int, error) {
	best := math.Inf(-1)
	var candidates []int
	for p := range c.layout.Len() {
		if c.layout.TooClose(current, p) || slices.Contains(avoid, p) {
			continue
		}
		score := c.potential(current, p, sampler)
		switch {
		case score > best:
			best = score
			candidates = append(candidates[:0], p)
		case score == best:
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return 0, errors.New(errors.ErrCodeDegenerateLayout,
			"no usable destination from peg %d among %d pegs", current, c.layout.Len())
	}
	return candidates[c.rng.IntN(len(candidates))], nil
}

// potential scores the segment a-b: the mean distance to the neutral value
// along the segment once its ink is added. Higher is better.
func (c *Computer) potential(a, b int, sampler ink.Sampler) float64 {
	pa, pb := c.peg(a), c.peg(b)
	n := max(int(math.Ceil(geometry.Distance(pa, pb))), 1)
	added := c.raster.OpacityInternal() * 255

	var sum float64
	for k := range n {
		r := float64(k+1) / float64(n+1)
		v := c.raster.Sample(geometry.Lerp(pa, pb, r), sampler)
		sum += neutral - (v + added)
	}
	return sum / float64(n)
}

func (c *Computer) peg(i int) geometry.Point {
	return c.layout.Pegs[i].Point()
}
