package compute

import (
	"time"

	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/render"
)

// Advance moves the thread towards the target segment count, spending at
// most budget. The clock is checked between whole segments, so the last
// segment may finish past the budget.
//
// It reports whether anything was attempted: false means the thread already
// matched the target. A call that runs out of budget before reaching the
// target still reports true; the caller is expected to call again.
func (c *Computer) Advance(budget time.Duration) (bool, error) {
	start := c.opts.Clock()

	total := c.strategy.TotalSegments()
	if total == c.target {
		return false, nil
	}
	if total > c.target {
		c.strategy.Lower(c.target)
		c.replay()
		c.errs = Measure(c.raster.Snapshot())
		c.opts.Logger.Debug("thread lowered", "from", total, "to", c.strategy.TotalSegments())
		return true, nil
	}

	var (
		last    = render.Color(-1)
		sampler ink.Sampler
	)
	for c.strategy.TotalSegments() < c.target && c.opts.Clock().Sub(start) < budget {
		seq, color := c.strategy.ToGrow()
		if color != last {
			c.raster.SetColor(color)
			sampler = c.strategy.SamplerFor(color)
			last = color
		}
		if err := c.grow(seq, sampler); err != nil {
			return c.strategy.TotalSegments() != total, err
		}
		if n := c.strategy.TotalSegments(); n%MeasureEvery == 0 || n == c.target {
			c.errs = Measure(c.raster.Snapshot())
		}
	}
	return true, nil
}

// Run advances in slices of budget until the target is reached.
func (c *Computer) Run(budget time.Duration) error {
	for {
		changed, err := c.Advance(budget)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

// replay rebuilds the raster from the baseline with every stored segment.
func (c *Computer) replay() {
	c.raster.Reset()
	c.strategy.Iterate(0, func(seq []int, color render.Color) {
		c.raster.SetColor(color)
		for i := 0; i+1 < len(seq); i++ {
			c.raster.Commit(c.peg(seq[i]), c.peg(seq[i+1]))
		}
	})
}
