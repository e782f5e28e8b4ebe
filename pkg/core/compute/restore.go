package compute

import (
	"github.com/matzehuels/threadart/pkg/errors"
)

// Restore replaces the thread with previously computed sequences, in channel
// order, and replays them onto a fresh raster. The target becomes the
// restored segment count.
func (c *Computer) Restore(threads [][]int) error {
	n := c.layout.Len()
	for ch, seq := range threads {
		if len(seq) == 1 {
			return errors.New(errors.ErrCodeInvalidDocument, "thread %d has a single peg", ch)
		}
		for i, p := range seq {
			if p < 0 || p >= n {
				return errors.New(errors.ErrCodeInvalidDocument,
					"thread %d step %d references peg %d, layout has %d pegs", ch, i, p, n)
			}
			if i > 0 && c.layout.TooClose(seq[i-1], p) {
				return errors.New(errors.ErrCodeInvalidDocument,
					"thread %d step %d joins pegs %d and %d which are too close", ch, i, seq[i-1], p)
			}
		}
	}
	if err := c.strategy.Restore(threads); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "restore %s thread", c.strategy.Mode())
	}

	c.target = c.strategy.TotalSegments()
	c.replay()
	c.errs = Measure(c.raster.Snapshot())
	c.opts.Logger.Debug("thread restored", "segments", c.target)
	return nil
}
