// Package compute grows a thread, segment by segment, so that its ink
// approximates a source image.
//
// # Overview
//
// A [Computer] owns one image session: the peg layout, the thread sequences
// and the ink raster they are scored against. The host drives it with
// time-boxed calls:
//
//	c, err := compute.New(img, compute.Options{Shape: pegs.Ellipse})
//	c.SetTarget(2000)
//	for {
//	    changed, err := c.Advance(20 * time.Millisecond)
//	    if err != nil {
//	        return err
//	    }
//	    if !changed {
//	        break
//	    }
//	}
//	c.DrawThread(renderer, 0)
//
// # Algorithm
//
// Growth is greedy. The first segment of a channel is the best scoring pair
// among a strided subset of all peg pairs. Every following segment starts at
// the last peg and ends at the best scoring peg that is neither too close
// nor among the last 20 visited. A segment scores the average distance to
// mid-gray that the raster would have along it once the segment's ink is
// added. Ties are broken uniformly at random with a seedable source.
//
// Lowering the target truncates the sequences and replays the survivors onto
// a fresh baseline, since ink cannot be removed.
//
// # Concurrency
//
// A Computer is not safe for concurrent use. Draw emission must not overlap
// with Advance.
package compute
