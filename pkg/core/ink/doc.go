// Package ink simulates thread ink accumulating on a low resolution raster.
//
// # Baseline
//
// The source image is flattened onto white, resampled so that its longest
// side is 100 pixels per quality step, then adjusted by the active thread
// strategy. After adjustment the no-ink value sits at mid-gray so that ink
// can move every pixel in either direction.
//
// # Commits and snapshots
//
// [Raster.Commit] strokes a segment onto the device surface (a [Canvas])
// with the lighten blend. The 8-bit [Raster.Snapshot] used for scoring is
// derived lazily: a commit only marks it dirty, and the next read rebuilds
// it once for the whole burst of commits.
//
// # Sampling
//
// [Raster.Sample] interpolates bilinearly between the four pixels around a
// point, clamping at the borders, and reduces each pixel to one value with
// a [Sampler] chosen by the thread strategy.
package ink
