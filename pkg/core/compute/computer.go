package compute

import (
	"image"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/core/ink"
	"github.com/matzehuels/threadart/pkg/core/pegs"
	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/errors"
)

const (
	// DefaultOpacity is the opacity of one thread in the final render.
	DefaultOpacity = 16.0 / 256

	// DefaultThickness is the thread width in output units at quality 1.
	DefaultThickness = 1.0

	// DefaultPegSpacing is the distance between pegs in the 1000 unit
	// reference domain.
	DefaultPegSpacing = 12.0

	// DefaultQuality is the raster scale factor.
	DefaultQuality = 1

	// HistorySize is how many recently visited pegs are excluded as the
	// next destination.
	HistorySize = 20

	// MeasureEvery is the segment cadence of error measurement while growing.
	// The error is also measured when the target is reached.
	MeasureEvery = 100

	// target value of every raster channel when ink matches the image
	neutral = 127
)

// Options configures a Computer. Changing any of them requires a new
// session.
type Options struct {
	Shape      pegs.Shape
	PegSpacing float64 // reference domain units
	Quality    int
	Mode       thread.Mode
	Opacity    float64 // [0,1]
	Thickness  float64
	Invert     bool   // light thread on a dark background
	Seed       uint64 // 0 picks a random seed

	Logger *log.Logger
	Clock  func() time.Time
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.PegSpacing == 0 {
		o.PegSpacing = DefaultPegSpacing
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultOpacity
	}
	if o.Thickness == 0 {
		o.Thickness = DefaultThickness
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// Validate rejects options no session can be built from.
func (o *Options) Validate() error {
	if o.PegSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "peg spacing must be positive, got %g", o.PegSpacing)
	}
	if o.Quality < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be at least 1, got %d", o.Quality)
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "opacity must be in (0,1], got %g", o.Opacity)
	}
	if o.Thickness <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "thickness must be positive, got %g", o.Thickness)
	}
	return nil
}

// Computer computes a thread for one source image.
type Computer struct {
	src  image.Image
	opts Options

	layout   pegs.Layout
	strategy thread.Strategy
	raster   *ink.Raster
	rng      *rand.Rand

	target int
	errs   ErrorMeasure
}

// New starts a session for src.
func New(src image.Image, opts Options) (*Computer, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "source image is empty")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Computer{src: src, opts: opts}
	c.Reset()
	return c, nil
}

// Reset discards the thread and rebuilds pegs and raster from the source.
// The target is kept.
func (c *Computer) Reset() {
	seed := c.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	c.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))

	c.strategy = thread.New(c.opts.Mode)
	c.raster = ink.NewRaster(c.src, c.opts.Quality, func(img *image.RGBA) {
		c.strategy.Adjust(img, c.opts.Invert)
	})
	c.errs = Measure(c.raster.Snapshot())
	c.raster.SetLineProperties(c.opts.Thickness, c.opts.Opacity, c.opts.Quality)
	c.layout = pegs.ForRaster(c.raster.Size(), c.opts.Shape, c.opts.PegSpacing)

	c.opts.Logger.Debug("session reset",
		"shape", c.opts.Shape,
		"mode", c.opts.Mode,
		"pegs", c.layout.Len(),
		"raster", c.raster.Size(),
		"line_width", c.raster.LineWidth(),
		"opacity", c.raster.OpacityInternal())
}

// Options returns the session options with defaults applied.
func (c *Computer) Options() Options { return c.opts }

// SetTarget sets the segment count Advance works towards. Negative values
// mean an empty thread.
func (c *Computer) SetTarget(n int) { c.target = max(n, 0) }

// Target returns the segment count Advance works towards.
func (c *Computer) Target() int { return c.target }

// SegmentCount returns the number of segments computed so far.
func (c *Computer) SegmentCount() int { return c.strategy.TotalSegments() }

// Done reports whether the thread matches the target.
func (c *Computer) Done() bool { return c.SegmentCount() == c.target }

// Layout returns the pegs of the session, in raster space.
func (c *Computer) Layout() pegs.Layout { return c.layout }

// RasterSize returns the dimensions of the ink raster.
func (c *Computer) RasterSize() geometry.Size { return c.raster.Size() }

// Raster returns the ink simulator. The watch command previews it.
func (c *Computer) Raster() *ink.Raster { return c.raster }

// Mode returns the thread variant of the session.
func (c *Computer) Mode() thread.Mode { return c.strategy.Mode() }

// Threads returns a copy of the peg sequences in channel order (one for
// monochrome, red/green/blue for colors).
func (c *Computer) Threads() [][]int { return c.strategy.Sequences() }

// Error returns the last measured error.
func (c *Computer) Error() ErrorMeasure { return c.errs }
