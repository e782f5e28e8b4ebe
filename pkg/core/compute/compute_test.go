package compute

import (
	"image"
	"image/color"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/core/pegs"
	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/errors"
	"github.com/matzehuels/threadart/pkg/render"
)

// gradient returns a square image going from black on the left to white on
// the right.
func gradient(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			v := uint8(255 * x / (size - 1))
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func flat(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestComputer(t *testing.T, src image.Image, opts Options) *Computer {
	t.Helper()
	if opts.PegSpacing == 0 {
		opts.PegSpacing = 40
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	c, err := New(src, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func advanceAll(t *testing.T, c *Computer) {
	t.Helper()
	if err := c.Run(time.Hour); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(f.step)
	return f.now
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		src  image.Image
		opts Options
		code errors.Code
	}{
		{"nil image", nil, Options{}, errors.ErrCodeInvalidImage},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}, errors.ErrCodeInvalidImage},
		{"negative spacing", gradient(10), Options{PegSpacing: -1}, errors.ErrCodeInvalidInput},
		{"opacity above one", gradient(10), Options{Opacity: 2}, errors.ErrCodeInvalidInput},
		{"negative thickness", gradient(10), Options{Thickness: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.src, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAdvanceIdempotentAtTarget(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})

	changed, err := c.Advance(time.Second)
	if err != nil || changed {
		t.Fatalf("Advance() on empty target = %v, %v; want false, nil", changed, err)
	}

	c.SetTarget(30)
	advanceAll(t, c)
	before := c.Threads()
	snapshot := slices.Clone(c.Raster().Snapshot().Pix)

	changed, err = c.Advance(time.Second)
	if err != nil || changed {
		t.Fatalf("Advance() at target = %v, %v; want false, nil", changed, err)
	}
	if !slices.EqualFunc(before, c.Threads(), slices.Equal[[]int]) {
		t.Error("threads changed at target")
	}
	if !slices.Equal(snapshot, c.Raster().Snapshot().Pix) {
		t.Error("raster changed at target")
	}
}

func TestAdvanceRespectsBudget(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Millisecond}
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse, Clock: clock.Now})
	c.SetTarget(20)

	prev := 0
	for c.SegmentCount() < 20 {
		changed, err := c.Advance(5 * time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Fatal("Advance() reported no change below target")
		}
		// the clock ticks once at start and once per check: four segments
		// fit before the fifth check sees the budget spent
		if got := c.SegmentCount() - prev; got != min(4, 20-prev) {
			t.Fatalf("grew by %d segments, want %d", got, min(4, 20-prev))
		}
		prev = c.SegmentCount()
	}

	if changed, _ := c.Advance(5 * time.Millisecond); changed {
		t.Error("Advance() at target should report no change")
	}
}

func TestAdvanceZeroBudget(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	c.SetTarget(10)
	changed, err := c.Advance(0)
	if err != nil || !changed {
		t.Fatalf("Advance(0) = %v, %v; want true, nil", changed, err)
	}
	if c.SegmentCount() != 0 {
		t.Errorf("SegmentCount() = %d, want 0", c.SegmentCount())
	}
}

func TestGrowThenShrink(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})

	c.SetTarget(500)
	advanceAll(t, c)
	if c.SegmentCount() != 500 {
		t.Fatalf("SegmentCount() = %d, want 500", c.SegmentCount())
	}
	grown := c.Threads()[0]
	if len(grown) != 501 {
		t.Fatalf("len(thread) = %d, want 501", len(grown))
	}

	c.SetTarget(200)
	changed, err := c.Advance(time.Second)
	if err != nil || !changed {
		t.Fatalf("Advance() lowering = %v, %v", changed, err)
	}
	if c.SegmentCount() != 200 {
		t.Fatalf("SegmentCount() = %d, want 200", c.SegmentCount())
	}
	if got := c.Threads()[0]; !slices.Equal(got, grown[:201]) {
		t.Error("lowered thread is not a prefix of the grown thread")
	}

	// the replayed raster matches a raster that only ever saw 200 segments
	other := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	if err := other.Restore([][]int{grown[:201]}); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(c.Raster().Snapshot().Pix, other.Raster().Snapshot().Pix) {
		t.Error("raster after lowering differs from a fresh replay")
	}
	if c.Error() != other.Error() {
		t.Errorf("Error() = %+v, fresh replay = %+v", c.Error(), other.Error())
	}
}

func TestNegativeTargetEmptiesThread(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	c.SetTarget(15)
	advanceAll(t, c)

	c.SetTarget(-4)
	if c.Target() != 0 {
		t.Fatalf("Target() = %d, want 0", c.Target())
	}
	advanceAll(t, c)
	if c.SegmentCount() != 0 {
		t.Errorf("SegmentCount() = %d, want 0", c.SegmentCount())
	}
}

func TestThreadInvariants(t *testing.T) {
	for _, shape := range []pegs.Shape{pegs.Rectangle, pegs.Ellipse} {
		t.Run(shape.String(), func(t *testing.T) {
			c := newTestComputer(t, gradient(50), Options{Shape: shape})
			c.SetTarget(150)
			advanceAll(t, c)

			seq := c.Threads()[0]
			layout := c.Layout()
			for i := 1; i < len(seq); i++ {
				if layout.TooClose(seq[i-1], seq[i]) {
					t.Fatalf("segment %d joins pegs that are too close", i)
				}
				start := max(0, i-HistorySize)
				if i >= 2 && slices.Contains(seq[start:i], seq[i]) {
					t.Fatalf("step %d revisits peg %d within the history window", i, seq[i])
				}
			}
		})
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	a := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse, Seed: 7})
	b := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse, Seed: 7})
	a.SetTarget(100)
	b.SetTarget(100)
	advanceAll(t, a)
	advanceAll(t, b)
	if !slices.Equal(a.Threads()[0], b.Threads()[0]) {
		t.Error("same seed produced different threads")
	}
}

func TestUniformImageUsesRandomTieBreak(t *testing.T) {
	starts := make(map[[2]int]bool)
	for seed := uint64(1); seed <= 12; seed++ {
		c := newTestComputer(t, flat(40, color.RGBA{R: 255, G: 255, B: 255, A: 255}), Options{Shape: pegs.Ellipse, Seed: seed})
		c.SetTarget(3)
		advanceAll(t, c)
		if c.SegmentCount() != 3 {
			t.Fatalf("seed %d: SegmentCount() = %d, want 3", seed, c.SegmentCount())
		}
		seq := c.Threads()[0]
		starts[[2]int{seq[0], seq[1]}] = true
	}
	if len(starts) < 2 {
		t.Errorf("all seeds picked the same starting segment %v", starts)
	}
}

func TestDegenerateLayout(t *testing.T) {
	t.Run("single peg", func(t *testing.T) {
		// ceil(π·1000/5000) = 1 peg
		c := newTestComputer(t, gradient(20), Options{Shape: pegs.Ellipse, PegSpacing: 5000})
		c.SetTarget(1)
		changed, err := c.Advance(time.Second)
		if !errors.Is(err, errors.ErrCodeDegenerateLayout) {
			t.Fatalf("Advance() error = %v, want DEGENERATE_LAYOUT", err)
		}
		if changed {
			t.Error("Advance() should not report a change when nothing was added")
		}
	})

	t.Run("no next peg", func(t *testing.T) {
		// two opposite pegs: the second segment would have to go back
		c := newTestComputer(t, gradient(20), Options{Shape: pegs.Ellipse, PegSpacing: 2000})
		if c.Layout().Len() != 2 {
			t.Fatalf("Len() = %d, want 2", c.Layout().Len())
		}
		c.SetTarget(2)
		changed, err := c.Advance(time.Second)
		if !errors.Is(err, errors.ErrCodeDegenerateLayout) {
			t.Fatalf("Advance() error = %v, want DEGENERATE_LAYOUT", err)
		}
		if !changed || c.SegmentCount() != 1 {
			t.Errorf("changed = %v, segments = %d; want true, 1", changed, c.SegmentCount())
		}
	})
}

func TestTriColor(t *testing.T) {
	src := flat(40, color.RGBA{R: 0, G: 128, B: 255, A: 255})
	c := newTestComputer(t, src, Options{Shape: pegs.Ellipse, Mode: thread.ModeColors})
	c.SetTarget(60)
	advanceAll(t, c)

	if c.SegmentCount() != 60 {
		t.Fatalf("SegmentCount() = %d, want 60", c.SegmentCount())
	}
	threads := c.Threads()
	if len(threads) != 3 {
		t.Fatalf("len(Threads()) = %d, want 3", len(threads))
	}
	// red carries the most ink demand on a light background
	if len(threads[0]) <= len(threads[2]) {
		t.Errorf("red has %d pegs, blue %d; want red > blue", len(threads[0]), len(threads[2]))
	}

	c.SetTarget(25)
	advanceAll(t, c)
	if c.SegmentCount() > 25 {
		t.Errorf("SegmentCount() = %d after lowering to 25", c.SegmentCount())
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name string
		img  *image.RGBA
		want ErrorMeasure
	}{
		{"neutral", flat(8, color.RGBA{127, 127, 127, 255}), ErrorMeasure{}},
		{"black", flat(8, color.RGBA{0, 0, 0, 255}), ErrorMeasure{Average: 127, MeanSquare: 16129}},
		{"white", flat(8, color.RGBA{255, 255, 255, 255}), ErrorMeasure{Average: -128, MeanSquare: 16384}},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), ErrorMeasure{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Measure(tt.img); got != tt.want {
				t.Errorf("Measure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeasureVariance(t *testing.T) {
	// half the pixels at residual 0, half at residual 10
	img := flat(2, color.RGBA{127, 127, 127, 255})
	img.SetRGBA(0, 0, color.RGBA{117, 117, 117, 255})
	img.SetRGBA(1, 0, color.RGBA{117, 117, 117, 255})

	got := Measure(img)
	want := ErrorMeasure{Average: 5, Variance: 25, MeanSquare: 50}
	if got != want {
		t.Errorf("Measure() = %+v, want %+v", got, want)
	}
}

func TestIndicators(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	c.SetTarget(MeasureEvery)
	advanceAll(t, c)

	ind := c.Indicators()
	if ind.PegCount != c.Layout().Len() || ind.SegmentCount != MeasureEvery {
		t.Errorf("Indicators() = %+v", ind)
	}
	if ind.ErrorMeanSquare != c.Error().MeanSquare {
		t.Errorf("ErrorMeanSquare = %d, want %d", ind.ErrorMeanSquare, c.Error().MeanSquare)
	}
	if want := Measure(c.Raster().Snapshot()); c.Error() != want {
		t.Errorf("error not refreshed at the measurement cadence: %+v vs %+v", c.Error(), want)
	}
}

func TestErrorMeasuredAtTarget(t *testing.T) {
	for _, mode := range []thread.Mode{thread.ModeMonochrome, thread.ModeColors} {
		t.Run(mode.String(), func(t *testing.T) {
			opts := Options{Shape: pegs.Ellipse, Mode: mode}
			grown := newTestComputer(t, gradient(60), opts)
			grown.SetTarget(MeasureEvery + 50)
			advanceAll(t, grown)

			if want := Measure(grown.Raster().Snapshot()); grown.Error() != want {
				t.Errorf("Error() = %+v, want %+v", grown.Error(), want)
			}

			restored := newTestComputer(t, gradient(60), opts)
			if err := restored.Restore(grown.Threads()); err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if restored.Indicators() != grown.Indicators() {
				t.Errorf("restored Indicators() = %+v, want %+v", restored.Indicators(), grown.Indicators())
			}
		})
	}
}

func TestRestoreValidation(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	n := c.Layout().Len()

	tests := []struct {
		name    string
		threads [][]int
	}{
		{"out of range", [][]int{{0, n}}},
		{"negative", [][]int{{-1, n / 2}}},
		{"single peg", [][]int{{3}}},
		{"too close", [][]int{{0, 1}}},
		{"wrong channel count", [][]int{{0, n / 2}, {0, n / 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Restore(tt.threads); !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("Restore() error = %v, want INVALID_DOCUMENT", err)
			}
		})
	}

	if err := c.Restore([][]int{{0, n / 2, 5}}); err != nil {
		t.Fatalf("Restore() valid thread: %v", err)
	}
	if c.Target() != 2 || c.SegmentCount() != 2 {
		t.Errorf("Target() = %d, SegmentCount() = %d; want 2, 2", c.Target(), c.SegmentCount())
	}
}

func TestInstructions(t *testing.T) {
	t.Run("monochrome", func(t *testing.T) {
		c := newTestComputer(t, gradient(50), Options{Shape: pegs.Rectangle, PegSpacing: 100})
		c.SetTarget(3)
		advanceAll(t, c)
		seq := c.Threads()[0]

		text := c.Instructions()
		for _, want := range []string{
			"Generated by threadart.",
			"Computed for a total size of 100x100.",
			"Computed for a black thread of width 1 and opacity 0.0625 (this is equivalent to an opaque thread of width 0.0625).",
			"  - PEG_0: x=0.00 ; y=0.00",
			"  - PEG_1: x=10.00 ; y=0.00",
			"  - First start from PEG_",
			"(this is segment 3 / 3)",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("instructions missing %q", want)
			}
		}
		if !strings.HasSuffix(text, "then go to PEG_"+strconv.Itoa(seq[3])+" (this is segment 3 / 3)") {
			t.Errorf("instructions do not end with the last step:\n%s", text)
		}
	})

	t.Run("colors", func(t *testing.T) {
		c := newTestComputer(t, gradient(20), Options{Mode: thread.ModeColors})
		if got := c.Instructions(); got != InstructionsMonochromeOnly {
			t.Errorf("Instructions() = %q", got)
		}
	})

	t.Run("inverted", func(t *testing.T) {
		c := newTestComputer(t, gradient(20), Options{Invert: true})
		if got := c.Instructions(); got != InstructionsBlackOnly {
			t.Errorf("Instructions() = %q", got)
		}
	})
}

// recorder is a renderer that logs the calls it receives.
type recorder struct {
	size  geometry.Size
	calls []string
	lines []recordedLine
	pegs  int
	diam  float64
	info  render.Info
}

type recordedLine struct {
	points    []geometry.Point
	color     render.Color
	opacity   float64
	mode      render.Compositing
	thickness float64
}

func (r *recorder) Resize()             { r.calls = append(r.calls, "resize") }
func (r *recorder) Finalize()           { r.calls = append(r.calls, "finalize") }
func (r *recorder) Size() geometry.Size { return r.size }

func (r *recorder) Initialize(info render.Info) {
	r.calls = append(r.calls, "initialize")
	r.info = info
}

func (r *recorder) DrawConnectedPoints(points []geometry.Point, c render.Color, opacity float64, mode render.Compositing, thickness float64) {
	r.calls = append(r.calls, "lines")
	r.lines = append(r.lines, recordedLine{points, c, opacity, mode, thickness})
}

func (r *recorder) DrawPoints(points []geometry.Point, _ string, diameter float64) {
	r.calls = append(r.calls, "points")
	r.pegs = len(points)
	r.diam = diameter
}

func TestDrawThread(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
		mode   render.Compositing
	}{
		{"dark on light", false, render.Darken},
		{"light on dark", true, render.Lighten},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse, Quality: 2, Invert: tt.invert})
			c.SetTarget(10)
			advanceAll(t, c)

			// raster is 200x200, scaling 5
			r := &recorder{size: geometry.Size{Width: 1000, Height: 1000}}
			c.DrawThread(r, 0)
			if len(r.lines) != 1 {
				t.Fatalf("got %d draw calls, want 1", len(r.lines))
			}
			l := r.lines[0]
			if len(l.points) != 11 {
				t.Errorf("len(points) = %d, want 11", len(l.points))
			}
			if l.thickness != 10 || l.mode != tt.mode || l.opacity != DefaultOpacity || l.color != render.Monochrome {
				t.Errorf("line = %+v", l)
			}
			first := c.Layout().Pegs[c.Threads()[0][0]]
			if l.points[0] != (geometry.Point{X: first.X * 5, Y: first.Y * 5}) {
				t.Errorf("first point = %v, peg = %+v", l.points[0], first)
			}

			c.DrawPegs(r, "red")
			if r.pegs != c.Layout().Len() || r.diam != 5 {
				t.Errorf("pegs = %d, diameter = %v", r.pegs, r.diam)
			}
		})
	}
}

func TestPlotter(t *testing.T) {
	c := newTestComputer(t, gradient(50), Options{Shape: pegs.Ellipse})
	r := &recorder{size: geometry.Size{Width: 500, Height: 500}}
	p := NewPlotter(r, c, PlotOptions{ShowPegs: true, Blur: 2})

	if p.Plot() {
		t.Fatal("nothing to plot on an empty thread")
	}

	c.SetTarget(10)
	advanceAll(t, c)
	if !p.Plot() {
		t.Fatal("Plot() after growth = false")
	}
	want := []string{"resize", "initialize", "points", "lines", "finalize"}
	if !slices.Equal(r.calls, want) {
		t.Errorf("first plot calls = %v, want %v", r.calls, want)
	}
	if r.info.Background != "white" || r.info.Blur != 2 {
		t.Errorf("info = %+v", r.info)
	}

	r.calls, r.lines = nil, nil
	c.SetTarget(25)
	advanceAll(t, c)
	p.Plot()
	if !slices.Equal(r.calls, []string{"lines"}) {
		t.Errorf("incremental plot calls = %v, want [lines]", r.calls)
	}
	if got := len(r.lines[0].points); got != 16 {
		t.Errorf("tail has %d points, want 16", got)
	}

	r.calls = nil
	if p.Plot() {
		t.Error("Plot() without changes = true")
	}

	c.SetTarget(5)
	advanceAll(t, c)
	p.Plot()
	if !slices.Equal(r.calls, want) {
		t.Errorf("plot after shrink calls = %v, want full redraw", r.calls)
	}

	r.calls = nil
	p.SetOptions(PlotOptions{})
	c.SetTarget(8)
	advanceAll(t, c)
	p.Plot()
	if want := []string{"resize", "initialize", "lines", "finalize"}; !slices.Equal(r.calls, want) {
		t.Errorf("plot after SetOptions calls = %v, want %v", r.calls, want)
	}
}
