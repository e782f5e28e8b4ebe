package compute

import "github.com/matzehuels/threadart/pkg/render"

// PlotOptions configures what a Plotter draws around the thread.
type PlotOptions struct {
	ShowPegs bool
	PegColor string  // defaults to DefaultPegColor
	Blur     float64 // passed to the renderer on full redraws
}

// Plotter keeps a renderer in sync with a computer, redrawing only the new
// tail of the thread when it grew.
type Plotter struct {
	renderer render.Renderer
	computer *Computer
	opts     PlotOptions
	drawn    int
}

// NewPlotter binds a renderer to a computer.
func NewPlotter(r render.Renderer, c *Computer, opts PlotOptions) *Plotter {
	if opts.PegColor == "" {
		opts.PegColor = DefaultPegColor
	}
	return &Plotter{renderer: r, computer: c, opts: opts}
}

// Reset forces the next Plot to redraw from scratch.
func (p *Plotter) Reset() { p.drawn = 0 }

// SetOptions changes the plot options and forces a full redraw.
func (p *Plotter) SetOptions(opts PlotOptions) {
	if opts.PegColor == "" {
		opts.PegColor = DefaultPegColor
	}
	p.opts = opts
	p.Reset()
}

// Plot brings the renderer up to date. It does nothing when the segment
// count did not change, draws the new tail when it grew, and redraws
// everything when it shrank or nothing was drawn yet. It reports whether
// the renderer was touched.
func (p *Plotter) Plot() bool {
	count := p.computer.SegmentCount()
	if p.drawn == count {
		return false
	}
	if p.drawn > count {
		p.drawn = 0
	}

	if p.drawn == 0 {
		p.full()
	} else {
		p.computer.DrawThread(p.renderer, p.drawn)
	}
	p.drawn = count
	return true
}

// Redraw draws everything regardless of what was drawn before.
func (p *Plotter) Redraw() {
	p.full()
	p.drawn = p.computer.SegmentCount()
}

func (p *Plotter) full() {
	p.renderer.Resize()
	p.renderer.Initialize(render.Info{
		Background: p.computer.Background(),
		Blur:       p.opts.Blur,
	})
	if p.opts.ShowPegs {
		p.computer.DrawPegs(p.renderer, p.opts.PegColor)
	}
	p.computer.DrawThread(p.renderer, 0)
	p.renderer.Finalize()
}
