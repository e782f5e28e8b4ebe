package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/threadart/pkg/config"
	"github.com/matzehuels/threadart/pkg/core/pegs"
	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/render"
	"github.com/matzehuels/threadart/pkg/render/raster"
)

// threadFlags holds the flags that shape a thread. Only flags the user set
// override the loaded config.
type threadFlags struct {
	shape       string
	mode        string
	density     float64
	quality     int
	lines       int
	opacity     int
	thickness   float64
	invert      bool
	seed        uint64
	frameBudget int
}

func (f *threadFlags) register(cmd *cobra.Command) {
	d := config.DefaultParameters()
	fs := cmd.Flags()
	fs.StringVar(&f.shape, "shape", d.Shape.String(), "frame shape: rectangle, ellipse")
	fs.StringVar(&f.mode, "mode", d.Mode.String(), "thread mode: monochrome, colors")
	fs.Float64Var(&f.density, "density", d.PegDensity, "peg density in (0,1]")
	fs.IntVar(&f.quality, "quality", d.Quality, "raster quality (1-3)")
	fs.IntVarP(&f.lines, "lines", "n", d.Lines, "number of segments")
	fs.IntVar(&f.opacity, "opacity", d.OpacityLevel, "line opacity level (1-5)")
	fs.Float64Var(&f.thickness, "thickness", d.Thickness, "thread thickness")
	fs.BoolVar(&f.invert, "invert", d.Invert, "white thread on black")
	fs.Uint64Var(&f.seed, "seed", d.Seed, "seed for random tie-breaking")
	fs.IntVar(&f.frameBudget, "frame-budget", d.FrameBudgetMS, "compute slice in milliseconds")
}

// apply overlays the changed flags onto p.
func (f *threadFlags) apply(cmd *cobra.Command, p *config.Parameters) error {
	fs := cmd.Flags()
	if fs.Changed("shape") {
		s, err := pegs.ParseShape(f.shape)
		if err != nil {
			return err
		}
		p.Shape = s
	}
	if fs.Changed("mode") {
		m, err := thread.ParseMode(f.mode)
		if err != nil {
			return err
		}
		p.Mode = m
	}
	if fs.Changed("density") {
		p.PegDensity = f.density
	}
	if fs.Changed("quality") {
		p.Quality = f.quality
	}
	if fs.Changed("lines") {
		p.Lines = f.lines
	}
	if fs.Changed("opacity") {
		p.OpacityLevel = f.opacity
	}
	if fs.Changed("thickness") {
		p.Thickness = f.thickness
	}
	if fs.Changed("invert") {
		p.Invert = f.invert
	}
	if fs.Changed("seed") {
		p.Seed = f.seed
	}
	if fs.Changed("frame-budget") {
		p.FrameBudgetMS = f.frameBudget
	}
	p.SetDefaults()
	return p.Validate()
}

// displayFlags holds the flags that control drawing.
type displayFlags struct {
	showPegs   bool
	pegColor   string
	blur       float64
	capability string
}

func (f *displayFlags) register(cmd *cobra.Command) {
	d := config.Default().Render
	fs := cmd.Flags()
	fs.BoolVar(&f.showPegs, "pegs", d.ShowPegs, "draw the pegs")
	fs.StringVar(&f.pegColor, "peg-color", "", "peg color: #rgb, #rrggbb or a color name")
	fs.Float64Var(&f.blur, "blur", d.Blur, "blur radius in pixels (0-20)")
	fs.StringVar(&f.capability, "capability", "", "renderer capability: advanced, basic")
}

func (f *displayFlags) apply(cmd *cobra.Command, d *config.Display) error {
	fs := cmd.Flags()
	if fs.Changed("pegs") {
		d.ShowPegs = f.showPegs
	}
	if fs.Changed("peg-color") {
		if _, err := raster.ParseColor(f.pegColor); err != nil {
			return err
		}
		d.PegColor = f.pegColor
	}
	if fs.Changed("blur") {
		d.Blur = f.blur
	}
	if fs.Changed("capability") {
		c, err := render.ParseCapability(f.capability)
		if err != nil {
			return err
		}
		d.Capability = c
	}
	d.SetDefaults()
	return d.Validate()
}
