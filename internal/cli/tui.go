package cli

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/threadart/pkg/config"
	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/pipeline"
	"github.com/matzehuels/threadart/pkg/render/raster"
)

const (
	// watchFrame is the tick interval of the live view.
	watchFrame = 16 * time.Millisecond

	// previewEvery throttles preview redraws.
	previewEvery = 250 * time.Millisecond

	// targetStep is how many segments +/- add or remove.
	targetStep = 250

	// previewSurface is the longest side of the offscreen thread image the
	// preview is downsampled from.
	previewSurface = 480

	progressWidth = 40
)

var (
	watchBarFull  = lipgloss.NewStyle().Foreground(colorCyan)
	watchBarEmpty = lipgloss.NewStyle().Foreground(colorDim)
	watchKeyStyle = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// WatchModel - live thread growth
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(watchFrame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WatchModel is the bubbletea model that grows a thread one frame budget per
// tick and previews it.
type WatchModel struct {
	Name     string
	Computer *compute.Computer
	Display  config.Display
	Budget   time.Duration

	// Save writes the current thread and returns a short description of
	// what was written.
	Save func(*compute.Computer) (string, error)

	Paused bool
	Err    error
	Status string

	// Debug previews the ink simulator instead of the thread.
	Debug bool

	// surface is kept in sync by plotter, which only draws the segments
	// added since the previous frame.
	surface *raster.Renderer
	plotter *compute.Plotter

	cols, rows  int
	preview     string
	previewAt   time.Time
	previewSegs int
	started     time.Time
	computeTime time.Duration
}

// NewWatchModel creates a live view for c.
func NewWatchModel(name string, c *compute.Computer, display config.Display, budget time.Duration) WatchModel {
	w, h := pipeline.PNGDimensions(c, previewSurface)
	surface := raster.New(w, h, display.Capability)
	plotter := compute.NewPlotter(surface, c, display.PlotOptions())
	plotter.Redraw()

	return WatchModel{
		Name:        name,
		Computer:    c,
		Display:     display,
		Budget:      budget,
		surface:     surface,
		plotter:     plotter,
		cols:        60,
		rows:        24,
		previewSegs: -1,
		started:     time.Now(),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tick()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.Paused = !m.Paused
		case "+", "=":
			m.Computer.SetTarget(m.Computer.Target() + targetStep)
			m.Status = fmt.Sprintf("target %d", m.Computer.Target())
		case "-", "_":
			m.Computer.SetTarget(max(m.Computer.Target()-targetStep, 0))
			m.Status = fmt.Sprintf("target %d", m.Computer.Target())
		case "r":
			m.Computer.Reset()
			m.plotter.Redraw()
			m.computeTime = 0
			m.Err = nil
			m.previewSegs = -1
			m.Status = "restarted"
		case "g":
			m.Display.ShowPegs = !m.Display.ShowPegs
			m.plotter.SetOptions(m.Display.PlotOptions())
			m.plotter.Redraw()
			m.previewSegs = -1
			m.Status = "pegs hidden"
			if m.Display.ShowPegs {
				m.Status = "pegs shown"
			}
		case "d":
			m.Debug = !m.Debug
			m.previewSegs = -1
		case "s":
			if m.Save != nil {
				desc, err := m.Save(m.Computer)
				if err != nil {
					m.Status = "save failed: " + err.Error()
				} else {
					m.Status = "saved " + desc
				}
			}
		}
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width-2, 10)
		m.rows = max(msg.Height-8, 4)
		m.previewSegs = -1
	case tickMsg:
		if !m.Paused && m.Err == nil {
			start := time.Now()
			if _, err := m.Computer.Advance(m.Budget); err != nil {
				m.Err = err
			}
			m.computeTime += time.Since(start)
		}
		m.refreshPreview()
		return m, tick()
	}
	return m, nil
}

// refreshPreview brings the offscreen surface up to date and downsamples it
// into the preview, at most once per previewEvery while the thread grows.
// A shrunk thread is redrawn in full by the plotter.
func (m *WatchModel) refreshPreview() {
	segs := m.Computer.SegmentCount()
	if segs == m.previewSegs {
		return
	}
	if m.previewSegs >= 0 && time.Since(m.previewAt) < previewEvery && !m.Computer.Done() {
		return
	}
	m.plotter.Plot()

	var src image.Image = m.surface.Image()
	if m.Debug {
		src = m.Computer.Raster().Snapshot()
	}
	w, h := pipeline.PNGDimensions(m.Computer, m.previewSize())
	m.preview = halfBlocks(imaging.Resize(src, w, h, imaging.Box))
	m.previewSegs = segs
	m.previewAt = time.Now()
}

// previewSize is the longest side of the preview in pixels. Each cell holds
// two pixels vertically, and cells are about twice as tall as wide.
func (m *WatchModel) previewSize() int {
	rs := m.Computer.RasterSize()
	size := min(m.cols, int(float64(m.rows*2)*rs.Width/rs.Height))
	if rs.Height > rs.Width {
		size = min(m.rows*2, int(float64(m.cols)*rs.Height/rs.Width))
	}
	return max(size, 2)
}

func (m WatchModel) View() string {
	var b strings.Builder
	c := m.Computer

	b.WriteString(StyleTitle.Render("threadart") + " " + StyleDim.Render(m.Name))
	b.WriteString("\n")

	segs, target := c.SegmentCount(), c.Target()
	b.WriteString(progressBar(segs, target, progressWidth))
	fmt.Fprintf(&b, " %s/%d", StyleNumber.Render(fmt.Sprint(segs)), target)
	switch {
	case m.Err != nil:
		b.WriteString(" " + styleIconError.Render(m.Err.Error()))
	case m.Paused:
		b.WriteString(" " + StyleWarning.Render("paused"))
	case c.Done():
		b.WriteString(" " + StyleSuccess.Render("done"))
	}
	if m.Debug {
		b.WriteString(" " + StyleDim.Render("[ink]"))
	}
	b.WriteString("\n")

	ind := c.Indicators()
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d pegs · error avg %d · mse %d · var %d · %s",
		ind.PegCount, ind.ErrorAverage, ind.ErrorMeanSquare, ind.ErrorVariance,
		m.computeTime.Round(time.Millisecond))))
	b.WriteString("\n\n")

	b.WriteString(m.preview)
	b.WriteString("\n")

	keys := []string{"space pause", "+/- target", "r restart", "g pegs", "d ink", "s save", "q quit"}
	for i, k := range keys {
		if i > 0 {
			b.WriteString(StyleDim.Render("  "))
		}
		key, desc, _ := strings.Cut(k, " ")
		b.WriteString(watchKeyStyle.Render(key) + " " + StyleDim.Render(desc))
	}
	if m.Status != "" {
		b.WriteString("\n" + StyleDim.Render(m.Status))
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func progressBar(done, total, width int) string {
	filled := width
	if total > 0 {
		filled = min(width*done/total, width)
	}
	return watchBarFull.Render(strings.Repeat("█", filled)) +
		watchBarEmpty.Render(strings.Repeat("░", width-filled))
}

// halfBlocks draws img with one "▀" per two vertical pixels: the foreground
// is the upper pixel, the background the lower one.
func halfBlocks(img image.Image) string {
	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexColor(img.At(x, y))
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = hexColor(img.At(x, y+1))
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		if y+2 < bounds.Max.Y {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
