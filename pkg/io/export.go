package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/core/pegs"
	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/render"
)

// Version is the document format version written by this package.
const Version = 1

// Document is a serializable computed thread.
type Document struct {
	Version    int                `json:"version"`
	Mode       thread.Mode        `json:"mode"`
	Shape      pegs.Shape         `json:"shape"`
	PegSpacing float64            `json:"peg_spacing"`
	Raster     Size               `json:"raster"`
	Quality    int                `json:"quality"`
	Opacity    float64            `json:"opacity"`
	Thickness  float64            `json:"thickness"`
	Invert     bool               `json:"invert"`
	Seed       uint64             `json:"seed,omitempty"`
	Pegs       []Point            `json:"pegs"`
	Threads    []Thread           `json:"threads"`
	Indicators compute.Indicators `json:"indicators"`
}

// Size is a raster size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a peg position in raster space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Thread is the peg sequence of one channel.
type Thread struct {
	Color string `json:"color"`
	Pegs  []int  `json:"pegs"`
}

// FromComputer captures the current state of a session.
func FromComputer(c *compute.Computer) *Document {
	opts := c.Options()
	size := c.RasterSize()
	doc := &Document{
		Version:    Version,
		Mode:       c.Mode(),
		Shape:      opts.Shape,
		PegSpacing: opts.PegSpacing,
		Raster:     Size{Width: int(size.Width), Height: int(size.Height)},
		Quality:    opts.Quality,
		Opacity:    opts.Opacity,
		Thickness:  opts.Thickness,
		Invert:     opts.Invert,
		Seed:       opts.Seed,
		Indicators: c.Indicators(),
	}
	for _, p := range c.Layout().Points() {
		doc.Pegs = append(doc.Pegs, Point{X: p.X, Y: p.Y})
	}
	colors := channels(doc.Mode)
	for i, seq := range c.Threads() {
		doc.Threads = append(doc.Threads, Thread{Color: colors[i].String(), Pegs: seq})
	}
	return doc
}

// Options returns session options that rebuild the recorded layout. The
// logger is left for the caller to set.
func (d *Document) Options() compute.Options {
	return compute.Options{
		Shape:      d.Shape,
		PegSpacing: d.PegSpacing,
		Quality:    d.Quality,
		Mode:       d.Mode,
		Opacity:    d.Opacity,
		Thickness:  d.Thickness,
		Invert:     d.Invert,
		Seed:       d.Seed,
	}
}

// Sequences returns the peg sequences in channel order.
func (d *Document) Sequences() [][]int {
	out := make([][]int, len(d.Threads))
	for i, t := range d.Threads {
		out[i] = append([]int(nil), t.Pegs...)
	}
	return out
}

// SegmentCount returns the number of segments across all channels.
func (d *Document) SegmentCount() int {
	n := 0
	for _, t := range d.Threads {
		n += max(len(t.Pegs)-1, 0)
	}
	return n
}

// Key returns the encoding of the fields that define the thread. Indicators
// are left out, so a recomputed and a restored session share one key.
func (d *Document) Key() ([]byte, error) {
	k := *d
	k.Indicators = compute.Indicators{}
	return Export(&k)
}

// WriteJSON encodes a document as indented JSON.
func WriteJSON(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Export returns the JSON encoding of a document.
func Export(d *Document) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// ExportJSON writes a document to a JSON file at path.
func ExportJSON(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}

func channels(m thread.Mode) []render.Color {
	if m == thread.ModeColors {
		return []render.Color{render.Red, render.Green, render.Blue}
	}
	return []render.Color{render.Monochrome}
}
