// Package pipeline provides the load → compute → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode the source image (raster formats or SVG)
//  2. Compute: Grow the thread in time slices until the target is reached
//  3. Render: Generate outputs (SVG, PNG, JSON document, instructions)
//
// Threads and artifacts are cached. A cached thread is replayed onto a
// fresh raster, which is much cheaper than selecting the segments again.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Params:  config.DefaultParameters(),
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.ExecuteFile(ctx, "portrait.jpg", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadart/pkg/cache"
	"github.com/matzehuels/threadart/pkg/config"
	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/errors"
	threadio "github.com/matzehuels/threadart/pkg/io"
)

const (
	// DefaultPNGSize is the longest side of PNG outputs in pixels.
	DefaultPNGSize = 1000

	// MaxPNGSize bounds PNG outputs.
	MaxPNGSize = 8000

	// TTLThread is how long computed threads stay cached.
	TTLThread = 30 * 24 * time.Hour

	// TTLArtifact is how long rendered outputs stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatTXT  = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatTXT:  true,
}

// ContentTypes maps formats to their MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
	FormatTXT:  "text/plain; charset=utf-8",
}

// Options contains all configuration for one pipeline run.
type Options struct {
	Params  config.Parameters `json:"params"`
	Display config.Display    `json:"display"`
	Formats []string          `json:"formats,omitempty"`
	PNGSize int               `json:"png_size,omitempty"`
	Refresh bool              `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// Progress is called after every compute slice.
	Progress func(segments, target int) `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Computer holds the finished session.
	Computer *compute.Computer

	// Document is the serializable form of the thread.
	Document *threadio.Document

	// ImageHash is the content hash of the source image.
	ImageHash string

	// ThreadHash is the content hash of the thread document.
	ThreadHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PegCount    int
	Segments    int
	Error       compute.ErrorMeasure
	LoadTime    time.Duration
	ComputeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ThreadHit bool // Whether the thread came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Params.SetDefaults()
	o.Display.SetDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGSize == 0 {
		o.PNGSize = DefaultPNGSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := o.Params.Validate(); err != nil {
		return err
	}
	if err := o.Display.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.PNGSize < 1 || o.PNGSize > MaxPNGSize {
		return errors.New(errors.ErrCodeInvalidInput, "png size must be between 1 and %d, got %d", MaxPNGSize, o.PNGSize)
	}
	o.validated = true
	return nil
}

// ThreadKeyOpts returns cache key options for thread computation.
func (o *Options) ThreadKeyOpts() cache.ThreadKeyOpts {
	return cache.ThreadKeyOpts{
		Shape:      o.Params.Shape.String(),
		PegSpacing: o.Params.PegSpacing(),
		Quality:    o.Params.Quality,
		Mode:       o.Params.Mode.String(),
		Opacity:    o.Params.Opacity(),
		Thickness:  o.Params.Thickness,
		Invert:     o.Params.Invert,
		Seed:       o.Params.Seed,
		Lines:      o.Params.Lines,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG:
		k.ShowPegs = o.Display.ShowPegs
		k.PegColor = o.Display.PegColor
		k.Blur = o.Display.Blur
		k.Capability = o.Display.Capability.String()
	}
	if format == FormatPNG {
		k.Format = fmt.Sprintf("%s@%d", format, o.PNGSize)
	}
	return k
}
