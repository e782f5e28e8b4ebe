// Package config holds the user facing parameters of threadart and the
// settings of its cache and HTTP server.
//
// Parameters are expressed the way a user thinks about them (peg density,
// opacity level) and converted to the session options of package compute
// with [Parameters.ComputeOptions]. A configuration file is TOML:
//
//	[thread]
//	shape = "ellipse"
//	peg_density = 0.6
//	lines = 3000
//
//	[render]
//	show_pegs = false
//	blur = 2
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/core/pegs"
	"github.com/matzehuels/threadart/pkg/core/thread"
	"github.com/matzehuels/threadart/pkg/errors"
	"github.com/matzehuels/threadart/pkg/render"
)

const (
	DefaultPegDensity   = 0.6
	DefaultLines        = 2500
	DefaultOpacityLevel = 2
	DefaultThickness    = 0.5
	DefaultQuality      = 1
	DefaultSeed         = uint64(42)

	// DefaultFrameBudget is the time one Advance slice may take.
	DefaultFrameBudget = 20 * time.Millisecond

	MaxLines        = 15000
	MaxQuality      = 3
	MaxOpacityLevel = 5
	MaxBlur         = 20
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheNone  = "none"
	CacheRedis = "redis"
	CacheMongo = "mongo"
)

// Parameters drive one thread computation.
type Parameters struct {
	Shape         pegs.Shape  `json:"shape" toml:"shape"`
	PegDensity    float64     `json:"peg_density" toml:"peg_density"` // (0,1]
	Quality       int         `json:"quality" toml:"quality"`
	Mode          thread.Mode `json:"mode" toml:"mode"`
	Lines         int         `json:"lines" toml:"lines"`
	OpacityLevel  int         `json:"opacity_level" toml:"opacity_level"`
	Thickness     float64     `json:"thickness" toml:"thickness"`
	Invert        bool        `json:"invert_colors" toml:"invert_colors"`
	Seed          uint64      `json:"seed" toml:"seed"`
	FrameBudgetMS int         `json:"frame_budget_ms" toml:"frame_budget_ms"`
}

// Display controls how a computed thread is rendered.
type Display struct {
	ShowPegs   bool              `json:"show_pegs" toml:"show_pegs"`
	PegColor   string            `json:"peg_color" toml:"peg_color"`
	Blur       float64           `json:"blur" toml:"blur"`
	Capability render.Capability `json:"capability" toml:"capability"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	TTL      time.Duration `toml:"ttl"`
	Redis    string        `toml:"redis_addr"`
	MongoURI string        `toml:"mongo_uri"`
	MongoDB  string        `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `toml:"addr"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	ComputeTimeout time.Duration `toml:"compute_timeout"`
	MaxUploadBytes int64         `toml:"max_upload_bytes"`
}

// Config is the content of a configuration file.
type Config struct {
	Thread Parameters `toml:"thread"`
	Render Display    `toml:"render"`
	Cache  Cache      `toml:"cache"`
	Server Server     `toml:"server"`
}

// Default returns a configuration with every default applied. Values that
// are only meaningful when set (show_pegs) are filled here rather than by
// SetDefaults.
func Default() Config {
	c := Config{Render: Display{ShowPegs: true}}
	c.SetDefaults()
	return c
}

// DefaultParameters returns the default thread parameters.
func DefaultParameters() Parameters {
	return Default().Thread
}

// Load reads a TOML configuration on top of the defaults. Keys absent from
// the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetDefaults fills zero values in every section.
func (c *Config) SetDefaults() {
	c.Thread.SetDefaults()
	c.Render.SetDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.MongoDB == "" {
		c.Cache.MongoDB = "threadart"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.ComputeTimeout == 0 {
		c.Server.ComputeTimeout = 2 * time.Minute
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 16 << 20
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Thread.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Redis == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend redis needs redis_addr")
		}
	case CacheMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, none, redis or mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl cannot be negative")
	}
	if c.Server.MaxUploadBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_upload_bytes cannot be negative")
	}
	return nil
}

// SetDefaults fills zero values.
func (p *Parameters) SetDefaults() {
	if p.PegDensity == 0 {
		p.PegDensity = DefaultPegDensity
	}
	if p.Quality == 0 {
		p.Quality = DefaultQuality
	}
	if p.Lines == 0 {
		p.Lines = DefaultLines
	}
	if p.OpacityLevel == 0 {
		p.OpacityLevel = DefaultOpacityLevel
	}
	if p.Thickness == 0 {
		p.Thickness = DefaultThickness
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
	if p.FrameBudgetMS == 0 {
		p.FrameBudgetMS = int(DefaultFrameBudget / time.Millisecond)
	}
}

// Validate rejects out of range parameters.
func (p *Parameters) Validate() error {
	if p.Shape != pegs.Rectangle && p.Shape != pegs.Ellipse {
		return errors.New(errors.ErrCodeInvalidShape, "unknown shape %d", int(p.Shape))
	}
	if p.Mode != thread.ModeMonochrome && p.Mode != thread.ModeColors {
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %d", int(p.Mode))
	}
	if p.PegDensity <= 0 || p.PegDensity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "peg_density must be in (0,1], got %g", p.PegDensity)
	}
	if err := errors.ValidateRange("quality", float64(p.Quality), 1, MaxQuality); err != nil {
		return err
	}
	if err := errors.ValidateRange("lines", float64(p.Lines), 1, MaxLines); err != nil {
		return err
	}
	if err := errors.ValidateRange("opacity_level", float64(p.OpacityLevel), 1, MaxOpacityLevel); err != nil {
		return err
	}
	if err := errors.ValidateRange("thickness", p.Thickness, 0.05, 10); err != nil {
		return err
	}
	if p.FrameBudgetMS < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "frame_budget_ms must be positive, got %d", p.FrameBudgetMS)
	}
	return nil
}

// PegSpacing is the distance between pegs in the 1000 unit reference
// domain: density 1 gives 2 units, density 0.1 gives 20.
func (p Parameters) PegSpacing() float64 {
	return 20 * (1.1 - p.PegDensity)
}

// Opacity is the per-thread opacity, 2^(level-7).
func (p Parameters) Opacity() float64 {
	return math.Pow(2, float64(p.OpacityLevel-7))
}

// FrameBudget is the time one Advance slice may take.
func (p Parameters) FrameBudget() time.Duration {
	return time.Duration(p.FrameBudgetMS) * time.Millisecond
}

// ComputeOptions converts the parameters into session options.
func (p Parameters) ComputeOptions(logger *log.Logger) compute.Options {
	return compute.Options{
		Shape:      p.Shape,
		PegSpacing: p.PegSpacing(),
		Quality:    p.Quality,
		Mode:       p.Mode,
		Opacity:    p.Opacity(),
		Thickness:  p.Thickness,
		Invert:     p.Invert,
		Seed:       p.Seed,
		Logger:     logger,
	}
}

// SetDefaults fills zero values.
func (d *Display) SetDefaults() {
	if d.PegColor == "" {
		d.PegColor = compute.DefaultPegColor
	}
}

// Validate rejects out of range display settings.
func (d *Display) Validate() error {
	return errors.ValidateRange("blur", d.Blur, 0, MaxBlur)
}

// PlotOptions converts the display settings for a compute.Plotter.
func (d Display) PlotOptions() compute.PlotOptions {
	return compute.PlotOptions{ShowPegs: d.ShowPegs, PegColor: d.PegColor, Blur: d.Blur}
}
