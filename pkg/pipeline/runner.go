package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadart/pkg/cache"
	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/errors"
	threadio "github.com/matzehuels/threadart/pkg/io"
	"github.com/matzehuels/threadart/pkg/observability"
	"github.com/matzehuels/threadart/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ThreadTTL overrides TTLThread when positive.
	ThreadTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteFile runs the pipeline on the image stored at path.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Execute(ctx, data, filepath.Base(path), opts)
}

// Execute runs the complete load → compute → render pipeline with caching.
// name is the file name of the image, used to recognize SVG sources.
func (r *Runner) Execute(ctx context.Context, data []byte, name string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{ImageHash: cache.Hash(data)}

	// Stage 1: Load
	loadStart := time.Now()
	img, err := source.Decode(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Debug("decoded image", "name", name, "size", img.Bounds().Size(), "duration", result.Stats.LoadTime)

	// Stage 2: Compute
	computeStart := time.Now()
	c, hit, err := r.ComputeWithCacheInfo(ctx, img, result.ImageHash, opts)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	result.Computer = c
	result.Document = threadio.FromComputer(c)
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.PegCount = c.Layout().Len()
	result.Stats.Segments = c.SegmentCount()
	result.Stats.Error = c.Error()
	result.CacheInfo.ThreadHit = hit

	r.Logger.Info("computed thread",
		"pegs", result.Stats.PegCount,
		"segments", result.Stats.Segments,
		"cached", hit,
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, threadHash, renderHit, err := r.RenderWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.ThreadHash = threadHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Compute grows a thread for img in slices of the frame budget, checking
// ctx between slices.
func (r *Runner) Compute(ctx context.Context, img image.Image, opts Options) (*compute.Computer, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	c, err := compute.New(img, opts.Params.ComputeOptions(opts.Logger))
	if err != nil {
		return nil, err
	}
	c.SetTarget(opts.Params.Lines)

	hooks := observability.Pipeline()
	mode := opts.Params.Mode.String()
	start := time.Now()
	hooks.OnComputeStart(ctx, mode, c.Target())

	err = r.advance(ctx, c, opts)
	hooks.OnComputeComplete(ctx, mode, c.SegmentCount(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Runner) advance(ctx context.Context, c *compute.Computer, opts Options) error {
	budget := opts.Params.FrameBudget()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := c.Advance(budget)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		observability.Pipeline().OnComputeProgress(ctx, c.SegmentCount(), c.Target())
		if opts.Progress != nil {
			opts.Progress(c.SegmentCount(), c.Target())
		}
	}
}

// ComputeWithCacheInfo computes a thread with caching and returns cache hit
// info. imageHash identifies the source image.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, img image.Image, imageHash string, opts Options) (*compute.Computer, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.ThreadKey(imageHash, opts.ThreadKeyOpts())

	if !opts.Refresh {
		if c, ok := r.restore(ctx, img, cacheKey, opts); ok {
			observability.Cache().OnCacheHit(ctx, "thread")
			return c, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "thread")
	}

	c, err := r.Compute(ctx, img, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := threadio.Export(threadio.FromComputer(c)); err == nil {
		ttl := TTLThread
		if r.ThreadTTL > 0 {
			ttl = r.ThreadTTL
		}
		if err := r.Cache.Set(ctx, cacheKey, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "thread", len(data))
		}
	}
	return c, false, nil
}

// restore rebuilds a session from a cached document. Any failure is a miss.
func (r *Runner) restore(ctx context.Context, img image.Image, key string, opts Options) (*compute.Computer, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	doc, err := threadio.Import(data)
	if err != nil {
		r.Logger.Debug("discarding cached thread", "err", err)
		return nil, false
	}
	copts := doc.Options()
	copts.Logger = opts.Logger
	c, err := compute.New(img, copts)
	if err != nil {
		return nil, false
	}
	if err := doc.Apply(c); err != nil {
		r.Logger.Debug("discarding cached thread", "err", err)
		return nil, false
	}
	return c, true
}

// RenderWithCacheInfo generates artifacts with caching. It returns the
// thread hash the artifacts are keyed by and whether all of them were
// cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *compute.Computer, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	key, err := threadio.FromComputer(c).Key()
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize thread for cache key: %w", err)
	}
	threadHash := cache.Hash(key)

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(threadHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, threadHash, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(c, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(threadHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, threadHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
