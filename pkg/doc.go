// Package pkg provides the libraries behind threadart, a string-art thread
// generator.
//
// # Overview
//
// A string-art piece is a frame of pegs with one long thread wound between
// them. Threadart picks the order of pegs so that the accumulated thread
// approximates a source image. The pkg directory is organized into:
//
//  1. [core] - Domain logic (geometry, peg layouts, ink simulation, thread
//     strategies and the incremental computer)
//  2. [render] - Drawing backends (SVG and PNG)
//  3. [io] - The JSON thread document
//  4. [pipeline] - Orchestration (load → compute → render) with caching
//  5. [cache], [config], [source], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through threadart:
//
//	Source image (PNG, JPEG, GIF, BMP, TIFF, WebP, SVG)
//	         ↓
//	    [source] package (decode, orient, rasterize SVG)
//	         ↓
//	    [core/compute] package (pegs + raster + greedy segment selection)
//	         ↓
//	    [render] backends or [io] document
//	         ↓
//	    SVG/PNG/JSON/TXT output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.ExecuteFile(ctx, "portrait.jpg", pipeline.Options{
//	    Params:  config.DefaultParameters(),
//	    Formats: []string{"svg", "json"},
//	})
//
// [core]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/core
// [render]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/config
// [source]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/source
// [observability]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/threadart/pkg/errors
package pkg
