// Package render defines the contract between the thread computer and the
// backends that turn peg sequences into visible output.
//
// # Overview
//
// The computer never paints pixels itself. It drives a [Renderer] through a
// redraw pass:
//
//	r.Resize()
//	r.Initialize(render.Info{Background: "white"})
//	r.DrawPoints(pegs, "red", diameter)
//	r.DrawConnectedPoints(points, render.Monochrome, opacity, render.Darken, width)
//	r.Finalize()
//
// Backends live in subpackages:
//
//   - [github.com/matzehuels/threadart/pkg/render/svg]: vector document
//   - [github.com/matzehuels/threadart/pkg/render/raster]: PNG image
//
// # Compositing
//
// Thread ink is composited, never painted. [Lighten] adds light (used for
// light thread on a dark background), [Darken] subtracts it with a
// difference blend (dark thread on a light background).
//
// Backends that cannot blend this way fall back to plain alpha blending.
// The choice is an explicit [Capability] passed to the backend constructor.
package render
