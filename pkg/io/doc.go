// Package io provides JSON import and export of computed threads.
//
// # Overview
//
// A thread document records everything needed to reproduce a computed
// thread without running the selector again: the session options, the peg
// layout in raster space and the peg sequence of every channel. Documents
// are used to:
//
//   - Save a computation and render it later in another format
//   - Cache finished threads (see package cache)
//   - Hand peg sequences to external tools, such as plotters or looms
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "mode": "monochrome",
//	  "shape": "ellipse",
//	  "peg_spacing": 10,
//	  "raster": {"width": 100, "height": 100},
//	  "quality": 1,
//	  "opacity": 0.03125,
//	  "thickness": 0.5,
//	  "invert": false,
//	  "seed": 42,
//	  "pegs": [{"x": 50, "y": 0}, ...],
//	  "threads": [{"color": "monochrome", "pegs": [0, 37, 5, ...]}],
//	  "indicators": {"peg_count": 157, "segment_count": 2500, ...}
//	}
//
// Monochrome documents hold one thread, color documents three (red, green,
// blue in that order). Peg indices refer to the pegs array.
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate the structure (version, channel
// order, peg indices). Replaying the sequences onto a session is done with
// [Document.Apply], which also checks that the recorded layout matches the
// one the session computed.
package io
