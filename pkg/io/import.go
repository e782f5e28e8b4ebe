package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/errors"
)

// ReadJSON decodes and validates a document. It returns an
// INVALID_DOCUMENT error when the JSON is malformed or the content is
// inconsistent.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Import decodes a document from data.
func Import(data []byte) (*Document, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads the document stored at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Validate checks the document is self-consistent.
func (d *Document) Validate() error {
	if d.Version != Version {
		return errors.New(errors.ErrCodeInvalidDocument, "unsupported document version %d", d.Version)
	}
	if d.Raster.Width <= 0 || d.Raster.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "raster size %dx%d is empty", d.Raster.Width, d.Raster.Height)
	}
	if len(d.Pegs) < 2 {
		return errors.New(errors.ErrCodeInvalidDocument, "document has %d pegs", len(d.Pegs))
	}

	want := channels(d.Mode)
	if len(d.Threads) != len(want) {
		return errors.New(errors.ErrCodeInvalidDocument, "%s document needs %d threads, got %d", d.Mode, len(want), len(d.Threads))
	}
	for i, t := range d.Threads {
		if t.Color != want[i].String() {
			return errors.New(errors.ErrCodeInvalidDocument, "thread %d has color %q, want %q", i, t.Color, want[i])
		}
		if len(t.Pegs) == 1 {
			return errors.New(errors.ErrCodeInvalidDocument, "thread %d has a single peg", i)
		}
		for j, p := range t.Pegs {
			if p < 0 || p >= len(d.Pegs) {
				return errors.New(errors.ErrCodeInvalidDocument, "thread %d step %d references peg %d of %d", i, j, p, len(d.Pegs))
			}
		}
	}
	return nil
}

// Apply replays the document onto a session created with [Document.Options].
// The session's layout must match the recorded pegs.
func (d *Document) Apply(c *compute.Computer) error {
	points := c.Layout().Points()
	if len(points) != len(d.Pegs) {
		return errors.New(errors.ErrCodeInvalidDocument, "document has %d pegs, session layout has %d", len(d.Pegs), len(points))
	}
	for i, p := range points {
		if math.Abs(p.X-d.Pegs[i].X) > 1e-3 || math.Abs(p.Y-d.Pegs[i].Y) > 1e-3 {
			return errors.New(errors.ErrCodeInvalidDocument, "peg %d is at (%g,%g), session has (%g,%g)", i, d.Pegs[i].X, d.Pegs[i].Y, p.X, p.Y)
		}
	}
	return c.Restore(d.Sequences())
}
