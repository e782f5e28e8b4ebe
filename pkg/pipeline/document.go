package pipeline

import (
	"image"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/errors"
	threadio "github.com/matzehuels/threadart/pkg/io"
)

// FromDocument rebuilds a session from a document without its source
// image. The thread is replayed onto a blank raster of the recorded size,
// so the layout and thread are exact but error figures are not meaningful.
// Use it to render or print instructions for a saved thread.
func FromDocument(doc *threadio.Document, logger *log.Logger) (*compute.Computer, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	blank := image.NewRGBA(image.Rect(0, 0, doc.Raster.Width, doc.Raster.Height))
	opts := doc.Options()
	opts.Logger = logger

	c, err := compute.New(blank, opts)
	if err != nil {
		return nil, err
	}
	if got := c.RasterSize(); int(got.Width) != doc.Raster.Width || int(got.Height) != doc.Raster.Height {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"raster %dx%d does not match quality %d", doc.Raster.Width, doc.Raster.Height, doc.Quality)
	}
	if err := doc.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}
