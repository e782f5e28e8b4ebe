package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadart/pkg/core/compute"
	threadio "github.com/matzehuels/threadart/pkg/io"
	"github.com/matzehuels/threadart/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path
	formats []string // svg, png, json, txt
	pngSize int      // longest side of PNG output
	noCache bool     // bypass the thread cache
	refresh bool     // recompute even when cached
	thread  threadFlags
	display displayFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [image | thread.json]",
		Short: "Compute a thread for an image and render it",
		Long: `Compute a string-art thread for an image and write it in one or more formats.

Given a thread document (the json output of an earlier run) instead of an
image, the saved thread is rendered again without recomputing it, so the
display flags can be changed cheaply.`,
		Example: `  threadart render portrait.jpg
  threadart render portrait.jpg -f svg,png,json --mode colors -n 6000
  threadart render portrait.json -f png --png-size 3000 --pegs=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			popts, err := c.pipelineOptions(cmd, &opts.thread, &opts.display)
			if err != nil {
				return err
			}
			popts.Formats = opts.formats
			popts.PNGSize = opts.pngSize
			popts.Refresh = opts.refresh
			return c.runRender(cmd.Context(), args[0], popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, txt (comma-separated)")
	cmd.Flags().IntVar(&opts.pngSize, "png-size", pipeline.DefaultPNGSize, "longest side of PNG output in pixels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the thread cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if the thread is cached")
	opts.thread.register(cmd)
	opts.display.register(cmd)

	return cmd
}

// pipelineOptions merges the loaded config with the flags the user set.
func (c *CLI) pipelineOptions(cmd *cobra.Command, tf *threadFlags, df *displayFlags) (pipeline.Options, error) {
	params := c.Config.Thread
	if err := tf.apply(cmd, &params); err != nil {
		return pipeline.Options{}, err
	}
	display := c.Config.Render
	if df != nil {
		if err := df.apply(cmd, &display); err != nil {
			return pipeline.Options{}, err
		}
	}
	return pipeline.Options{Params: params, Display: display, Logger: c.Logger}, nil
}

func (c *CLI) runRender(ctx context.Context, input string, popts pipeline.Options, opts *renderOpts) error {
	if opts.output == "-" {
		uiOut = os.Stderr
	}
	if isDocument(input) {
		return c.rerender(ctx, input, popts, opts)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing "+filepath.Base(input))
	popts.Progress = func(segments, target int) {
		spinner.SetMessage("Computing %s (%d/%d segments)", filepath.Base(input), segments, target)
	}
	spinner.Start()
	result, err := runner.ExecuteFile(ctx, input, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Computed %s", input)
	printStats(result.Stats.PegCount, result.Stats.Segments, result.CacheInfo.ThreadHit)
	printIndicators(result.Document.Indicators)

	base := basePath(opts.output, input)
	if err := writeArtifacts(result.Artifacts, opts.formats, base, opts.output); err != nil {
		return err
	}
	if slices.Contains(opts.formats, pipeline.FormatJSON) && len(opts.formats) > 1 {
		printNextStep("Render again without recomputing", fmt.Sprintf("threadart render %s.json -f png", base))
	}
	return nil
}

// rerender renders a saved thread document.
func (c *CLI) rerender(ctx context.Context, input string, popts pipeline.Options, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	formats := slices.DeleteFunc(slices.Clone(opts.formats), func(f string) bool { return f == pipeline.FormatJSON })
	if len(formats) < len(opts.formats) {
		printWarning("Skipping json: %s already is the thread document", input)
	}
	if len(formats) == 0 {
		return nil
	}

	c2, err := loadDocument(input, popts)
	if err != nil {
		return err
	}
	popts.Formats = formats
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	printSuccess("Loaded %s", input)
	printStats(c2.Layout().Len(), c2.SegmentCount(), true)

	prog := newProgress(logger)
	artifacts, err := pipeline.Render(c2, popts)
	if err != nil {
		return err
	}
	prog.done("Rendered " + strings.Join(formats, ", "))
	return writeArtifacts(artifacts, formats, basePath(opts.output, input), opts.output)
}

// isDocument reports whether path names a thread document rather than an
// image.
func isDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// loadDocument restores the session saved in a thread document.
func loadDocument(path string, popts pipeline.Options) (*compute.Computer, error) {
	doc, err := threadio.ImportJSON(path)
	if err != nil {
		return nil, err
	}
	return pipeline.FromDocument(doc, popts.Logger)
}

// writeArtifacts writes each format to base.<format>, or a single format to
// output when given.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) error {
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := writeOutput(path, artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		if path != "-" {
			printFile(path)
		}
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" || output == "-" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing; "" and "-" mean stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
