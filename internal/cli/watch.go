package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/pipeline"
	"github.com/matzehuels/threadart/pkg/source"
)

// watchCommand grows a thread interactively.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output string
		debug  bool
		tf     threadFlags
		df     displayFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [image]",
		Short: "Grow a thread live in the terminal",
		Long: `Grow a thread frame by frame with a preview in the terminal.

Keys: space pauses, + and - change the number of segments, r restarts,
g toggles the pegs, d toggles the ink simulator view, s saves svg and json
next to the image (or to --output), q quits.

With --debug the preview starts on the ink simulator: the low resolution
raster the segments are scored against.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.pipelineOptions(cmd, &tf, &df)
			if err != nil {
				return err
			}
			input := args[0]
			img, err := source.Load(input)
			if err != nil {
				return err
			}

			// the view owns the terminal, so the session logs nowhere
			comp, err := compute.New(img, popts.Params.ComputeOptions(log.NewWithOptions(io.Discard, log.Options{})))
			if err != nil {
				return err
			}
			comp.SetTarget(popts.Params.Lines)

			m := NewWatchModel(filepath.Base(input), comp, popts.Display, popts.Params.FrameBudget())
			m.Debug = debug
			base := basePath(output, input)
			m.Save = func(comp *compute.Computer) (string, error) {
				return saveThread(comp, popts, base)
			}

			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if wm, ok := final.(WatchModel); ok {
				printStats(wm.Computer.Layout().Len(), wm.Computer.SegmentCount(), false)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "base path for saved files")
	cmd.Flags().BoolVar(&debug, "debug", false, "preview the ink simulator instead of the thread")
	tf.register(cmd)
	df.register(cmd)

	return cmd
}

// saveThread writes the svg rendering and the thread document to base.
func saveThread(comp *compute.Computer, popts pipeline.Options, base string) (string, error) {
	popts.Formats = []string{pipeline.FormatSVG, pipeline.FormatJSON}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}
	artifacts, err := pipeline.Render(comp, popts)
	if err != nil {
		return "", err
	}
	var paths []string
	for _, format := range popts.Formats {
		path := base + "." + format
		if err := writeOutput(path, artifacts[format]); err != nil {
			return "", err
		}
		paths = append(paths, path)
	}
	return fmt.Sprintf("%s (%d segments)", strings.Join(paths, ", "), comp.SegmentCount()), nil
}
