package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadart/pkg/core/compute"
	"github.com/matzehuels/threadart/pkg/pipeline"
)

// instructionsCommand prints winding instructions for a thread.
func (c *CLI) instructionsCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		tf      threadFlags
	)

	cmd := &cobra.Command{
		Use:   "instructions [image | thread.json]",
		Short: "Print the peg sequence to wind a thread by hand",
		Long: `Print peg positions and the order in which to visit them.

Instructions exist only for black thread in monochrome mode; other threads
print an explanatory message instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.pipelineOptions(cmd, &tf, nil)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				uiOut = os.Stderr
			}
			comp, err := c.loadComputer(cmd.Context(), args[0], popts, noCache)
			if err != nil {
				return err
			}
			if err := writeOutput(output, []byte(comp.Instructions()+"\n")); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the thread cache")
	tf.register(cmd)

	return cmd
}

// loadComputer returns the session for input: restored from a thread
// document, or computed (or replayed from cache) for an image.
func (c *CLI) loadComputer(ctx context.Context, input string, popts pipeline.Options, noCache bool) (*compute.Computer, error) {
	if isDocument(input) {
		return loadDocument(input, popts)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	name := filepath.Base(input)
	spinner := newSpinnerWithContext(ctx, "Computing "+name)
	popts.Formats = []string{pipeline.FormatTXT}
	popts.Progress = func(segments, target int) {
		spinner.SetMessage("Computing %s (%d/%d segments)", name, segments, target)
	}
	spinner.Start()
	result, err := runner.ExecuteFile(ctx, input, popts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return result.Computer, nil
}
