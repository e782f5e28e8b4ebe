package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/threadart/pkg/core/pegs"
)

// pegsCommand lists peg positions, optionally scaled to a physical frame.
func (c *CLI) pegsCommand() *cobra.Command {
	var (
		size    float64
		noCache bool
		tf      threadFlags
	)

	cmd := &cobra.Command{
		Use:   "pegs [image | thread.json]",
		Short: "List peg positions for building the frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := c.pipelineOptions(cmd, &tf, nil)
			if err != nil {
				return err
			}
			comp, err := c.loadComputer(cmd.Context(), args[0], popts, noCache)
			if err != nil {
				return err
			}
			fmt.Println(pegTable(comp.Layout(), size))
			return nil
		},
	}

	cmd.Flags().Float64Var(&size, "size", 0, "scale positions so the longest side of the frame is this long (e.g. in mm)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the thread cache")
	tf.register(cmd)

	return cmd
}

// pegTable renders the layout as a table. A positive size rescales
// coordinates so the larger extent equals size.
func pegTable(l pegs.Layout, size float64) string {
	scale := 1.0
	if b := l.Bounds(); size > 0 && max(b.Width, b.Height) > 0 {
		scale = size / max(b.Width, b.Height)
	}

	headers := []string{"Peg", "X", "Y"}
	if l.Shape == pegs.Ellipse {
		headers = append(headers, "Angle")
	}
	rows := make([][]string, 0, l.Len())
	for i, p := range l.Pegs {
		row := []string{strconv.Itoa(i), formatCoord(p.X * scale), formatCoord(p.Y * scale)}
		if l.Shape == pegs.Ellipse {
			row = append(row, fmt.Sprintf("%.1f°", p.Angle*180/math.Pi))
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle().Align(lipgloss.Right)
		})
	return t.Render()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
