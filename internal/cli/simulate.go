package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/knitstack/pkg/pipeline"
	"github.com/matzehuels/knitstack/pkg/playback"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		flags  optionFlags
		caches cacheFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [script|-]",
		Short: "Run a transfer script and list the recorded steps",
		Long: `Run a transfer script and list the recorded steps.

Every script line becomes one step. When a line fails the steps before it
are still listed and the command exits with the line's error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runSimulate(cmd.Context(), cmd.OutOrStdout(), opts, caches, asJSON, args[0])
		},
	}

	flags.registerSimulate(cmd)
	caches.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the recorded steps as JSON")

	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, w io.Writer, opts pipeline.Options, caches cacheFlags, asJSON bool, path string) error {
	runner, err := c.newRunner(ctx, caches)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	h, _, hit, simErr := runner.SimulateWithCacheInfo(ctx, opts)
	if h == nil {
		return scriptError(simErr)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(h.Steps()); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, stepsTable(h))
		printStats(h.Len(), 0, hit)
	}

	if simErr != nil {
		return scriptError(simErr)
	}
	prog.done(fmt.Sprintf("Simulated %d steps", h.Len()))
	if !asJSON && path != "-" {
		printNextStep("Step through it", appName+" play "+path)
	}
	return nil
}

// stepsTable renders one row per step. Moved items are highlighted in the
// needle column.
func stepsTable(h *playback.History) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, h.Len())
	for _, st := range h.Steps() {
		rows = append(rows, []string{
			strconv.Itoa(st.Index),
			strconv.Itoa(st.Line),
			st.Label,
			strconv.Itoa(st.Snapshot.Racking),
			needleSummary(st),
			orDash(strings.Join(st.Active, " ")),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Step", "Line", "Label", "Rack", "Needles", "Carriers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || col == 1 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// needleSummary lists the occupied needles with their stack descriptors.
func needleSummary(st playback.Step) string {
	var parts []string
	for _, n := range st.Snapshot.Needles {
		if n.Stack == "<" {
			continue
		}
		parts = append(parts, n.Needle+" "+n.Stack)
	}
	return orDash(strings.Join(parts, "  "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
