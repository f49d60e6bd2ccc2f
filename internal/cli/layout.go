package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/knitstack/pkg/pipeline"
)

// layoutCommand creates the layout command for exporting frame geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  optionFlags
		caches cacheFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [script|-]",
		Short: "Compute frame geometry for script steps",
		Long: `Compute frame geometry for script steps.

The output is the same JSON that 'render -f json' writes: needle boxes, item
boxes, link paths and card tiles, plus the step snapshot. A single frame is
printed to stdout unless --output names a directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args[0])
			if err != nil {
				return err
			}
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), opts, caches, output, baseName(args[0]))
		},
	}

	flags.registerSimulate(cmd)
	flags.registerLayout(cmd)
	caches.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: stdout for one frame)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer, opts pipeline.Options, caches cacheFlags, dir, base string) error {
	runner, err := c.newRunner(ctx, caches)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return scriptError(err)
	}

	if dir == "" && len(result.Artifacts) == 1 {
		_, err := w.Write(result.Artifacts[0].Data)
		return err
	}
	if dir == "" {
		dir = "."
	}
	paths, err := writeArtifacts(dir, base, result.Artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
