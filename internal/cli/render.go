package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/pipeline"
)

// renderCommand creates the render command for generating step images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  optionFlags
		caches cacheFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [script|-]",
		Short: "Render script steps to SVG, PNG, PDF, JSON or Graphviz",
		Long: `Render script steps to SVG, PNG, PDF, JSON or Graphviz.

By default the last step is rendered as SVG. Select steps with --step (negative
indices count from the end) or --all. Each step and format is written to
<output>/<name>.<step>.<ext>, where name is the script file name without its
extension.

Options can be loaded from a TOML or YAML file with --config; flags given on
the command line override the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, caches, output, baseName(args[0]))
		},
	}

	flags.registerSimulate(cmd)
	flags.registerLayout(cmd)
	flags.registerRender(cmd)
	caches.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, caches cacheFlags, dir, base string) error {
	runner, err := c.newRunner(ctx, caches)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		if result != nil && result.History != nil {
			printWarning("stopped after %d steps", result.History.Len())
		}
		return scriptError(err)
	}

	printStats(result.Stats.Steps, len(result.Frames), result.CacheInfo.HistoryHit && result.CacheInfo.RenderHit)
	paths, err := writeArtifacts(dir, base, result.Artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(paths)))
	return nil
}

// writeArtifacts writes each artifact to dir and returns the paths written.
func writeArtifacts(dir, base string, artifacts []pipeline.Artifact) ([]string, error) {
	if err := kerrors.ValidatePath(base); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := artifactPath(dir, base, a)
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// artifactPath builds <dir>/<base>.<step>.<ext> with a zero-padded step.
func artifactPath(dir, base string, a pipeline.Artifact) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%03d.%s", base, a.Step, pipeline.Extension(a.Format)))
}

// baseName derives the output file stem from the script path.
func baseName(path string) string {
	if path == "-" {
		return "stdin"
	}
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
