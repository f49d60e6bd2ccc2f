package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/knitstack/pkg/pipeline"
	"github.com/matzehuels/knitstack/pkg/server"
)

// serveCommand creates the serve command for the viewer API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		caches  cacheFlags
		addr    string
		config  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer API over HTTP",
		Long: `Serve the viewer API over HTTP.

Clients POST a script to /api/steps and its sub-routes to get the recorded
steps, a single step, its frame geometry or its SVG and Graphviz renderings.
Options loaded with --config are the defaults every request starts from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defaults := pipeline.Options{}
			if config != "" {
				var err error
				if defaults, err = pipeline.LoadOptionsFile(config); err != nil {
					return err
				}
			}

			runner, err := c.newRunner(ctx, caches)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner,
				server.WithDefaults(defaults),
				server.WithLogger(loggerFromContext(ctx)),
				server.WithRequestTimeout(timeout),
			)
			printKeyValue("Listening", StyleLink.Render("http://"+addr))
			printKeyValue("Cache", cacheLabel(caches))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	caches.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVarP(&config, "config", "c", "", "default options file (.toml, .yaml)")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")

	return cmd
}

func cacheLabel(f cacheFlags) string {
	switch {
	case f.noCache:
		return "disabled"
	case f.redisAddr != "":
		return "redis " + f.redisAddr
	default:
		return "local"
	}
}
