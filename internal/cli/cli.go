package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/knitstack/pkg/buildinfo"
	"github.com/matzehuels/knitstack/pkg/cache"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "knitstack"

	// envRedisAddr selects the Redis cache when --redis-addr is not given.
	envRedisAddr = "KNITSTACK_REDIS_ADDR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Knitstack simulates loop topology on a knitting machine",
		Long:         `Knitstack steps through knitout-style transfer scripts, tracking loops, pinches and yarn links on a two-bed needle machine, and renders every step as a frame.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend of a command.
type cacheFlags struct {
	noCache   bool
	redisAddr string
	redisDB   int
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", "", "use a Redis cache at host:port (env "+envRedisAddr+")")
	cmd.Flags().IntVar(&f.redisDB, "redis-db", 0, "Redis database number")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cache, err := newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	addr := f.redisAddr
	if addr == "" {
		addr = os.Getenv(envRedisAddr)
	}
	if addr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: addr,
			DB:   f.redisDB,
		})
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// optionFlags are the pipeline options exposed as flags. A flag only
// overrides the options file when it was set on the command line.
type optionFlags struct {
	config          string
	carriers        string
	maxRacking      int
	degeneratePinch bool
	unwind          bool
	refresh         bool

	steps         []int
	allSteps      bool
	workers       int
	needleSpacing float64
	bedGap        float64
	iterations    int

	formats  string
	style    string
	labels   bool
	title    bool
	scale    float64
	detailed bool
}

// registerSimulate adds the flags every script-reading command shares.
func (f *optionFlags) registerSimulate(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "options file (.toml, .yaml)")
	cmd.Flags().StringVar(&f.carriers, "carriers", "", "comma-separated carrier names (default from script or 1-10)")
	cmd.Flags().IntVar(&f.maxRacking, "max-racking", 0, "largest allowed racking offset (0 = unbounded)")
	cmd.Flags().BoolVar(&f.degeneratePinch, "degenerate-pinch", false, "capture pinches even when the stack has no loops")
	cmd.Flags().BoolVar(&f.unwind, "unwind", false, "return to neutral racking before wrapping to the first step")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached results")
}

// registerLayout adds step selection and geometry flags.
func (f *optionFlags) registerLayout(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&f.steps, "step", "s", nil, "step indices to export, negative counts from the end (default -1)")
	cmd.Flags().BoolVarP(&f.allSteps, "all", "a", false, "export every step")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "parallel layout workers (default GOMAXPROCS)")
	cmd.Flags().Float64Var(&f.needleSpacing, "needle-spacing", 0, "distance between neighbouring needles")
	cmd.Flags().Float64Var(&f.bedGap, "bed-gap", 0, "distance between the beds")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, "relaxation passes per frame")
}

// registerRender adds output flags.
func (f *optionFlags) registerRender(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, graph (comma-separated)")
	cmd.Flags().StringVar(&f.style, "style", "", "visual style: simple (default), mono")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "draw needle labels")
	cmd.Flags().BoolVar(&f.title, "title", false, "draw the step label")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor (default 2)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label link lengths in graph output")
}

// options loads the options file, if any, and applies the flags that were
// set. The script is read from path, "-" meaning the command's input.
func (f *optionFlags) options(cmd *cobra.Command, path string) (pipeline.Options, error) {
	opts := pipeline.Options{}
	if f.config != "" {
		var err error
		if opts, err = pipeline.LoadOptionsFile(f.config); err != nil {
			return opts, err
		}
	}

	set := cmd.Flags().Changed
	if set("carriers") {
		opts.Carriers = splitList(f.carriers)
	}
	if set("max-racking") {
		opts.MaxRacking = f.maxRacking
	}
	if set("degenerate-pinch") {
		opts.DegeneratePinch = f.degeneratePinch
	}
	if set("unwind") {
		opts.UnwindRacking = f.unwind
	}
	opts.Refresh = f.refresh

	if set("step") {
		opts.Steps = f.steps
	}
	if set("all") {
		opts.AllSteps = f.allSteps
	}
	if set("workers") {
		opts.Workers = f.workers
	}
	if set("needle-spacing") || set("bed-gap") || set("iterations") {
		opts.SetLayoutDefaults()
	}
	if set("needle-spacing") {
		opts.Params.NeedleSpacing = f.needleSpacing
	}
	if set("bed-gap") {
		opts.Params.BedGap = f.bedGap
	}
	if set("iterations") {
		opts.Params.Iterations = f.iterations
	}

	if set("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if set("style") {
		opts.Style = f.style
	}
	if set("labels") {
		opts.NeedleLabels = f.labels
	}
	if set("title") {
		opts.Title = f.title
	}
	if set("scale") {
		opts.Scale = f.scale
	}
	if set("detailed") {
		opts.Detailed = f.detailed
	}

	script, err := readScript(cmd.InOrStdin(), path)
	if err != nil {
		return opts, err
	}
	opts.Script = script
	opts.Logger = loggerFromContext(cmd.Context())
	return opts, nil
}

// readScript reads a script file, or r when path is "-".
func readScript(r io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(r, kerrors.MaxScriptSize+1))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", kerrors.Wrap(kerrors.ErrCodeNotFound, err, "read script %s", path)
	}
	return string(data), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scriptError drops the error code from coded errors for terminal output.
func scriptError(err error) error {
	if code := kerrors.GetCode(err); code != "" {
		return fmt.Errorf("%s", kerrors.UserMessage(err))
	}
	return err
}
