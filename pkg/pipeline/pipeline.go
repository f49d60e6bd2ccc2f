// Package pipeline runs a knitout script through simulation, layout and
// rendering.
//
// The CLI and the viewer server share this package so both apply the same
// defaults, cache keys and error codes.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Simulate: parse the script and record one step per line
//  2. Layout: compute a frame for each selected step
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, DOT) per frame
//
// Frames are independent of each other, so the layout stage fans out over
// an errgroup with each worker restoring its own machine from the step
// snapshot.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Script:  text,
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts[0].Data
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/knitstack/pkg/cache"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/render/styles"
	"github.com/matzehuels/knitstack/pkg/sim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultStyle is the default visual style.
	DefaultStyle = "simple"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// LastStep selects the final recorded step.
	LastStep = -1
)

// Format constants for output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatPDF   = "pdf"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// Extension returns the file extension written for a format.
func Extension(format string) string {
	switch format {
	case FormatGraph:
		return "graph.svg"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run. Options files
// carry everything except the script itself and the runtime fields.
type Options struct {
	// Simulation
	Script          string   `json:"script,omitempty" toml:"-" yaml:"-"`
	Carriers        []string `json:"carriers,omitempty" toml:"carriers" yaml:"carriers"`
	MaxRacking      int      `json:"max_racking,omitempty" toml:"max_racking" yaml:"max_racking"`
	DegeneratePinch bool     `json:"degenerate_pinch,omitempty" toml:"degenerate_pinch" yaml:"degenerate_pinch"`
	UnwindRacking   bool     `json:"unwind_racking,omitempty" toml:"unwind_racking" yaml:"unwind_racking"`
	Refresh         bool     `json:"refresh,omitempty" toml:"-" yaml:"-"`

	// Layout
	Params   layout.Params `json:"params" toml:"params" yaml:"params"`
	Steps    []int         `json:"steps,omitempty" toml:"steps" yaml:"steps"`
	AllSteps bool          `json:"all_steps,omitempty" toml:"all_steps" yaml:"all_steps"`
	Workers  int           `json:"workers,omitempty" toml:"workers" yaml:"workers"`

	// Render
	Formats      []string `json:"formats,omitempty" toml:"formats" yaml:"formats"`
	Style        string   `json:"style,omitempty" toml:"style" yaml:"style"`
	NeedleLabels bool     `json:"needle_labels,omitempty" toml:"needle_labels" yaml:"needle_labels"`
	Title        bool     `json:"title,omitempty" toml:"title" yaml:"title"`
	Scale        float64  `json:"scale,omitempty" toml:"scale" yaml:"scale"`
	Detailed     bool     `json:"detailed,omitempty" toml:"detailed" yaml:"detailed"`

	// Logger receives stage progress; nil discards it.
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and server responses.
	RunID string

	// ScriptHash is the content hash of the script text.
	ScriptHash string

	// History holds every recorded step. After a simulation error it holds
	// the steps up to the failing line.
	History *playback.History

	// HistoryHash is the content hash of the recorded steps.
	HistoryHash string

	// Frames holds one frame per selected step, in selection order.
	Frames []layout.Frame

	// Artifacts contains rendered outputs, step-major then by format.
	Artifacts []Artifact

	Stats     Stats
	CacheInfo CacheInfo
}

// Artifact is one rendered output.
type Artifact struct {
	Step   int
	Format string
	Data   []byte
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Lines        int
	Steps        int
	SimulateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	HistoryHit bool // Whether the history came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return kerrors.New(kerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot, graph)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if _, err := styles.ByName(style); err != nil || style == "" {
		return kerrors.New(kerrors.ErrCodeInvalidOptions, "invalid style: %q (must be one of: %s)", style, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSimulate(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSimulate checks the script and simulation options.
func (o *Options) ValidateForSimulate() error {
	if err := kerrors.ValidateScript(o.Script); err != nil {
		return err
	}
	for _, c := range o.Carriers {
		if err := kerrors.ValidateCarrierName(c); err != nil {
			return err
		}
	}
	if o.MaxRacking < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidOptions, "max_racking must not be negative, got %d", o.MaxRacking)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation. A zero
// Params value is replaced by the default geometry.
func (o *Options) SetLayoutDefaults() {
	if o.Params == (layout.Params{}) {
		o.Params = layout.DefaultParams()
	}
	if len(o.Steps) == 0 && !o.AllSteps {
		o.Steps = []int{LastStep}
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Params.Validate(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidOptions, err, "layout params")
	}
	if o.Workers < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidOptions, "workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidOptions, "scale must be positive, got %v", o.Scale)
	}
	return ValidateStyle(o.Style)
}

// HistoryKeyOpts returns cache key options for the simulated history.
func (o *Options) HistoryKeyOpts() cache.HistoryKeyOpts {
	return cache.HistoryKeyOpts{
		MaxRacking:      o.MaxRacking,
		Carriers:        o.Carriers,
		DegeneratePinch: o.DegeneratePinch,
		UnwindRacking:   o.UnwindRacking,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered artifact.
func (o *Options) ArtifactKeyOpts(format string, step int) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Style:    o.Style,
		Step:     step,
		Params:   o.Params,
		Labels:   o.NeedleLabels,
		Title:    o.Title,
		Scale:    o.Scale,
		Detailed: o.Detailed,
	}
}

// Clone returns a copy that shares no slices with o and must be validated
// again.
func (o Options) Clone() Options {
	c := o
	c.Carriers = slices.Clone(o.Carriers)
	c.Steps = slices.Clone(o.Steps)
	c.Formats = slices.Clone(o.Formats)
	c.validated = false
	return c
}

func (o *Options) machineOptions() []knit.Option {
	var opts []knit.Option
	if o.MaxRacking > 0 {
		opts = append(opts, knit.WithMaxRacking(o.MaxRacking))
	}
	if o.DegeneratePinch {
		opts = append(opts, knit.WithDegeneratePinch())
	}
	return opts
}

func (o *Options) historyOptions() []playback.Option {
	if o.UnwindRacking {
		return []playback.Option{playback.WithUnwindRacking()}
	}
	return nil
}

func (o *Options) simOptions() []sim.Option {
	opts := []sim.Option{
		sim.WithLogger(o.Logger),
		sim.WithMachineOptions(o.machineOptions()...),
		sim.WithHistoryOptions(o.historyOptions()...),
	}
	if len(o.Carriers) > 0 {
		opts = append(opts, sim.WithCarriers(o.Carriers))
	}
	return opts
}

// String summarises the options for debug logs.
func (o Options) String() string {
	return fmt.Sprintf("formats=%v style=%s steps=%v all=%v", o.Formats, o.Style, o.Steps, o.AllSteps)
}
