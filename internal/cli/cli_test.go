package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/knitstack/pkg/cache"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/pipeline"
	"github.com/matzehuels/knitstack/pkg/render/sink"
)

const demo = `;!knitout-2
;;Carriers: 1 2 3
x-start f0 3 f2 * f4
first: xfer f0 b0
rack 1
in 3
knit + f1 3
`

func writeScript(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.knitout")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,json,png", []string{"svg", "json", "png"}},
		{"spaces and empty entries", " svg, ,pdf ", []string{"svg", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"-", "stdin"},
		{"demo.knitout", "demo"},
		{"dir/rib.k", "rib"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := baseName(tt.path); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		a    pipeline.Artifact
		want string
	}{
		{pipeline.Artifact{Step: 3, Format: "svg"}, filepath.Join("out", "demo.003.svg")},
		{pipeline.Artifact{Step: 12, Format: "graph"}, filepath.Join("out", "demo.012.graph.svg")},
	}
	for _, tt := range tests {
		if got := artifactPath("out", "demo", tt.a); got != tt.want {
			t.Errorf("artifactPath(%+v) = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestReadScript(t *testing.T) {
	got, err := readScript(strings.NewReader(demo), "-")
	if err != nil || got != demo {
		t.Errorf("readScript(stdin) = %q, %v", got, err)
	}

	got, err = readScript(nil, writeScript(t, demo))
	if err != nil || got != demo {
		t.Errorf("readScript(file) = %q, %v", got, err)
	}

	_, err = readScript(nil, filepath.Join(t.TempDir(), "missing"))
	if !kerrors.Is(err, kerrors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}
}

func TestOptionsFlagsOverrideConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "opts.toml")
	data := `style = "mono"
formats = ["svg", "dot"]
carriers = ["A", "B"]

[params]
needle_spacing = 24.0
`
	if err := os.WriteFile(config, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var flags optionFlags
	cmd := &cobra.Command{Use: "test"}
	flags.registerSimulate(cmd)
	flags.registerLayout(cmd)
	flags.registerRender(cmd)
	cmd.SetContext(context.Background())
	if err := cmd.ParseFlags([]string{"-c", config, "--format", "json", "--bed-gap", "7", "-s", "0,-1"}); err != nil {
		t.Fatal(err)
	}

	opts, err := flags.options(cmd, writeScript(t, demo))
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Style != "mono" {
		t.Errorf("style = %q, want mono from file", opts.Style)
	}
	if diff := cmp.Diff([]string{"json"}, opts.Formats); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, opts.Carriers); diff != "" {
		t.Errorf("carriers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, -1}, opts.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	if opts.Params.NeedleSpacing != 24 || opts.Params.BedGap != 7 {
		t.Errorf("params = %+v", opts.Params)
	}
	if opts.Params.NeedleHeight != layout.DefaultNeedleHeight {
		t.Errorf("needle height = %v, want default", opts.Params.NeedleHeight)
	}
	if opts.Script != demo {
		t.Error("script not loaded")
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv(envRedisAddr, "")

	c, err := newCache(context.Background(), cacheFlags{noCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T", c)
	}

	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	c, err = newCache(context.Background(), cacheFlags{})
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("default cache is %T", c)
	}
	if want := filepath.Join(dir, appName); fc.Dir() != want {
		t.Errorf("cache dir = %q, want %q", fc.Dir(), want)
	}
}

func TestNewCacheRedisUnreachable(t *testing.T) {
	_, err := newCache(context.Background(), cacheFlags{redisAddr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected an error for an unreachable Redis")
	}
}

func TestScriptError(t *testing.T) {
	err := kerrors.New(kerrors.ErrCodePrecondition, "xfer f0 f1: same bed").AtLine(8)
	if got := scriptError(err).Error(); got != "line 8: xfer f0 f1: same bed" {
		t.Errorf("scriptError = %q", got)
	}
	plain := io.ErrUnexpectedEOF
	if got := scriptError(plain); got != plain {
		t.Errorf("uncoded errors must pass through, got %v", got)
	}
}

// runCLI executes the root command with args and returns its standard output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisAddr, "")

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	out, err := runCLI(t, "simulate", "--no-cache", writeScript(t, demo))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	for _, want := range []string{"init", "first", "rack 1", "knit + f1 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateCommandPartial(t *testing.T) {
	out, err := runCLI(t, "simulate", "--no-cache", writeScript(t, demo+"xfer f0 f1\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "line 8:") {
		t.Fatalf("err = %v, want a line 8 failure", err)
	}
	if !strings.Contains(out, "knit + f1 3") {
		t.Errorf("partial steps not listed:\n%s", out)
	}
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCLI(t, "layout", "--no-cache", "-s", "0", writeScript(t, demo))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	f, snap, err := sink.ReadJSON([]byte(out))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Step != 0 || snap == nil || snap.Label != "init" {
		t.Errorf("frame step %d snapshot %+v", f.Step, snap)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "render", "-f", "svg,dot", "-s", "1,-1", "-o", dir, writeScript(t, demo))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, name := range []string{"demo.001.svg", "demo.001.dot", "demo.004.svg", "demo.004.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	_, err := runCLI(t, "render", "--no-cache", "-f", "gif", "-o", t.TempDir(), writeScript(t, demo))
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("err = %v, want invalid format", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestExamples(t *testing.T) {
	for _, name := range []string{"options.toml", "options.yaml"} {
		if _, err := pipeline.LoadOptionsFile(filepath.Join("..", "..", "examples", name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for _, name := range []string{"demo.knitout", "transfer.knitout"} {
		if _, err := runCLI(t, "simulate", "--no-cache", filepath.Join("..", "..", "examples", name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
