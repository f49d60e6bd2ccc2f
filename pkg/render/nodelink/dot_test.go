package nodelink

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/knitstack/pkg/knit"
)

var snap = knit.Snapshot{
	Label:   "xfer f1 b1",
	Racking: 0,
	Needles: []knit.NeedleState{
		{Needle: "f0", Stack: "o<"},
		{Needle: "f1", Stack: "<"},
		{Needle: "b1", Stack: "O!<"},
		{Needle: "b3", Stack: "<o"},
	},
	Links: []string{
		"f0.0.r 0 b1.1.l",
		"b1.1.r 0 b1.0.r",
		"b1.0.l * b3.0.l",
	},
	Slacks: []float64{2.5},
}

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(snap, Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	want := []string{
		"graph G {",
		`label="xfer f1 b1 (racking 0)";`,
		`subgraph "cluster_b1" {`,
		`"b1.0" [label="b1.0", color=red, penwidth=2];`,
		`"b1.1" [label="b1.1", shape=diamond, fillcolor=lightgoldenrod, color=red, penwidth=2];`,
		`"b3.0" [label="b3.0", style="filled,dashed"];`,
		`"f0.0" -- "b1.1" [tailport=e, headport=w];`,
		`"b1.0" -- "b3.0" [tailport=w, headport=w, style=dashed];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q\n%s", w, dot)
		}
	}
	if strings.Contains(dot, `"f1.0"`) {
		t.Error("empty needle f1 has nodes")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot, err := ToDOT(snap, Options{Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	for _, w := range []string{`label="b1.1\npinch"`, `label="2.5"`} {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q", w)
		}
	}
}

func TestToDOTBadSnapshot(t *testing.T) {
	bad := knit.Snapshot{Needles: []knit.NeedleState{{Needle: "f0", Stack: "x<"}}}
	if _, err := ToDOT(bad, Options{}); !errors.Is(err, knit.ErrBadSnapshot) {
		t.Fatalf("ToDOT() error = %v, want ErrBadSnapshot", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
