package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds item kinds to node labels and slack lengths to edges.
	// When false, nodes show their item reference only.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT source. Nodes are named by item
// reference ("f0.1"). Items moved by the last step are outlined in red and
// slider items are dashed.
func ToDOT(s knit.Snapshot, opts Options) (string, error) {
	m := knit.New()
	if err := m.Load(s); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s (racking %d)", s.Label, s.Racking))
	buf.WriteString("\n")

	refs := make(map[knit.ItemID]string)
	for _, k := range m.Needles() {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+k.String())
		fmt.Fprintf(&buf, "    label=%q;\n", k.String())
		ord, slider := 0, false
		for _, id := range m.Stack(k) {
			it := m.Item(id)
			switch it.Kind {
			case knit.KindHook:
				slider = true
				continue
			case knit.KindBase, knit.KindTip:
				continue
			}
			ref := k.String() + "." + strconv.Itoa(ord)
			ord++
			refs[id] = ref
			fmt.Fprintf(&buf, "    %q [%s];\n", ref, strings.Join(nodeAttrs(it, ref, slider, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, l := range m.Links() {
		attrs := []string{
			"tailport=" + compass(l.A.Side),
			"headport=" + compass(l.B.Side),
		}
		if l.Slack != knit.NoSlack {
			if opts.Detailed {
				attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(m.Slack(l.Slack).Length, 'g', -1, 64)))
			}
		} else {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", refs[l.A.Item], refs[l.B.Item], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(it knit.Item, ref string, slider, detailed bool) []string {
	label := ref
	if detailed {
		label = ref + "\n" + it.Kind.String()
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if it.Kind == knit.KindPinch {
		attrs = append(attrs, "shape=diamond", "fillcolor=lightgoldenrod")
	}
	if slider {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	if it.Moved {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

func compass(s knit.Side) string {
	if s == knit.Left {
		return "w"
	}
	return "e"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
