package styles

import (
	"bytes"
	"fmt"
	"math"
)

// Simple draws items in flat colours and tints links by strain.
type Simple struct{}

const simpleCSS = `
    .needle { fill: #d8d8d8; stroke: #9a9a9a; stroke-width: 0.2; }
    .loop { fill: #4a90d9; stroke: #1f4f82; stroke-width: 0.2; }
    .pinch { fill: #e0a030; stroke: #8a5a10; stroke-width: 0.2; }
    .hook, .tip { fill: #555; }
    .moved { stroke: #d0021b; stroke-width: 0.5; }
    .link { fill: none; stroke-width: 0.6; stroke-linecap: round; }
    .tile { fill: #f5f0e1; stroke: #8b7d5a; stroke-width: 0.15; }
    .label { font-family: monospace; fill: #333; text-anchor: middle; dominant-baseline: central; }`

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", simpleCSS)
}

func (Simple) RenderNeedle(buf *bytes.Buffer, n Needle) {
	fmt.Fprintf(buf, `  <rect id="needle-%s" class="needle" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		EscapeXML(n.ID), n.X, n.Y, n.W, n.H)
}

func (Simple) RenderItem(buf *bytes.Buffer, it Item) {
	renderItem(buf, it)
}

func (Simple) RenderLink(buf *bytes.Buffer, l Link) {
	renderLink(buf, l, strainColor(l))
}

func (Simple) RenderTile(buf *bytes.Buffer, t Tile) {
	renderTile(buf, t)
}

func (Simple) RenderText(buf *bytes.Buffer, x, y float64, text string) {
	renderText(buf, x, y, 2, text)
}

// strainColor runs from green for a relaxed link to red at or past its
// slack length. Links without slack are drawn neutral.
func strainColor(l Link) string {
	if !l.Slack {
		return "#444"
	}
	t := math.Min(1, math.Max(0, l.Strain))
	r := int(60 + t*180)
	g := int(170 - t*130)
	return fmt.Sprintf("#%02x%02x40", r, g)
}

func renderItem(buf *bytes.Buffer, it Item) {
	class := it.Kind
	if it.Moved {
		class += " moved"
	}
	rx := 0.0
	if it.Kind == "loop" {
		rx = it.H / 2
	}
	fmt.Fprintf(buf, `  <rect id="item-%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
		EscapeXML(it.ID), class, it.X, it.Y, it.W, it.H, rx)
}

func renderLink(buf *bytes.Buffer, l Link, color string) {
	fmt.Fprintf(buf, `  <line id="link-%s" class="link" data-from="%s" data-to="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n",
		EscapeXML(l.ID), EscapeXML(l.From), EscapeXML(l.To), l.X1, l.Y1, l.X2, l.Y2, color)
}

func renderTile(buf *bytes.Buffer, t Tile) {
	fmt.Fprintf(buf, `  <rect class="tile" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n", t.X, t.Y, t.W, t.H)
	size := FontSize(t.W, t.H, t.Label)
	renderText(buf, t.X+t.W/2, t.Y+t.H/2, size, TruncateLabel(t.Label, t.W, size))
}

func renderText(buf *bytes.Buffer, x, y, size float64, text string) {
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" font-size="%.2f">%s</text>`+"\n",
		x, y, size, EscapeXML(text))
}
