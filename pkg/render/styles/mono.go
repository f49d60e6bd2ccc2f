package styles

import (
	"bytes"
	"fmt"
)

// Mono is a black-and-white style for print. Moved items are drawn dashed
// and links ignore strain.
type Mono struct{}

const monoCSS = `
    .needle { fill: none; stroke: #000; stroke-width: 0.2; }
    .loop { fill: #fff; stroke: #000; stroke-width: 0.3; }
    .pinch { fill: #000; }
    .hook, .tip { fill: #000; }
    .moved { stroke-dasharray: 0.6 0.4; }
    .link { fill: none; stroke-width: 0.4; }
    .tile { fill: #fff; stroke: #000; stroke-width: 0.15; }
    .label { font-family: monospace; fill: #000; text-anchor: middle; dominant-baseline: central; }`

func (Mono) Name() string { return "mono" }

func (Mono) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", monoCSS)
}

func (Mono) RenderNeedle(buf *bytes.Buffer, n Needle) {
	fmt.Fprintf(buf, `  <rect id="needle-%s" class="needle" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		EscapeXML(n.ID), n.X, n.Y, n.W, n.H)
}

func (Mono) RenderItem(buf *bytes.Buffer, it Item) { renderItem(buf, it) }
func (Mono) RenderLink(buf *bytes.Buffer, l Link)   { renderLink(buf, l, "#000") }
func (Mono) RenderTile(buf *bytes.Buffer, t Tile)   { renderTile(buf, t) }
func (Mono) RenderText(buf *bytes.Buffer, x, y float64, text string) {
	renderText(buf, x, y, 2, text)
}
