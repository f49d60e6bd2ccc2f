package sink

import (
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/render"
)

// RenderPDF renders the frame as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(f layout.Frame, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(f, opts...))
}
