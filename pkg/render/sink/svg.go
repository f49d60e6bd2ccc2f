package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/render/styles"
)

const itemInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.link').forEach(l => {
        const on = l.dataset.from === id || l.dataset.to === id;
        l.style.strokeWidth = on ? 1.2 : '';
      });
    }
    document.querySelectorAll('.loop, .pinch').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('item-', '')));
      el.addEventListener('mouseleave', () => highlight(''));
    });`

// DefaultMargin is the padding around a frame in frame units.
const DefaultMargin = 4.0

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style        styles.Style
	needleLabels bool
	title        bool
	margin       float64
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithNeedleLabels() SVGOption        { return func(r *svgRenderer) { r.needleLabels = true } }
func WithTitle() SVGOption               { return func(r *svgRenderer) { r.title = true } }
func WithMargin(m float64) SVGOption     { return func(r *svgRenderer) { r.margin = m } }

// RenderSVG draws the frame. Needles are drawn first, then tiles, links and
// items so items sit on top of the yarn.
func RenderSVG(f layout.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	m := r.margin
	top := -m
	if r.title {
		top -= 2 * m
	}
	w, h := f.Width+2*m, f.Height+m-top

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		-m, top, w, h, w*10, h*10)

	r.style.RenderDefs(&buf)
	if r.title {
		r.style.RenderText(&buf, f.Width/2, top+m, fmt.Sprintf("%d: %s (racking %d)", f.Step, f.Label, f.Racking))
	}
	for _, n := range f.Needles {
		r.style.RenderNeedle(&buf, styles.Needle{
			ID: n.Needle,
			X:  n.Box.Left,
			Y:  n.Box.Top,
			W:  n.Box.Width(),
			H:  n.Box.Height(),
		})
		if r.needleLabels {
			r.style.RenderText(&buf, n.Box.CenterX(), labelY(n, m), n.Needle)
		}
	}
	for _, t := range f.Tiles {
		r.style.RenderTile(&buf, styles.Tile{
			Label: t.Label,
			X:     t.Box.Left,
			Y:     t.Box.Top,
			W:     t.Box.Width(),
			H:     t.Box.Height(),
		})
	}
	for _, l := range f.Links {
		r.style.RenderLink(&buf, styles.Link{
			ID:     strconv.Itoa(int(l.ID)),
			From:   itemID(l.FromItem),
			To:     itemID(l.ToItem),
			X1:     l.From.X,
			Y1:     l.From.Y,
			X2:     l.To.X,
			Y2:     l.To.Y,
			Slack:  l.Slack >= 0,
			Strain: l.Strain,
		})
	}
	for _, it := range f.Items {
		r.style.RenderItem(&buf, styles.Item{
			ID:    itemID(it.ID),
			Kind:  it.Kind,
			X:     it.Box.Left,
			Y:     it.Box.Top,
			W:     it.Box.Width(),
			H:     it.Box.Height(),
			Moved: it.Moved,
		})
	}
	fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", itemInteractionJS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}, margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// labelY puts back needle labels above the back bed and front needle labels
// below the front bed.
func labelY(n layout.NeedleBox, margin float64) float64 {
	if n.Box.Top == 0 {
		return -margin / 2
	}
	return n.Box.Bottom + margin/4
}

func itemID(id knit.ItemID) string { return strconv.Itoa(int(id)) }
