package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/knitstack/pkg/knit"
)

// Card slot geometry as fractions of the needle spacing.
const (
	nudgeFrac = 0.25 // needle slot to the gap slots beside it
	cardPad   = 0.2  // tile overhang past its outermost slots
)

// Option configures [Compute].
type Option func(*options)

type options struct {
	step  int
	label string
	cards []Card
}

// WithStep sets the step index recorded in the frame.
func WithStep(i int) Option { return func(o *options) { o.step = i } }

// WithLabel sets the label recorded in the frame.
func WithLabel(s string) Option { return func(o *options) { o.label = s } }

// WithCards adds card tiles below the beds.
func WithCards(cards []Card) Option { return func(o *options) { o.cards = cards } }

// bed holds the placement of one bed: x of needle 0, the y of the needle
// bases and the direction from base to tip.
type bed struct {
	left  float64
	baseY float64
	inY   float64
}

func (b bed) x(index int, spacing float64) float64 {
	return b.left + float64(index)*spacing
}

// Compute lays out the current state of m.
func Compute(m *knit.Machine, p Params, opts ...Option) (Frame, error) {
	if err := p.Validate(); err != nil {
		return Frame{}, fmt.Errorf("layout params: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	keys := m.Needles()
	lo, hi := 0, 0
	for i, k := range keys {
		if i == 0 || k.Index < lo {
			lo = k.Index
		}
		if i == 0 || k.Index > hi {
			hi = k.Index
		}
	}
	r := m.Racking()
	s := p.NeedleSpacing

	f := Frame{
		Step:    o.step,
		Label:   o.label,
		Racking: r,
		Width:   s * (float64(hi-lo) + math.Abs(float64(r)) + 2),
	}
	bedsHeight := 2*p.NeedleHeight + p.BedGap
	center := 0.5*f.Width - 0.5*s*float64(hi+lo)
	beds := [2]bed{
		knit.Front: {left: center - float64(r)*0.5*s, baseY: bedsHeight, inY: -1},
		knit.Back:  {left: center + float64(r)*0.5*s, baseY: 0, inY: 1},
	}

	boxes := make(map[knit.ItemID]Rect)
	for _, k := range keys {
		b := beds[k.Bed]
		x := b.x(k.Index, s)
		f.Needles = append(f.Needles, NeedleBox{
			Needle: k.String(),
			Box:    vertical(x, p.NeedleWidth, b.baseY, b.baseY+b.inY*p.NeedleHeight),
		})
		items, err := needleItems(m, k, p, b, x)
		if err != nil {
			return Frame{}, fmt.Errorf("needle %s: %w", k, err)
		}
		for _, it := range items {
			boxes[it.ID] = it.Box
		}
		f.Items = append(f.Items, items...)
	}

	f.Links, f.Slacks = linkPaths(m, boxes)

	loops := m.Loops()
	xs := make([]float64, len(loops))
	for i, id := range loops {
		xs[i] = boxes[id].CenterX()
	}
	fabricY := bedsHeight + p.UnderHeight
	for i, x := range Relax(xs, p.Repulsion(), p.Iterations) {
		f.Anchors = append(f.Anchors, Anchor{Item: loops[i], X: x, Y: fabricY})
	}

	cardTop := bedsHeight + 2*p.UnderHeight
	f.Height = cardTop
	if len(o.cards) > 0 {
		tiles, bottom, err := cardTiles(o.cards, p, beds[knit.Front], cardTop)
		if err != nil {
			return Frame{}, err
		}
		f.Tiles = tiles
		f.Height = bottom
	}
	return f, nil
}

// vertical returns a box of width w centred on x spanning y0..y1 in either
// order.
func vertical(x, w, y0, y1 float64) Rect {
	return Rect{Left: x - w/2, Top: math.Min(y0, y1), Right: x + w/2, Bottom: math.Max(y0, y1)}
}

// needleItems stacks one needle from the tip toward the base. Gaps next to
// the markers are fixed; gaps between loops and pinches shrink, possibly
// below zero, when the needle holds more than fits.
func needleItems(m *knit.Machine, k knit.NeedleKey, p Params, b bed, x float64) ([]ItemBox, error) {
	stack := m.Stack(k)
	var slider, hook []knit.Item
	var hookItem, tipItem knit.Item
	inSlider := false
	for _, id := range stack {
		it := m.Item(id)
		switch it.Kind {
		case knit.KindBase:
		case knit.KindHook:
			hookItem, inSlider = it, true
		case knit.KindTip:
			tipItem = it
		default:
			if inSlider {
				slider = append(slider, it)
			} else {
				hook = append(hook, it)
			}
		}
	}

	height := knit.HookHeight + knit.TipHeight
	flexGaps := 0
	for _, region := range [][]knit.Item{slider, hook} {
		if len(region) == 0 {
			continue
		}
		for _, it := range region {
			height += it.Kind.Height()
		}
		height += 2 * p.Gap
		flexGaps += len(region) - 1
	}
	flex := p.Gap
	if flexGaps > 0 {
		flex = math.Min(flex, (p.NeedleHeight-height)/float64(flexGaps))
	}

	st := NewStacks()
	var order []knit.Item
	push := func(it knit.Item, gap float64) {
		st.Push(it.Kind.Height(), gap, Slot{})
		order = append(order, it)
	}
	push(tipItem, 0)
	for i := len(slider) - 1; i >= 0; i-- {
		gap := flex
		if i == len(slider)-1 {
			gap = p.Gap
		}
		push(slider[i], gap)
	}
	hookGap := 0.0
	if len(slider) > 0 {
		hookGap = p.Gap
	}
	push(hookItem, hookGap)
	for i := len(hook) - 1; i >= 0; i-- {
		gap := flex
		if i == len(hook)-1 {
			gap = p.Gap
		}
		push(hook[i], gap)
	}

	offsets, err := st.Order()
	if err != nil {
		return nil, err
	}

	tipY := b.baseY + b.inY*p.NeedleHeight
	out := make([]ItemBox, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		it := order[i]
		h := it.Kind.Height()
		cy := tipY - b.inY*(offsets[i]+h/2)
		w := p.NeedleWidth
		if it.Kind == knit.KindLoop {
			w = p.LoopWidth()
		}
		out = append(out, ItemBox{
			ID:     it.ID,
			Kind:   it.Kind.String(),
			Needle: k.String(),
			Moved:  it.Moved,
			Box:    RectAt(x, cy, w, h),
		})
	}
	return out, nil
}

// linkPaths joins port positions and derives slack strain from the summed
// horizontal span of the links sharing each bucket. Each bucket's Current is
// written back to m.
func linkPaths(m *knit.Machine, boxes map[knit.ItemID]Rect) ([]LinkPath, []SlackUse) {
	links := m.Links()
	paths := make([]LinkPath, 0, len(links))
	current := make(map[knit.SlackID]float64)
	var used []knit.SlackID
	for _, l := range links {
		lp := LinkPath{
			ID:       l.ID,
			FromItem: l.A.Item,
			ToItem:   l.B.Item,
			From:     portPoint(boxes, l.A),
			To:       portPoint(boxes, l.B),
			Slack:    int(l.Slack),
		}
		if l.Slack != knit.NoSlack {
			if _, ok := current[l.Slack]; !ok {
				used = append(used, l.Slack)
			}
			current[l.Slack] += math.Abs(lp.To.X - lp.From.X)
		}
		paths = append(paths, lp)
	}

	slices.Sort(used)
	slacks := make([]SlackUse, 0, len(used))
	for _, id := range used {
		m.SetSlackCurrent(id, current[id])
		sl := m.Slack(id)
		slacks = append(slacks, SlackUse{ID: id, Length: sl.Length, Current: sl.Current})
	}
	for i, l := range links {
		if l.Slack == knit.NoSlack {
			continue
		}
		if length := m.Slack(l.Slack).Length; length > 0 {
			paths[i].Strain = current[l.Slack] / length
		}
	}
	return paths, slacks
}

func portPoint(boxes map[knit.ItemID]Rect, p knit.Port) Point {
	b := boxes[p.Item]
	x := b.Left
	if p.Side == knit.Right {
		x = b.Right
	}
	return Point{X: x, Y: b.CenterY()}
}

// cardTiles stacks cards downward from top and returns them with the lowest
// edge reached.
func cardTiles(cards []Card, p Params, front bed, top float64) ([]TileBox, float64, error) {
	st := NewStacks()
	for _, c := range cards {
		st.Push(p.CardHeight, p.CardGap, c.Slots...)
	}
	offsets, err := st.Order()
	if err != nil {
		return nil, 0, fmt.Errorf("card stacks: %w", err)
	}

	pad := cardPad * p.NeedleSpacing
	bottom := top
	tiles := make([]TileBox, 0, len(cards))
	for i, c := range cards {
		left, right := math.Inf(1), math.Inf(-1)
		for _, sl := range c.Slots {
			x := front.left + (float64(sl.Index)+nudgeFrac*float64(sl.Nudge))*p.NeedleSpacing
			left, right = math.Min(left, x), math.Max(right, x)
		}
		if len(c.Slots) == 0 {
			left, right = front.left, front.left
		}
		y := top + offsets[i]
		tiles = append(tiles, TileBox{
			Label: c.Label,
			Box:   Rect{Left: left - pad, Top: y, Right: right + pad, Bottom: y + p.CardHeight},
		})
		bottom = math.Max(bottom, y+p.CardHeight)
	}
	return tiles, bottom, nil
}
