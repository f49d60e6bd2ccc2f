package knit

import "fmt"

// XferStats summarises what a transfer did.
type XferStats struct {
	Racking  int // racking applied for the transfer
	Moved    int // loops and pinches moved, including fresh pinches
	Captured int // crossing links re-anchored through a new pinch
	Released int // pinches released on top of the destination
}

// Xfer moves every loop and pinch of the from region onto the to region of a
// needle on the opposite bed.
//
// The racking implied by the pair is applied first. An empty source region
// changes nothing else. Otherwise links that the move would drag through other
// loops are captured in pinches on the moving stack, the stack is moved
// topmost first (so it lands flipped), and pinches left on top of the
// destination are released.
//
// Precondition failures leave the machine untouched and return an error
// wrapping ErrSameBed, ErrSliderToSlider, ErrOverSlider or ErrRackingLimit.
func (m *Machine) Xfer(from, to NeedleRef) (XferStats, error) {
	if err := checkPair(from, to); err != nil {
		return XferStats{}, fmt.Errorf("xfer %s %s: %w", from, to, err)
	}

	racking := from.Index - to.Index
	if from.Bed == Back {
		racking = to.Index - from.Index
	}
	if err := m.checkRacking(racking); err != nil {
		return XferStats{}, fmt.Errorf("xfer %s %s: %w", from, to, err)
	}
	stats := XferStats{Racking: racking}

	src, ok := m.byKey[from.Key()]
	if !ok || m.regionEmpty(src, from.Slider) {
		m.racking = racking
		return stats, nil
	}
	if !from.Slider && !m.regionEmpty(src, true) {
		return XferStats{}, fmt.Errorf("xfer %s %s: %w: %s", from, to, ErrOverSlider, from.Key())
	}
	if d, ok := m.byKey[to.Key()]; ok && !to.Slider && !m.regionEmpty(d, true) {
		return XferStats{}, fmt.Errorf("xfer %s %s: %w: %s", from, to, ErrOverSlider, to.Key())
	}

	dst := m.ensureNeedle(to.Key())
	m.racking = racking

	found := m.crossings(src, dst, m.region(src, from.Slider))
	// The first crossing met on the walk lies closest to the tip, so it is
	// pinched last and ends up topmost.
	for i := len(found) - 1; i >= 0; i-- {
		m.capture(src, from, found[i])
		stats.Captured++
	}

	end := m.needles[dst].regionEnd(to.Slider)
	for id := m.top(src, from.Slider); id != NoItem; id = m.top(src, from.Slider) {
		m.Remove(id)
		m.InsertBefore(id, end)
		m.items[id].moved = true
		stats.Moved++
	}

	for id := m.top(dst, to.Slider); id != NoItem && m.items[id].kind == KindPinch; id = m.top(dst, to.Slider) {
		m.release(id)
		stats.Released++
	}
	return stats, nil
}

func checkPair(from, to NeedleRef) error {
	if from.Bed == to.Bed {
		return ErrSameBed
	}
	if from.Slider && to.Slider {
		return ErrSliderToSlider
	}
	return nil
}

// capture re-anchors a crossing link through a new pinch on top of the
// source region. The pinch's near side faces the walked arc.
func (m *Machine) capture(src int, from NeedleRef, c crossing) {
	l := m.links[c.link]
	far := l.a
	if far == c.near {
		far = l.b
	}
	slack := l.slack
	m.Disconnect(c.link)

	p := m.newItem(KindPinch)
	m.InsertBefore(p, m.needles[src].regionEnd(from.Slider))

	near := nearSide(from.Bed)
	m.mustConnect(Port{Item: p, Side: near}, c.near, slack)
	m.mustConnect(Port{Item: p, Side: near.Opposite()}, far, slack)
}

// release detaches a pinch and splices the yarn it held back into one link
// carrying the same slack.
func (m *Machine) release(id ItemID) {
	var ends []Port
	slack := NoSlack
	for _, s := range []Side{Left, Right} {
		lid := m.items[id].ports[s]
		if lid == NoLink {
			continue
		}
		l := m.links[lid]
		if slack == NoSlack {
			slack = l.slack
		}
		self := Port{Item: id, Side: s}
		other := l.a
		if other == self {
			other = l.b
		}
		m.Disconnect(lid)
		if other.Item != id {
			ends = append(ends, other)
		}
	}
	m.Remove(id)
	if len(ends) == 2 && ends[0] != ends[1] {
		m.mustConnect(ends[0], ends[1], slack)
	}
}
