package knit

import (
	"fmt"
	"slices"
)

// Machine holds every needle, item, link and slack of one simulation.
// It is not safe for concurrent use.
type Machine struct {
	items   []item
	links   []link
	slacks  []Slack
	needles []needle
	byKey   map[NeedleKey]int
	racking int
	serial  int

	maxRacking      int
	degeneratePinch bool
}

type needle struct {
	key  NeedleKey
	base ItemID
	hook ItemID
	tip  ItemID
}

// regionStart returns the marker below the region.
func (n needle) regionStart(slider bool) ItemID {
	if slider {
		return n.hook
	}
	return n.base
}

// regionEnd returns the marker closing the region from above.
func (n needle) regionEnd(slider bool) ItemID {
	if slider {
		return n.tip
	}
	return n.hook
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxRacking bounds the absolute racking a transfer or rack may request.
// Zero leaves racking unbounded.
func WithMaxRacking(n int) Option {
	return func(m *Machine) { m.maxRacking = n }
}

// WithDegeneratePinch makes transfers pinch links whose two ends both sit on
// the source or destination needle. By default such zero-width crossings are
// treated as matched and left alone.
func WithDegeneratePinch() Option {
	return func(m *Machine) { m.degeneratePinch = true }
}

// New creates an empty machine at neutral racking.
func New(opts ...Option) *Machine {
	m := &Machine{byKey: make(map[NeedleKey]int)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxRacking returns the configured racking bound (zero when unbounded).
func (m *Machine) MaxRacking() int { return m.maxRacking }

// Racking returns the current lateral offset between the beds.
func (m *Machine) Racking() int { return m.racking }

// SetRacking changes the bed offset. It fails with ErrRackingLimit when the
// value exceeds the configured bound.
func (m *Machine) SetRacking(r int) error {
	if err := m.checkRacking(r); err != nil {
		return err
	}
	m.racking = r
	return nil
}

func (m *Machine) checkRacking(r int) error {
	if m.maxRacking > 0 && (r > m.maxRacking || r < -m.maxRacking) {
		return fmt.Errorf("%w: %d (max %d)", ErrRackingLimit, r, m.maxRacking)
	}
	return nil
}

// ensureNeedle returns the needle index for k, creating the needle and its
// markers on first reference.
func (m *Machine) ensureNeedle(k NeedleKey) int {
	if n, ok := m.byKey[k]; ok {
		return n
	}
	n := len(m.needles)
	nd := needle{
		key:  k,
		base: m.newItem(KindBase),
		hook: m.newItem(KindHook),
		tip:  m.newItem(KindTip),
	}
	m.needles = append(m.needles, nd)
	m.byKey[k] = n

	m.items[nd.base].needle = n
	m.items[nd.base].next = nd.hook
	m.items[nd.hook].needle = n
	m.items[nd.hook].prev = nd.base
	m.items[nd.hook].next = nd.tip
	m.items[nd.tip].needle = n
	m.items[nd.tip].prev = nd.hook
	return n
}

// AddNeedle makes sure the needle exists, creating its markers if needed.
func (m *Machine) AddNeedle(k NeedleKey) {
	m.ensureNeedle(k)
}

// HasNeedle reports whether the needle has been referenced.
func (m *Machine) HasNeedle(k NeedleKey) bool {
	_, ok := m.byKey[k]
	return ok
}

// Needles returns every referenced needle, front bed first, by index.
func (m *Machine) Needles() []NeedleKey {
	keys := make([]NeedleKey, 0, len(m.needles))
	for _, n := range m.needles {
		keys = append(keys, n.key)
	}
	slices.SortFunc(keys, func(a, b NeedleKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return keys
}

// Stack returns every item on the needle from base to tip, markers included.
// It returns nil for a needle that has never been referenced.
func (m *Machine) Stack(k NeedleKey) []ItemID {
	n, ok := m.byKey[k]
	if !ok {
		return nil
	}
	var ids []ItemID
	for id := m.needles[n].base; id != NoItem; id = m.items[id].next {
		ids = append(ids, id)
	}
	return ids
}

// Region returns the loops and pinches of one needle region, bottom first.
func (m *Machine) Region(ref NeedleRef) []ItemID {
	n, ok := m.byKey[ref.Key()]
	if !ok {
		return nil
	}
	return m.region(n, ref.Slider)
}

func (m *Machine) region(n int, slider bool) []ItemID {
	nd := m.needles[n]
	end := nd.regionEnd(slider)
	var ids []ItemID
	for id := m.items[nd.regionStart(slider)].next; id != end; id = m.items[id].next {
		ids = append(ids, id)
	}
	return ids
}

func (m *Machine) regionEmpty(n int, slider bool) bool {
	nd := m.needles[n]
	return m.items[nd.regionStart(slider)].next == nd.regionEnd(slider)
}

// top returns the topmost item of a region, or NoItem when it is empty.
func (m *Machine) top(n int, slider bool) ItemID {
	nd := m.needles[n]
	id := m.items[nd.regionEnd(slider)].prev
	if id == nd.regionStart(slider) {
		return NoItem
	}
	return id
}

// ClearMarks resets the "just moved" flag on every item.
func (m *Machine) ClearMarks() {
	for i := range m.items {
		m.items[i].moved = false
	}
}

// Count returns how many attached items of the given kind the machine holds.
func (m *Machine) Count(k Kind) int {
	c := 0
	for i := range m.items {
		if m.items[i].kind == k && m.items[i].needle >= 0 {
			c++
		}
	}
	return c
}

// Loops returns the attached loop items in creation order.
func (m *Machine) Loops() []ItemID {
	var ids []ItemID
	for i := range m.items {
		if m.items[i].kind == KindLoop && m.items[i].needle >= 0 {
			ids = append(ids, ItemID(i))
		}
	}
	return ids
}
