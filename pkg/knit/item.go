package knit

import "fmt"

// Kind tags the variant of a stack item.
type Kind uint8

const (
	KindBase Kind = iota
	KindHook
	KindTip
	KindLoop
	KindPinch
)

// Item heights in layout units.
const (
	BaseHeight  = 0.0
	HookHeight  = 2.0
	TipHeight   = 1.0
	LoopHeight  = 2.0
	PinchHeight = 1.0
)

// Height returns the physical height of items of this kind.
func (k Kind) Height() float64 {
	switch k {
	case KindHook:
		return HookHeight
	case KindTip:
		return TipHeight
	case KindLoop:
		return LoopHeight
	case KindPinch:
		return PinchHeight
	default:
		return BaseHeight
	}
}

// IsMarker reports whether the kind is one of the fixed needle markers.
func (k Kind) IsMarker() bool {
	return k == KindBase || k == KindHook || k == KindTip
}

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindHook:
		return "hook"
	case KindTip:
		return "tip"
	case KindLoop:
		return "loop"
	case KindPinch:
		return "pinch"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Side selects one of the two ports of an item.
type Side uint8

const (
	Left Side = iota
	Right
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Sign returns -1 for Left and +1 for Right.
func (s Side) Sign() float64 {
	if s == Left {
		return -1
	}
	return 1
}

// String returns "l" or "r", the spelling used by link descriptors.
func (s Side) String() string {
	if s == Left {
		return "l"
	}
	return "r"
}

// ItemID addresses an item in the machine's arena.
type ItemID int32

// NoItem is the zero reference for "no item".
const NoItem ItemID = -1

// Port is one side of one item.
type Port struct {
	Item ItemID
	Side Side
}

func (p Port) String() string {
	return fmt.Sprintf("%d.%s", p.Item, p.Side)
}

// Item is a read-only view of a stack item.
type Item struct {
	ID     ItemID
	Kind   Kind
	Serial int // creation order, used to order loops left to right
	Moved  bool
	// Attached is false once the item has been removed from every stack.
	Attached bool
	Needle   NeedleKey
	Left     LinkID
	Right    LinkID
}

// Port returns the link held on the given side.
func (it Item) Port(s Side) LinkID {
	if s == Left {
		return it.Left
	}
	return it.Right
}

type item struct {
	kind   Kind
	serial int
	moved  bool
	needle int // index into Machine.needles, -1 when detached
	prev   ItemID
	next   ItemID
	ports  [2]LinkID
}

func (m *Machine) newItem(k Kind) ItemID {
	id := ItemID(len(m.items))
	m.items = append(m.items, item{
		kind:   k,
		serial: m.serial,
		needle: -1,
		prev:   NoItem,
		next:   NoItem,
		ports:  [2]LinkID{NoLink, NoLink},
	})
	m.serial++
	return id
}

// Item returns a view of the item with the given id.
// It panics if id is out of range.
func (m *Machine) Item(id ItemID) Item {
	it := &m.items[id]
	v := Item{
		ID:       id,
		Kind:     it.kind,
		Serial:   it.serial,
		Moved:    it.moved,
		Attached: it.needle >= 0,
		Left:     it.ports[Left],
		Right:    it.ports[Right],
	}
	if it.needle >= 0 {
		v.Needle = m.needles[it.needle].key
	}
	return v
}

// Remove detaches an item from its stack without destroying it. Removing a
// detached item is a no-op. Markers cannot be removed.
func (m *Machine) Remove(id ItemID) {
	it := &m.items[id]
	if it.kind.IsMarker() {
		panic(fmt.Sprintf("knit: cannot remove %s marker %d", it.kind, id))
	}
	if it.needle < 0 {
		return
	}
	if it.prev != NoItem {
		m.items[it.prev].next = it.next
	}
	if it.next != NoItem {
		m.items[it.next].prev = it.prev
	}
	it.prev, it.next, it.needle = NoItem, NoItem, -1
}

// InsertBefore attaches a detached item directly below at, on at's needle.
// Inserting an attached item is a programming error and panics.
func (m *Machine) InsertBefore(id, at ItemID) {
	m.insertBetween(id, m.items[at].prev, at)
}

// InsertAfter attaches a detached item directly above at, on at's needle.
// Inserting an attached item is a programming error and panics.
func (m *Machine) InsertAfter(id, at ItemID) {
	m.insertBetween(id, at, m.items[at].next)
}

func (m *Machine) insertBetween(id, prev, next ItemID) {
	it := &m.items[id]
	if it.needle >= 0 || it.prev != NoItem || it.next != NoItem {
		panic(fmt.Sprintf("knit: item %d is already on a stack", id))
	}
	anchor := prev
	if anchor == NoItem {
		anchor = next
	}
	if anchor == NoItem || m.items[anchor].needle < 0 {
		panic(fmt.Sprintf("knit: insertion point for item %d is not on a stack", id))
	}
	it.prev, it.next = prev, next
	it.needle = m.items[anchor].needle
	if prev != NoItem {
		m.items[prev].next = id
	}
	if next != NoItem {
		m.items[next].prev = id
	}
}

// MakeLoop creates a loop on top of the region addressed by ref, creating the
// needle if needed.
func (m *Machine) MakeLoop(ref NeedleRef) ItemID {
	return m.makeItem(KindLoop, ref)
}

// MakePinch creates a pinch on top of the region addressed by ref, creating
// the needle if needed.
func (m *Machine) MakePinch(ref NeedleRef) ItemID {
	return m.makeItem(KindPinch, ref)
}

func (m *Machine) makeItem(k Kind, ref NeedleRef) ItemID {
	n := m.ensureNeedle(ref.Key())
	id := m.newItem(k)
	m.InsertBefore(id, m.needles[n].regionEnd(ref.Slider))
	return id
}
