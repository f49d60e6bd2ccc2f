package knit

import "fmt"

// LinkID addresses a link in the machine's arena.
type LinkID int32

// NoLink marks an unconnected port.
const NoLink LinkID = -1

// SlackID addresses a slack bucket.
type SlackID int32

// NoSlack marks a link without a slack budget.
const NoSlack SlackID = -1

// Link is a run of yarn between two ports.
type Link struct {
	ID    LinkID
	A     Port
	B     Port
	Slack SlackID
}

// Other returns the end of the link opposite p.
func (l Link) Other(p Port) Port {
	if l.A == p {
		return l.B
	}
	return l.A
}

// Slack is an elastic length budget shared by one or more links.
//
// Current is the yarn the sharing links take up, refreshed by each layout
// pass. Snapshots keep only Length.
type Slack struct {
	Length  float64
	Current float64
}

type link struct {
	a, b  Port
	slack SlackID
	alive bool
}

// NewSlack creates a slack bucket of the given length.
func (m *Machine) NewSlack(length float64) SlackID {
	m.slacks = append(m.slacks, Slack{Length: length})
	return SlackID(len(m.slacks) - 1)
}

// Slack returns the slack bucket with the given id.
func (m *Machine) Slack(id SlackID) Slack {
	return m.slacks[id]
}

// SetSlackCurrent records the length the links sharing a bucket take up.
func (m *Machine) SetSlackCurrent(id SlackID, current float64) {
	m.slacks[id].Current = current
}

// Connect links two free ports. Both items must be attached loops or pinches.
func (m *Machine) Connect(a, b Port, slack SlackID) (LinkID, error) {
	if a == b {
		return NoLink, fmt.Errorf("%w: %s", ErrSelfLink, a)
	}
	for _, p := range []Port{a, b} {
		if p.Item < 0 || int(p.Item) >= len(m.items) {
			return NoLink, fmt.Errorf("%w: no item %d", ErrInconsistent, p.Item)
		}
		it := &m.items[p.Item]
		if it.kind.IsMarker() {
			return NoLink, fmt.Errorf("%w: %s", ErrNoPort, p)
		}
		if it.needle < 0 {
			return NoLink, fmt.Errorf("%w: %s", ErrDetached, p)
		}
		if it.ports[p.Side] != NoLink {
			return NoLink, fmt.Errorf("%w: %s", ErrPortInUse, p)
		}
	}
	if slack != NoSlack && (slack < 0 || int(slack) >= len(m.slacks)) {
		return NoLink, fmt.Errorf("%w: no slack %d", ErrInconsistent, slack)
	}
	id := LinkID(len(m.links))
	m.links = append(m.links, link{a: a, b: b, slack: slack, alive: true})
	m.items[a.Item].ports[a.Side] = id
	m.items[b.Item].ports[b.Side] = id
	return id, nil
}

// mustConnect is Connect for engine paths that have just freed both ports.
func (m *Machine) mustConnect(a, b Port, slack SlackID) LinkID {
	id, err := m.Connect(a, b, slack)
	if err != nil {
		panic(fmt.Sprintf("knit: relink %s-%s: %v", a, b, err))
	}
	return id
}

// Disconnect removes a link and clears both of its ports.
// Disconnecting a removed link is a no-op.
func (m *Machine) Disconnect(id LinkID) {
	l := &m.links[id]
	if !l.alive {
		return
	}
	m.items[l.a.Item].ports[l.a.Side] = NoLink
	m.items[l.b.Item].ports[l.b.Side] = NoLink
	l.alive = false
}

// Link returns the link with the given id.
func (m *Machine) Link(id LinkID) Link {
	l := m.links[id]
	return Link{ID: id, A: l.a, B: l.b, Slack: l.slack}
}

// LinkAt returns the link held on a port, or NoLink.
func (m *Machine) LinkAt(p Port) LinkID {
	return m.items[p.Item].ports[p.Side]
}

// Links returns the live links in creation order.
func (m *Machine) Links() []Link {
	var out []Link
	for i, l := range m.links {
		if l.alive {
			out = append(out, Link{ID: LinkID(i), A: l.a, B: l.b, Slack: l.slack})
		}
	}
	return out
}

// LinkCount returns the number of live links.
func (m *Machine) LinkCount() int {
	c := 0
	for _, l := range m.links {
		if l.alive {
			c++
		}
	}
	return c
}

// Validate checks that every live link is held by both of its ports, that
// every port points at a live link ending on it, and that linked items are
// attached. It returns an error wrapping ErrInconsistent on the first breach.
func (m *Machine) Validate() error {
	for i, l := range m.links {
		if !l.alive {
			continue
		}
		id := LinkID(i)
		for _, p := range []Port{l.a, l.b} {
			it := m.items[p.Item]
			if it.needle < 0 {
				return fmt.Errorf("%w: link %d ends on detached item %d", ErrInconsistent, id, p.Item)
			}
			if it.ports[p.Side] != id {
				return fmt.Errorf("%w: link %d not held by port %s", ErrInconsistent, id, p)
			}
		}
	}
	for i, it := range m.items {
		for s, lid := range it.ports {
			if lid == NoLink {
				continue
			}
			p := Port{Item: ItemID(i), Side: Side(s)}
			l := m.links[lid]
			if !l.alive {
				return fmt.Errorf("%w: port %s holds removed link %d", ErrInconsistent, p, lid)
			}
			if l.a != p && l.b != p {
				return fmt.Errorf("%w: port %s holds link %d ending elsewhere", ErrInconsistent, p, lid)
			}
		}
	}
	for _, nd := range m.needles {
		if m.items[nd.base].next == NoItem || m.items[nd.tip].prev == NoItem {
			return fmt.Errorf("%w: needle %s lost its markers", ErrInconsistent, nd.key)
		}
		seenHook := false
		for id := nd.base; id != NoItem; id = m.items[id].next {
			if id == nd.hook {
				seenHook = true
			}
			if id == nd.tip && !seenHook {
				return fmt.Errorf("%w: needle %s tip below hook", ErrInconsistent, nd.key)
			}
		}
	}
	return nil
}
