package knit

import (
	"cmp"
	"slices"
)

// crossing is a link that separates the two arcs of the bed perimeter cut by
// a transfer. near is the end found on the walked arc.
type crossing struct {
	link LinkID
	near Port
}

// upSide is the side walked from base to tip when the perimeter passes a
// needle. The perimeter runs left to right along the front bed and right to
// left along the back bed.
func upSide(b Bed) Side {
	if b == Front {
		return Left
	}
	return Right
}

// nearSide is the side of a source needle that faces the walked arc.
func nearSide(b Bed) Side {
	return upSide(b).Opposite()
}

// perimeter returns needle indices in walk order: front ascending, then back
// descending. The walk wraps from the last back needle to the first front one.
func (m *Machine) perimeter() []int {
	order := make([]int, len(m.needles))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		ka, kb := m.needles[a].key, m.needles[b].key
		if ka.Bed != kb.Bed {
			return cmp.Compare(ka.Bed, kb.Bed)
		}
		if ka.Bed == Front {
			return cmp.Compare(ka.Index, kb.Index)
		}
		return cmp.Compare(kb.Index, ka.Index)
	})
	return order
}

// crossings walks the perimeter from the tip of src to the tip of dst and
// returns the links with exactly one end on the walked arc, in walk order.
// Links touching a moving item travel with the transfer and are ignored.
func (m *Machine) crossings(src, dst int, moving []ItemID) []crossing {
	skip := make(map[ItemID]bool, len(moving))
	for _, id := range moving {
		skip[id] = true
	}

	var open []crossing
	visit := func(p Port) {
		lid := m.items[p.Item].ports[p.Side]
		if lid == NoLink {
			return
		}
		l := m.links[lid]
		if skip[l.a.Item] || skip[l.b.Item] {
			return
		}
		for i, c := range open {
			if c.link == lid {
				open = slices.Delete(open, i, i+1)
				return
			}
		}
		open = append(open, crossing{link: lid, near: p})
	}

	order := m.perimeter()
	pos := slices.Index(order, src)

	m.walkDown(src, nearSide(m.needles[src].key.Bed), visit)
	for i := 1; i < len(order); i++ {
		n := order[(pos+i)%len(order)]
		if n == dst {
			break
		}
		side := upSide(m.needles[n].key.Bed)
		m.walkUp(n, side, visit)
		m.walkDown(n, side.Opposite(), visit)
	}
	m.walkUp(dst, upSide(m.needles[dst].key.Bed), visit)

	if m.degeneratePinch {
		return open
	}
	return slices.DeleteFunc(open, func(c crossing) bool {
		l := m.links[c.link]
		ends := func(p Port) bool {
			n := m.items[p.Item].needle
			return n == src || n == dst
		}
		return ends(l.a) && ends(l.b)
	})
}

func (m *Machine) walkUp(n int, s Side, visit func(Port)) {
	nd := m.needles[n]
	for id := m.items[nd.base].next; id != nd.tip; id = m.items[id].next {
		if !m.items[id].kind.IsMarker() {
			visit(Port{Item: id, Side: s})
		}
	}
}

func (m *Machine) walkDown(n int, s Side, visit func(Port)) {
	nd := m.needles[n]
	for id := m.items[nd.tip].prev; id != nd.base; id = m.items[id].prev {
		if !m.items[id].kind.IsMarker() {
			visit(Port{Item: id, Side: s})
		}
	}
}
