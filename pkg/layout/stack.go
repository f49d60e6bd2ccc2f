package layout

import "errors"

// ErrStackCycle is returned by [Stacks.Order] when the is-above relation
// has a cycle.
var ErrStackCycle = errors.New("stacking relation has a cycle")

// Slot is a column tiles are stacked in. Index is a front-bed needle
// position; Nudge is -1, 0 or +1 for the gap left of the needle, the needle
// itself and the gap right of it.
type Slot struct {
	Index int `json:"index"`
	Nudge int `json:"nudge"`
}

// Stacks collects tiles in slots and solves their offsets along the stacking
// direction.
type Stacks struct {
	tiles []stackTile
	top   map[Slot]int
}

type stackTile struct {
	height float64
	gap    float64 // clearance to any tile below
	above  []int
	below  int // unresolved tiles below
}

// NewStacks returns an empty set of stacks.
func NewStacks() *Stacks {
	return &Stacks{top: make(map[Slot]int)}
}

// Len returns the number of tiles pushed so far.
func (s *Stacks) Len() int { return len(s.tiles) }

// Push places a tile on top of every listed slot and returns its index. A
// tile spanning several slots rests on the highest tile below it in any of
// them.
func (s *Stacks) Push(height, gap float64, slots ...Slot) int {
	id := len(s.tiles)
	s.tiles = append(s.tiles, stackTile{height: height, gap: gap})
	seen := make(map[Slot]bool, len(slots))
	for _, sl := range slots {
		if seen[sl] {
			continue
		}
		seen[sl] = true
		if prev, ok := s.top[sl]; ok {
			s.Above(id, prev)
		}
		s.top[sl] = id
	}
	return id
}

// Above records that tile upper rests on tile lower.
func (s *Stacks) Above(upper, lower int) {
	s.tiles[lower].above = append(s.tiles[lower].above, upper)
	s.tiles[upper].below++
}

// Order assigns every tile an offset with Kahn's algorithm. A tile with
// nothing below sits at zero; otherwise its offset is at least
// below.offset + below.height + gap for every tile it rests on.
func (s *Stacks) Order() ([]float64, error) {
	indeg := make([]int, len(s.tiles))
	queue := make([]int, 0, len(s.tiles))
	for i, t := range s.tiles {
		indeg[i] = t.below
		if t.below == 0 {
			queue = append(queue, i)
		}
	}

	offsets := make([]float64, len(s.tiles))
	done := 0
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		done++
		for _, d := range s.tiles[t].above {
			if o := offsets[t] + s.tiles[t].height + s.tiles[d].gap; o > offsets[d] {
				offsets[d] = o
			}
			indeg[d]--
			if indeg[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	if done != len(s.tiles) {
		return nil, ErrStackCycle
	}
	return offsets, nil
}
