package knit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Characters used in needle descriptors.
const (
	charLoop       = 'o'
	charLoopMoved  = 'O'
	charPinch      = '|'
	charPinchMoved = '!'
	charHook       = '<'
)

// Snapshot is a compact, value-comparable record of a machine state.
//
// Each needle is described by one character per item from base to tip:
// 'o' loop, 'O' loop that just moved, '|' pinch, '!' pinch that just moved
// and '<' for the hook marker between the hook and slider regions. Items are
// referenced as "<needle>.<ordinal>" where the ordinal counts loops and
// pinches on the needle from the base. Links read
// "<item>.<l|r> <slack|*> <item>.<l|r>", the slack field indexing Slacks.
type Snapshot struct {
	Label   string        `json:"label"`
	Racking int           `json:"racking"`
	Needles []NeedleState `json:"needles"`
	Links   []string      `json:"links,omitempty"`
	Slacks  []float64     `json:"slacks,omitempty"`
}

// NeedleState is the descriptor of one needle.
type NeedleState struct {
	Needle string `json:"needle"`
	Stack  string `json:"stack"`
}

// String renders the snapshot as a few human-readable lines.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (racking %d)\n", s.Label, s.Racking)
	for _, n := range s.Needles {
		fmt.Fprintf(&b, "  %-5s %s\n", n.Needle, n.Stack)
	}
	for _, l := range s.Links {
		fmt.Fprintf(&b, "  link  %s\n", l)
	}
	if len(s.Slacks) > 0 {
		parts := make([]string, len(s.Slacks))
		for i, v := range s.Slacks {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintf(&b, "  slack %s\n", strings.Join(parts, " "))
	}
	return b.String()
}

var (
	linkDescRe = regexp.MustCompile(`^(\S+)\.([lr]) (\*|\d+) (\S+)\.([lr])$`)
	itemRefRe  = regexp.MustCompile(`^([fb]-?\d+)\.(\d+)$`)
)

// Save captures the current state under the given label.
func (m *Machine) Save(label string) Snapshot {
	s := Snapshot{Label: label, Racking: m.racking}
	refs := make(map[ItemID]string)

	for _, k := range m.Needles() {
		nd := m.needles[m.byKey[k]]
		var b strings.Builder
		ord := 0
		for id := m.items[nd.base].next; id != nd.tip; id = m.items[id].next {
			it := m.items[id]
			switch it.kind {
			case KindHook:
				b.WriteByte(charHook)
			case KindLoop, KindPinch:
				b.WriteByte(itemChar(it.kind, it.moved))
				refs[id] = k.String() + "." + strconv.Itoa(ord)
				ord++
			}
		}
		s.Needles = append(s.Needles, NeedleState{Needle: k.String(), Stack: b.String()})
	}

	slackIdx := make(map[SlackID]int)
	for _, l := range m.Links() {
		sl := "*"
		if l.Slack != NoSlack {
			i, ok := slackIdx[l.Slack]
			if !ok {
				i = len(s.Slacks)
				slackIdx[l.Slack] = i
				s.Slacks = append(s.Slacks, m.slacks[l.Slack].Length)
			}
			sl = strconv.Itoa(i)
		}
		s.Links = append(s.Links, fmt.Sprintf("%s.%s %s %s.%s",
			refs[l.A.Item], l.A.Side, sl, refs[l.B.Item], l.B.Side))
	}
	return s
}

func itemChar(k Kind, moved bool) byte {
	switch {
	case k == KindLoop && moved:
		return charLoopMoved
	case k == KindLoop:
		return charLoop
	case moved:
		return charPinchMoved
	default:
		return charPinch
	}
}

// Load replaces the whole machine state with the snapshot. Needles, items,
// links and slacks not described by the snapshot are dropped. On error the
// machine is left unchanged and the error wraps ErrBadSnapshot.
func (m *Machine) Load(s Snapshot) error {
	next := &Machine{
		byKey:           make(map[NeedleKey]int),
		maxRacking:      m.maxRacking,
		degeneratePinch: m.degeneratePinch,
	}
	if err := next.load(s); err != nil {
		return err
	}
	*m = *next
	return nil
}

func (m *Machine) load(s Snapshot) error {
	if err := m.checkRacking(s.Racking); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	m.racking = s.Racking

	refs := make(map[string]ItemID)
	for _, ns := range s.Needles {
		k, err := ParseNeedleKey(ns.Needle)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
		}
		if m.HasNeedle(k) {
			return fmt.Errorf("%w: needle %s listed twice", ErrBadSnapshot, k)
		}
		m.ensureNeedle(k)

		hooks, ord := 0, 0
		for _, c := range ns.Stack {
			var kind Kind
			var moved bool
			switch c {
			case charHook:
				hooks++
				continue
			case charLoop:
				kind = KindLoop
			case charLoopMoved:
				kind, moved = KindLoop, true
			case charPinch:
				kind = KindPinch
			case charPinchMoved:
				kind, moved = KindPinch, true
			default:
				return fmt.Errorf("%w: needle %s: unexpected %q in %q", ErrBadSnapshot, k, c, ns.Stack)
			}
			id := m.makeItem(kind, NeedleRef{Bed: k.Bed, Slider: hooks > 0, Index: k.Index})
			m.items[id].moved = moved
			refs[k.String()+"."+strconv.Itoa(ord)] = id
			ord++
		}
		if hooks != 1 {
			return fmt.Errorf("%w: needle %s: want one hook marker in %q", ErrBadSnapshot, k, ns.Stack)
		}
	}

	for _, l := range s.Slacks {
		m.NewSlack(l)
	}

	for i, d := range s.Links {
		mm := linkDescRe.FindStringSubmatch(d)
		if mm == nil {
			return fmt.Errorf("%w: link %d: malformed %q", ErrBadSnapshot, i, d)
		}
		a, err := lookupRef(refs, mm[1])
		if err != nil {
			return fmt.Errorf("%w: link %d: %w", ErrBadSnapshot, i, err)
		}
		b, err := lookupRef(refs, mm[4])
		if err != nil {
			return fmt.Errorf("%w: link %d: %w", ErrBadSnapshot, i, err)
		}
		slack := NoSlack
		if mm[3] != "*" {
			n, err := strconv.Atoi(mm[3])
			if err != nil || n >= len(s.Slacks) {
				return fmt.Errorf("%w: link %d: no slack %s", ErrBadSnapshot, i, mm[3])
			}
			slack = SlackID(n)
		}
		pa := Port{Item: a, Side: parseSide(mm[2])}
		pb := Port{Item: b, Side: parseSide(mm[5])}
		if _, err := m.Connect(pa, pb, slack); err != nil {
			return fmt.Errorf("%w: link %d %q: %w", ErrBadSnapshot, i, d, err)
		}
	}
	return nil
}

func lookupRef(refs map[string]ItemID, ref string) (ItemID, error) {
	if !itemRefRe.MatchString(ref) {
		return NoItem, fmt.Errorf("malformed item reference %q", ref)
	}
	id, ok := refs[ref]
	if !ok {
		return NoItem, fmt.Errorf("unknown item %q", ref)
	}
	return id, nil
}

func parseSide(s string) Side {
	if s == "l" {
		return Left
	}
	return Right
}
