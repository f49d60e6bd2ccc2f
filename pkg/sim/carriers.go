package sim

import (
	"encoding/json"
	"errors"
	"slices"
)

// ErrCarrier is matched by every carrier state error.
var ErrCarrier = errors.New("carrier state error")

// CarrierError reports an operation the carrier state does not allow.
type CarrierError struct {
	Carrier string
	Msg     string
}

func (e *CarrierError) Error() string        { return e.Msg }
func (e *CarrierError) Is(target error) bool { return target == ErrCarrier }

func carrierErr(cn, msg string) error {
	return &CarrierError{Carrier: cn, Msg: msg}
}

func setString(cs []string) string {
	b, _ := json.Marshal(cs)
	return string(b)
}

// CarrierState is a read-only view of one carrier.
type CarrierState struct {
	Name string
	// Last is the needle and direction of the last stitch; empty while the
	// carrier is out of action.
	Last   string
	Hook   []string // carrier set held by the yarn inserting hook
	Marked bool     // waiting to come in at its next use
	MarkOf []string // carrier set it is marked to come in with
	Hooked bool     // marked to come in with the hook
}

// InAction reports whether the carrier has stitched since coming in.
func (c CarrierState) InAction() bool { return c.Last != "" }

type mark struct {
	set  []string
	hook bool
}

type carrier struct {
	last string
	hook []string
	mark *mark
}

// Carriers tracks which yarn carriers are in action, held by the yarn
// inserting hook or waiting to come in. Every operation checks all named
// carriers before changing any of them.
type Carriers struct {
	names []string
	state map[string]*carrier
}

// NewCarriers returns a tracker with every carrier out of action.
func NewCarriers(names []string) *Carriers {
	c := &Carriers{names: slices.Clone(names), state: make(map[string]*carrier, len(names))}
	for _, n := range names {
		c.state[n] = &carrier{}
	}
	return c
}

// Names returns the carrier list in header order.
func (c *Carriers) Names() []string { return slices.Clone(c.names) }

// State returns the state of the named carrier.
func (c *Carriers) State(name string) (CarrierState, bool) {
	st, ok := c.state[name]
	if !ok {
		return CarrierState{}, false
	}
	s := CarrierState{Name: name, Last: st.last, Hook: slices.Clone(st.hook)}
	if st.mark != nil {
		s.Marked = true
		s.MarkOf = slices.Clone(st.mark.set)
		s.Hooked = st.mark.hook
	}
	return s, true
}

// Active returns the carriers in action, in header order.
func (c *Carriers) Active() []string {
	var out []string
	for _, n := range c.names {
		if c.state[n].last != "" {
			out = append(out, n)
		}
	}
	return out
}

func (c *Carriers) lookup(cn string) (*carrier, error) {
	st, ok := c.state[cn]
	if !ok {
		return nil, carrierErr(cn, "Carrier name ["+cn+"] not in carrier list.")
	}
	return st, nil
}

// MarkIn marks cs to come in together at their next use, optionally with
// the yarn inserting hook.
func (c *Carriers) MarkIn(cs []string, hook bool) error {
	for _, cn := range cs {
		st, err := c.lookup(cn)
		if err != nil {
			return err
		}
		switch {
		case st.last != "":
			return carrierErr(cn, "Carrier ["+cn+"] is already in action.")
		case st.hook != nil:
			return carrierErr(cn, "Carrier ["+cn+"] is already in a holding hook.")
		case st.mark != nil:
			return carrierErr(cn, "Carrier ["+cn+"] is already marked to come in.")
		}
	}
	m := &mark{set: slices.Clone(cs), hook: hook}
	for _, cn := range cs {
		c.state[cn].mark = m
	}
	return nil
}

// Use records a stitch at the given position with cs, bringing the set in
// first when any of them is not yet in action.
func (c *Carriers) Use(cs []string, at string) error {
	needIn := false
	for _, cn := range cs {
		st, err := c.lookup(cn)
		if err != nil {
			return err
		}
		if st.last == "" {
			needIn = true
		}
	}
	if needIn {
		if err := c.bringIn(cs); err != nil {
			return err
		}
	}
	for _, cn := range cs {
		c.state[cn].last = at
	}
	return nil
}

func (c *Carriers) bringIn(cs []string) error {
	var m *mark
	for _, cn := range cs {
		st := c.state[cn]
		if st.mark == nil {
			return carrierErr(cn, "Carrier ["+cn+"] is not marked to come in.")
		}
		if !slices.Equal(st.mark.set, cs) {
			return carrierErr(cn, "Carrier ["+cn+"] is not marked to come in as part of carrier set "+setString(cs)+".")
		}
		m = st.mark
	}
	for _, cn := range cs {
		st := c.state[cn]
		st.mark = nil
		if m.hook {
			st.hook = slices.Clone(cs)
		}
	}
	return nil
}

// BringOut takes cs out of action.
func (c *Carriers) BringOut(cs []string) error {
	for _, cn := range cs {
		st, err := c.lookup(cn)
		if err != nil {
			return err
		}
		switch {
		case st.last == "":
			return carrierErr(cn, "Carrier ["+cn+"] is not in action.")
		case st.hook != nil:
			return carrierErr(cn, "Carrier ["+cn+"] is in a holding hook.")
		case st.mark != nil:
			return carrierErr(cn, "Carrier ["+cn+"] is marked to come in.")
		}
	}
	for _, cn := range cs {
		c.state[cn].last = ""
	}
	return nil
}

// ReleaseHook frees cs from the yarn inserting hook. They must be held
// together as exactly this set.
func (c *Carriers) ReleaseHook(cs []string) error {
	for _, cn := range cs {
		st, err := c.lookup(cn)
		if err != nil {
			return err
		}
		if st.hook == nil {
			return carrierErr(cn, "Carrier ["+cn+"] is not in a hook.")
		}
		if !slices.Equal(st.hook, cs) {
			return carrierErr(cn, "Carrier ["+cn+"] is not in a hook with carrier set "+setString(cs)+".")
		}
	}
	for _, cn := range cs {
		c.state[cn].hook = nil
	}
	return nil
}
