package playback

// Phase names used by [XferAnimation].
const (
	PhaseExtend  = "extend"
	PhaseRack    = "rack"
	PhaseMove    = "move"
	PhaseRetract = "retract"
)

// Channel is one animated quantity.
type Channel struct {
	Name   string
	Value  float64
	Target float64
}

// Phase is a set of channels that move together. It ends once none of them
// has anywhere left to go.
type Phase struct {
	Name     string
	Channels []Channel
}

// Animation is a sequence of phases played in order.
type Animation struct {
	Name   string
	Phases []Phase
	// OnDone runs when the last phase ends.
	OnDone func()
}

// Animator plays queued animations one after another.
// It is not safe for concurrent use.
type Animator struct {
	speed float64
	queue []*Animation
}

// DefaultSpeed is the channel change per unit of time.
const DefaultSpeed = 4.0

// NewAnimator returns an empty animator. A non-positive speed selects
// DefaultSpeed.
func NewAnimator(speed float64) *Animator {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Animator{speed: speed}
}

// Enqueue appends an animation to the queue.
func (a *Animator) Enqueue(anim Animation) {
	anim.Phases = clonePhases(anim.Phases)
	a.queue = append(a.queue, &anim)
}

// Len returns the number of queued animations, the running one included.
func (a *Animator) Len() int { return len(a.queue) }

// Busy reports whether anything is queued.
func (a *Animator) Busy() bool { return len(a.queue) > 0 }

// Clear drops every queued animation without running their callbacks.
func (a *Animator) Clear() { a.queue = nil }

// Current returns the running animation and the name of its running phase.
func (a *Animator) Current() (name, phase string, ok bool) {
	if len(a.queue) == 0 {
		return "", "", false
	}
	anim := a.queue[0]
	if len(anim.Phases) > 0 {
		phase = anim.Phases[0].Name
	}
	return anim.Name, phase, true
}

// Value returns the value of a channel of the running phase.
func (a *Animator) Value(channel string) (float64, bool) {
	if len(a.queue) == 0 || len(a.queue[0].Phases) == 0 {
		return 0, false
	}
	for _, c := range a.queue[0].Phases[0].Channels {
		if c.Name == channel {
			return c.Value, true
		}
	}
	return 0, false
}

// Advance moves the running phase forward by delta time units. Each channel
// moves by at most delta*speed without passing its target. A phase found
// with nothing left to move is dropped and the next one runs in the same
// call; an animation out of phases is dropped and its OnDone called.
func (a *Animator) Advance(delta float64) {
	step := delta * a.speed
	for len(a.queue) > 0 {
		anim := a.queue[0]
		if len(anim.Phases) == 0 {
			a.queue = a.queue[1:]
			if anim.OnDone != nil {
				anim.OnDone()
			}
			continue
		}
		if moveChannels(anim.Phases[0].Channels, step) {
			return
		}
		anim.Phases = anim.Phases[1:]
	}
}

func moveChannels(chs []Channel, step float64) bool {
	moved := false
	for i := range chs {
		c := &chs[i]
		switch {
		case c.Value < c.Target:
			c.Value = min(c.Value+step, c.Target)
		case c.Value > c.Target:
			c.Value = max(c.Value-step, c.Target)
		default:
			continue
		}
		moved = true
	}
	return moved
}

func clonePhases(ps []Phase) []Phase {
	out := make([]Phase, len(ps))
	for i, p := range ps {
		out[i] = Phase{Name: p.Name, Channels: append([]Channel(nil), p.Channels...)}
	}
	return out
}

// XferAnimation builds the four-phase transfer motion: needles extend, the
// bed racks from one offset to the other, the stack moves across, needles
// retract. Every phase carries the rack channel, so Value(PhaseRack) reports
// the running animation's offset in any phase.
func XferAnimation(name string, fromRacking, toRacking int) Animation {
	from, to := float64(fromRacking), float64(toRacking)
	hold := func(v float64) Channel { return Channel{Name: PhaseRack, Value: v, Target: v} }
	return Animation{
		Name: name,
		Phases: []Phase{
			{Name: PhaseExtend, Channels: []Channel{{Name: PhaseExtend, Value: 0, Target: 1}, hold(from)}},
			{Name: PhaseRack, Channels: []Channel{{Name: PhaseRack, Value: from, Target: to}}},
			{Name: PhaseMove, Channels: []Channel{{Name: PhaseMove, Value: 0, Target: 1}, hold(to)}},
			{Name: PhaseRetract, Channels: []Channel{{Name: PhaseExtend, Value: 1, Target: 0}, hold(to)}},
		},
	}
}

// PassAnimations builds the motion from racking from into step st: one
// transfer animation per recorded pass, then one more if the step ends at a
// racking its last pass did not leave.
func PassAnimations(st Step, from int) []Animation {
	var anims []Animation
	for _, p := range st.Passes {
		anims = append(anims, XferAnimation(p.String(), from, p.Racking))
		from = p.Racking
	}
	if len(anims) == 0 || from != st.Snapshot.Racking {
		anims = append(anims, XferAnimation(st.Label, from, st.Snapshot.Racking))
	}
	return anims
}
