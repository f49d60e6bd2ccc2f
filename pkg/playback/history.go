package playback

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
)

// UnwindLabel labels the synthetic step shown before wrapping to the start.
const UnwindLabel = "unwind"

// Step is the recorded state after one script line.
type Step struct {
	Index    int           `json:"index"`
	Line     int           `json:"line"`
	Label    string        `json:"label"`
	Snapshot knit.Snapshot `json:"snapshot"`
	Cards    []layout.Card `json:"cards,omitempty"`
	// Active lists the carriers in action after the step.
	Active []string `json:"active,omitempty"`
	// Passes lists the transfer passes of the line in order.
	Passes []Pass `json:"passes,omitempty"`
}

// Pass is one transfer pass of a step: a run of transfers between the same
// beds at one needle offset, performed at a single racking.
type Pass struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Offset  int    `json:"offset"`
	Xfers   int    `json:"xfers"`
	Racking int    `json:"racking"`
}

func (p Pass) String() string {
	return fmt.Sprintf("%s>%s %+d (%d xfers)", p.From, p.To, p.Offset, p.Xfers)
}

// History is an ordered list of steps with a cursor.
type History struct {
	steps  []Step
	pos    int
	unwind bool
}

// Option configures a History.
type Option func(*History)

// WithUnwindRacking inserts a step at neutral racking before Next wraps from
// a racked last step back to the first.
func WithUnwindRacking() Option {
	return func(h *History) { h.unwind = true }
}

// NewHistory returns a history over steps with the cursor on the first one.
// Step indices are renumbered to their positions.
func NewHistory(steps []Step, opts ...Option) *History {
	h := &History{}
	for _, opt := range opts {
		opt(h)
	}
	for _, s := range steps {
		h.Append(s)
	}
	return h
}

// Append adds a step at the end.
func (h *History) Append(s Step) {
	s.Index = len(h.steps)
	h.steps = append(h.steps, s)
}

// Len returns the number of recorded steps, not counting the unwind step.
func (h *History) Len() int { return len(h.steps) }

// Steps returns a copy of the recorded steps.
func (h *History) Steps() []Step { return slices.Clone(h.steps) }

// Step returns the step at index i.
func (h *History) Step(i int) (Step, bool) {
	if i < 0 || i >= len(h.steps) {
		return Step{}, false
	}
	return h.steps[i], true
}

// Last returns the final recorded step.
func (h *History) Last() (Step, bool) { return h.Step(len(h.steps) - 1) }

// Index returns the cursor position. It equals Len while the unwind step is
// shown.
func (h *History) Index() int { return h.pos }

// Unwinding reports whether the cursor is on the unwind step.
func (h *History) Unwinding() bool { return len(h.steps) > 0 && h.pos == len(h.steps) }

// Current returns the step under the cursor. It is the zero Step for an empty
// history.
func (h *History) Current() Step {
	if h.Unwinding() {
		return h.unwindStep()
	}
	s, _ := h.Step(h.pos)
	return s
}

// Seek moves the cursor to step i and reports whether i exists.
func (h *History) Seek(i int) bool {
	if i < 0 || i >= len(h.steps) {
		return false
	}
	h.pos = i
	return true
}

// Next advances the cursor and returns the new current step. Past the last
// step it wraps to the first, showing the unwind step on the way when enabled
// and the last step is racked.
func (h *History) Next() Step {
	n := len(h.steps)
	switch {
	case n == 0:
	case h.pos < n-1:
		h.pos++
	case h.pos == n-1 && h.needsUnwind():
		h.pos = n
	default:
		h.pos = 0
	}
	return h.Current()
}

// Prev moves the cursor back and returns the new current step. Before the
// first step it wraps to the last.
func (h *History) Prev() Step {
	n := len(h.steps)
	switch {
	case n == 0:
	case h.pos == 0 || h.pos == n:
		h.pos = n - 1
	default:
		h.pos--
	}
	return h.Current()
}

func (h *History) needsUnwind() bool {
	last, ok := h.Last()
	return h.unwind && ok && last.Snapshot.Racking != 0
}

var unmark = strings.NewReplacer("O", "o", "!", "|")

// unwindStep is the last step brought back to neutral racking with nothing
// marked as moved.
func (h *History) unwindStep() Step {
	last := h.steps[len(h.steps)-1]
	snap := last.Snapshot
	snap.Label = UnwindLabel
	snap.Racking = 0
	snap.Needles = slices.Clone(snap.Needles)
	for i := range snap.Needles {
		snap.Needles[i].Stack = unmark.Replace(snap.Needles[i].Stack)
	}
	return Step{
		Index:    len(h.steps),
		Line:     last.Line,
		Label:    UnwindLabel,
		Snapshot: snap,
		Active:   last.Active,
	}
}
