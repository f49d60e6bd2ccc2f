package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/ops"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/script"
)

var (
	// ErrUnsupported is returned for operations the machine cannot model,
	// such as fractional racking.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrSliderStitch is returned for a stitch formed on a slider.
	ErrSliderStitch = errors.New("cannot knit on a slider")
)

// Simulator applies operations to a machine.
// It is not safe for concurrent use.
type Simulator struct {
	m        *knit.Machine
	carriers *Carriers
	logger   *log.Logger
	stitch   ops.StitchSize
	cards    []layout.Card
	passes   []playback.Pass

	carrierNames []string
	machineOpts  []knit.Option
	historyOpts  []playback.Option
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used for per-operation debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithCarriers sets the carrier list. It defaults to the script default.
func WithCarriers(names []string) Option {
	return func(s *Simulator) { s.carrierNames = names }
}

// WithMachineOptions passes options through to the underlying machine.
func WithMachineOptions(opts ...knit.Option) Option {
	return func(s *Simulator) { s.machineOpts = append(s.machineOpts, opts...) }
}

// WithHistoryOptions passes options to the history recorded by Run.
func WithHistoryOptions(opts ...playback.Option) Option {
	return func(s *Simulator) { s.historyOpts = append(s.historyOpts, opts...) }
}

// New returns a simulator over an empty machine.
func New(opts ...Option) *Simulator {
	s := &Simulator{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.carrierNames == nil {
		s.carrierNames = slices.Clone(script.DefaultCarriers)
	}
	s.m = knit.New(s.machineOpts...)
	s.carriers = NewCarriers(s.carrierNames)
	return s
}

// Machine returns the simulated machine.
func (s *Simulator) Machine() *knit.Machine { return s.m }

// Carriers returns the carrier tracker.
func (s *Simulator) Carriers() *Carriers { return s.carriers }

// StitchValues returns the last stitch size set by a stitch operation.
func (s *Simulator) StitchValues() ops.StitchSize { return s.stitch }

// Cards returns the card tiles recorded since the last call to TakeCards.
func (s *Simulator) Cards() []layout.Card { return s.cards }

// TakeCards returns the recorded card tiles and starts a new list.
func (s *Simulator) TakeCards() []layout.Card {
	c := s.cards
	s.cards = nil
	return c
}

type handler func(*Simulator, context.Context, ops.Op) error

var handlers = map[ops.Kind]handler{
	ops.KindXfer:        (*Simulator).xfer,
	ops.KindRack:        (*Simulator).rack,
	ops.KindKnit:        (*Simulator).stitchOp,
	ops.KindTuck:        (*Simulator).stitchOp,
	ops.KindMiss:        (*Simulator).stitchOp,
	ops.KindSplit:       (*Simulator).split,
	ops.KindPause:       (*Simulator).pause,
	ops.KindIn:          (*Simulator).carrierOp,
	ops.KindInhook:      (*Simulator).carrierOp,
	ops.KindOut:         (*Simulator).carrierOp,
	ops.KindOuthook:     (*Simulator).carrierOp,
	ops.KindReleasehook: (*Simulator).carrierOp,
	ops.KindStitch:      (*Simulator).stitchSize,
}

// Apply performs one operation. A failed operation leaves the machine
// unchanged.
func (s *Simulator) Apply(ctx context.Context, op ops.Op) error {
	h, ok := handlers[op.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, op.Kind())
	}
	return h(s, ctx, op)
}

func as[T ops.Op](op ops.Op) (T, error) {
	o, ok := op.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T cannot carry %s", ErrUnsupported, op, op.Kind())
	}
	return o, nil
}

func (s *Simulator) xfer(ctx context.Context, op ops.Op) error {
	o, err := as[ops.Xfer](op)
	if err != nil {
		return err
	}
	stats, err := s.m.Xfer(o.From, o.To)
	if err != nil {
		return err
	}
	s.logger.Debug("xfer",
		"from", o.From,
		"to", o.To,
		"captured", stats.Captured,
		"released", stats.Released)
	observability.Simulation().OnXfer(ctx, o.From.String(), o.To.String(), stats.Captured, stats.Released)
	return nil
}

func (s *Simulator) rack(_ context.Context, op ops.Op) error {
	o, err := as[ops.Rack](op)
	if err != nil {
		return err
	}
	if !o.Integral() {
		return fmt.Errorf("%w: fractional racking %v", ErrUnsupported, o.Racking)
	}
	return s.m.SetRacking(int(o.Racking))
}

func (s *Simulator) stitchOp(_ context.Context, op ops.Op) error {
	o, err := as[ops.Stitch](op)
	if err != nil {
		return err
	}
	if o.Op != ops.KindMiss && o.Needle.Slider {
		return ErrSliderStitch
	}
	if err := s.carriers.Use(o.Carriers, o.Needle.String()+o.Dir.String()); err != nil {
		return err
	}
	card := layout.Card{Label: o.String()}
	if o.Op == ops.KindMiss {
		card.Slots = []layout.Slot{s.slot(o.Needle, 0)}
	} else {
		d := int(o.Dir)
		card.Slots = []layout.Slot{s.slot(o.Needle, -d), s.slot(o.Needle, 0), s.slot(o.Needle, d)}
	}
	s.cards = append(s.cards, card)
	return nil
}

func (s *Simulator) split(_ context.Context, op ops.Op) error {
	o, err := as[ops.Split](op)
	if err != nil {
		return err
	}
	if o.Needle.Slider {
		return ErrSliderStitch
	}
	if o.Needle.Bed == o.Target.Bed {
		return knit.ErrSameBed
	}
	if err := s.carriers.Use(o.Carriers, o.Needle.String()+o.Dir.String()); err != nil {
		return err
	}
	s.cards = append(s.cards, layout.Card{
		Label: o.String(),
		Slots: []layout.Slot{s.slot(o.Needle, 0), s.slot(o.Target, 0)},
	})
	return nil
}

func (s *Simulator) pause(context.Context, ops.Op) error { return nil }

func (s *Simulator) carrierOp(_ context.Context, op ops.Op) error {
	o, err := as[ops.CarrierOp](op)
	if err != nil {
		return err
	}
	switch o.Op {
	case ops.KindIn:
		return s.carriers.MarkIn(o.Carriers, false)
	case ops.KindInhook:
		return s.carriers.MarkIn(o.Carriers, true)
	case ops.KindOut, ops.KindOuthook:
		return s.carriers.BringOut(o.Carriers)
	case ops.KindReleasehook:
		return s.carriers.ReleaseHook(o.Carriers)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, o.Op)
}

func (s *Simulator) stitchSize(_ context.Context, op ops.Op) error {
	o, err := as[ops.StitchSize](op)
	if err != nil {
		return err
	}
	s.stitch = o
	return nil
}

// slot returns the card column of a needle position. Back needles are
// shifted into front-bed coordinates by the current racking.
func (s *Simulator) slot(n knit.NeedleRef, nudge int) layout.Slot {
	idx := n.Index
	if n.Bed == knit.Back {
		idx += s.m.Racking()
	}
	return layout.Slot{Index: idx, Nudge: nudge}
}
