package sim

import (
	"context"
	"errors"
	"strings"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/ops"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/script"
)

// InitLabel labels the step recorded before the first script line.
const InitLabel = "init"

// Run simulates a whole script and records one step per line after an
// initial step holding the start chain.
//
// The script's carrier list and racking bound are applied before opts, so
// explicit options win. On failure Run returns the history up to the last
// good line together with an *errors.Error tied to the failing line.
func Run(ctx context.Context, sc *script.Script, opts ...Option) (*playback.History, error) {
	var pre []Option
	pre = append(pre, WithCarriers(sc.Carriers))
	if sc.MaxRacking > 0 {
		pre = append(pre, WithMachineOptions(knit.WithMaxRacking(sc.MaxRacking)))
	}
	s := New(append(pre, opts...)...)
	h := playback.NewHistory(nil, s.historyOpts...)

	for _, w := range sc.Warnings {
		s.logger.Warn(w.Msg, "line", w.Line)
	}
	if err := s.Start(sc.Start); err != nil {
		return h, kerrors.Wrap(code(err), err, "start chain")
	}
	h.Append(s.record(0, InitLabel))

	for _, line := range sc.Lines {
		if err := ctx.Err(); err != nil {
			return h, kerrors.Wrap(kerrors.ErrCodeTimeout, err, "simulation cancelled").AtLine(line.Number)
		}
		label := line.Label
		if label == "" {
			label = lineText(line)
		}

		s.m.ClearMarks()
		if err := s.applyPasses(ctx, line); err != nil {
			s.cards = nil
			observability.Simulation().OnStepError(ctx, line.Number, err)
			s.logger.Debug("step failed", "line", line.Number, "err", err)
			return h, kerrors.Wrap(code(err), err, "simulation stopped").AtLine(line.Number)
		}
		h.Append(s.record(line.Number, label))
		observability.Simulation().OnStep(ctx, line.Number, label, len(line.Ops))
		s.logger.Debug("step", "line", line.Number, "label", label, "ops", len(line.Ops))
	}
	return h, nil
}

// applyPasses applies a line's operations one carriage pass at a time and
// records each transfer pass at the racking it ran with.
func (s *Simulator) applyPasses(ctx context.Context, line script.Line) error {
	s.passes = nil
	for _, p := range ops.Passes(line.Ops) {
		for _, op := range p.Ops {
			if err := s.Apply(ctx, op); err != nil {
				s.passes = nil
				return err
			}
		}
		if !p.IsTransfer() {
			continue
		}
		rec := playback.Pass{
			From:    p.FromBed,
			To:      p.ToBed,
			Offset:  p.Offset,
			Xfers:   len(p.Ops),
			Racking: s.m.Racking(),
		}
		s.passes = append(s.passes, rec)
		s.logger.Debug("pass", "line", line.Number, "from", rec.From, "to", rec.To, "offset", rec.Offset, "xfers", rec.Xfers, "racking", rec.Racking)
	}
	return nil
}

func (s *Simulator) record(line int, label string) playback.Step {
	return playback.Step{
		Line:     line,
		Label:    label,
		Snapshot: s.m.Save(label),
		Cards:    s.TakeCards(),
		Active:   s.carriers.Active(),
		Passes:   s.takePasses(),
	}
}

func (s *Simulator) takePasses() []playback.Pass {
	p := s.passes
	s.passes = nil
	return p
}

func lineText(l script.Line) string {
	parts := make([]string, len(l.Ops))
	for i, op := range l.Ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}

// Start builds the initial loop chain. Each loop after the first is linked
// from the right side of its predecessor to its own left side.
func (s *Simulator) Start(chain []script.StartLoop) error {
	prev := knit.NoItem
	for _, sl := range chain {
		id := s.m.MakeLoop(sl.Needle)
		if prev != knit.NoItem {
			slack := knit.NoSlack
			if sl.HasSlack {
				slack = s.m.NewSlack(sl.Slack)
			}
			if _, err := s.m.Connect(knit.Port{Item: prev, Side: knit.Right}, knit.Port{Item: id, Side: knit.Left}, slack); err != nil {
				return err
			}
		}
		prev = id
	}
	return nil
}

// code maps a simulation failure to its error code.
func code(err error) kerrors.Code {
	switch {
	case errors.Is(err, knit.ErrBadNeedle):
		return kerrors.ErrCodeInvalidNeedle
	case errors.Is(err, knit.ErrBadSnapshot):
		return kerrors.ErrCodeInvalidSnapshot
	case errors.Is(err, script.ErrSyntax):
		return kerrors.ErrCodeInvalidScript
	case errors.Is(err, ErrUnsupported):
		return kerrors.ErrCodeUnsupported
	case errors.Is(err, knit.ErrSameBed),
		errors.Is(err, knit.ErrSliderToSlider),
		errors.Is(err, knit.ErrOverSlider),
		errors.Is(err, knit.ErrRackingLimit),
		errors.Is(err, ErrSliderStitch),
		errors.Is(err, ErrCarrier):
		return kerrors.ErrCodePrecondition
	}
	return kerrors.ErrCodeInternal
}
