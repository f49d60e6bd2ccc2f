package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/playback"
)

// SelectSteps resolves the requested step indices against the history.
// Negative indices count from the end, so -1 is the last step. AllSteps
// selects every recorded step.
func SelectSteps(h *playback.History, opts Options) ([]int, error) {
	n := h.Len()
	if opts.AllSteps {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	sel := make([]int, 0, len(opts.Steps))
	for _, s := range opts.Steps {
		i := s
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, kerrors.New(kerrors.ErrCodeNotFound, "step %d not found (history has %d steps)", s, n)
		}
		sel = append(sel, i)
	}
	return sel, nil
}

// Frame restores a step on a fresh machine and lays it out.
func Frame(st playback.Step, p layout.Params) (layout.Frame, error) {
	m := knit.New()
	if err := m.Load(st.Snapshot); err != nil {
		return layout.Frame{}, kerrors.Wrap(kerrors.ErrCodeInvalidSnapshot, err, "step %d", st.Index)
	}
	f, err := layout.Compute(m, p,
		layout.WithStep(st.Index),
		layout.WithLabel(st.Label),
		layout.WithCards(st.Cards),
	)
	if err != nil {
		return layout.Frame{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "layout step %d", st.Index)
	}
	return f, nil
}

// Frames lays out the selected steps in parallel. Each worker owns the
// machine it restores, so no state is shared between goroutines.
func Frames(ctx context.Context, h *playback.History, steps []int, opts Options) ([]layout.Frame, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(steps))

	frames := make([]layout.Frame, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, idx := range steps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return kerrors.Wrap(kerrors.ErrCodeTimeout, err, "layout cancelled")
			}
			st, ok := h.Step(idx)
			if !ok {
				return kerrors.New(kerrors.ErrCodeNotFound, "step %d not found", idx)
			}
			f, err := Frame(st, opts.Params)
			if err != nil {
				return err
			}
			frames[i] = f
			return nil
		})
	}
	err := g.Wait()
	observability.Pipeline().OnLayoutComplete(ctx, len(steps), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return frames, nil
}
