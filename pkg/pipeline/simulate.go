package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/matzehuels/knitstack/pkg/cache"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/script"
	"github.com/matzehuels/knitstack/pkg/sim"
)

// Simulate parses the script and records its history. On a simulation
// error the partial history is returned together with the coded error.
func Simulate(ctx context.Context, opts Options) (*playback.History, error) {
	if err := opts.ValidateForSimulate(); err != nil {
		return nil, err
	}

	sc, err := script.ParseString(opts.Script)
	if err != nil {
		e := kerrors.Wrap(kerrors.ErrCodeInvalidScript, err, "parse script")
		var se *script.SyntaxError
		if errors.As(err, &se) {
			e = e.AtLine(se.Line)
		}
		return nil, e
	}

	start := time.Now()
	observability.Pipeline().OnSimulateStart(ctx, len(sc.Lines))
	h, err := sim.Run(ctx, sc, opts.simOptions()...)
	observability.Pipeline().OnSimulateComplete(ctx, h.Len(), time.Since(start), err)
	return h, err
}

// HashHistory returns the content hash of the recorded steps.
func HashHistory(h *playback.History) (string, error) {
	data, err := json.Marshal(h.Steps())
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

func decodeHistory(data []byte, opts Options) (*playback.History, error) {
	var steps []playback.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return playback.NewHistory(steps, opts.historyOptions()...), nil
}
