package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/knitstack/pkg/buildinfo"
	"github.com/matzehuels/knitstack/pkg/cache"
	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/layout"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/playback"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, keys are scoped by the build version.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewScopedKeyer(nil, buildinfo.Version+":")
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete simulate → layout → render pipeline with
// caching. After a simulation error the result still carries the partial
// history.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		ScriptHash: cache.Hash([]byte(opts.Script)),
	}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Simulate
	simStart := time.Now()
	h, hash, hit, err := r.SimulateWithCacheInfo(ctx, opts)
	result.History = h
	result.HistoryHash = hash
	result.Stats.SimulateTime = time.Since(simStart)
	result.CacheInfo.HistoryHit = hit
	if h != nil {
		result.Stats.Steps = h.Len()
	}
	if err != nil {
		logger.Debug("simulation failed", "err", err)
		return result, err
	}
	result.Stats.Lines = h.Len() - 1

	logger.Info("simulated script",
		"steps", h.Len(),
		"cached", hit,
		"duration", result.Stats.SimulateTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	steps, err := SelectSteps(h, opts)
	if err != nil {
		return result, err
	}
	frames, err := Frames(ctx, h, steps, opts)
	if err != nil {
		return result, err
	}
	result.Frames = frames
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed frames",
		"frames", len(frames),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, hash, h, frames, opts)
	if err != nil {
		return result, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"artifacts", len(artifacts),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SimulateWithCacheInfo simulates the script with caching. It returns the
// history, its content hash and whether it came from cache. Failed
// simulations are never cached.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, opts Options) (*playback.History, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSimulate(); err != nil {
		return nil, "", false, err
	}
	key := r.Keyer.HistoryKey(cache.Hash([]byte(opts.Script)), opts.HistoryKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if h, err := decodeHistory(data, opts); err == nil {
				observability.Cache().OnCacheHit(ctx, "history")
				return h, cache.Hash(data), true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "history")
	}

	h, err := Simulate(ctx, opts)
	if err != nil {
		return h, "", false, err
	}

	data, err := json.Marshal(h.Steps())
	if err != nil {
		return h, "", false, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode history")
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLHistory); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "history", len(data))
	}
	return h, cache.Hash(data), false, nil
}

// Simulate is a convenience wrapper that discards the cache information.
func (r *Runner) Simulate(ctx context.Context, opts Options) (*playback.History, error) {
	h, _, _, err := r.SimulateWithCacheInfo(ctx, opts)
	return h, err
}

// RenderWithCacheInfo renders every requested format for every frame and
// reports whether all artifacts came from cache. The history hash scopes
// the artifact keys.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, historyHash string, h *playback.History, frames []layout.Frame, opts Options) ([]Artifact, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	allHit := true
	var artifacts []Artifact
	for _, f := range frames {
		st, ok := h.Step(f.Step)
		if !ok {
			return nil, false, kerrors.New(kerrors.ErrCodeNotFound, "step %d not found", f.Step)
		}
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(historyHash, opts.ArtifactKeyOpts(format, f.Step))
			if historyHash != "" && !opts.Refresh {
				if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
					observability.Cache().OnCacheHit(ctx, "artifact")
					artifacts = append(artifacts, Artifact{Step: f.Step, Format: format, Data: data})
					continue
				}
			}
			allHit = false
			observability.Cache().OnCacheMiss(ctx, "artifact")

			data, err := RenderFrame(ctx, f, st, format, opts)
			if err != nil {
				return nil, false, err
			}
			if historyHash != "" {
				if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
					observability.Cache().OnCacheSet(ctx, "artifact", len(data))
				}
			}
			artifacts = append(artifacts, Artifact{Step: f.Step, Format: format, Data: data})
		}
	}
	return artifacts, allHit && len(artifacts) > 0, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
