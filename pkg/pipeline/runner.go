package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/observability"
	"github.com/matzehuels/chatstack/pkg/render/sink"
	"github.com/matzehuels/chatstack/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the TUI and the server all use it so the same chart comes out
// of every entry point.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
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

// Execute runs the complete preprocess → stack → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Preprocess
	preStart := time.Now()
	model, err := r.Preprocess(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	result.Model = model
	result.Stats.PreprocessTime = time.Since(preStart)
	result.Stats.Series = ds.NumSeries()
	result.Stats.Dates = ds.NumDates()

	hash, err := ds.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash dataset: %w", err)
	}
	result.DatasetHash = hash

	r.Logger.Info("preprocessed counts",
		"series", result.Stats.Series,
		"dates", result.Stats.Dates,
		"steps", model.Steps(),
		"duration", result.Stats.PreprocessTime)

	// Stage 2: Stack
	stackStart := time.Now()
	state, bands, scales, err := r.Stack(ctx, model, opts)
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	result.State = state
	result.Bands = bands
	result.Scales = scales
	result.Stats.StackTime = time.Since(stackStart)
	result.Stats.Visible = state.Visible()
	result.Stats.Normalized = opts.Normalize

	r.Logger.Info("stacked series",
		"visible", result.Stats.Visible,
		"hidden", len(state.Hidden()),
		"duration", result.Stats.StackTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Chart(opts.Title), hash, state, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Preprocess validates ds and builds the shared chart model.
func (r *Runner) Preprocess(ctx context.Context, ds *dataset.Dataset, opts Options) (*view.Model, error) {
	if err := opts.ValidateForPreprocess(); err != nil {
		return nil, err
	}
	pipe, err := opts.Pipeline()
	if err != nil {
		return nil, err
	}

	var steps []string
	if pipe != nil {
		steps = pipe.Names()
	}
	hooks := observability.Pipeline()
	hooks.OnPreprocessStart(ctx, steps, ds.NumSeries())
	start := time.Now()
	model, err := view.NewModel(ds, pipe)
	hooks.OnPreprocessComplete(ctx, steps, time.Since(start), err)
	return model, err
}

// Stack hides the series named in opts.Hidden and stacks the rest.
func (r *Runner) Stack(ctx context.Context, model *view.Model, opts Options) (*view.State, view.Bands, view.Scales, error) {
	ds := model.Dataset()
	hooks := observability.Pipeline()
	hooks.OnStackStart(ctx, ds.NumSeries(), ds.NumDates())
	start := time.Now()

	state := model.NewState()
	for _, name := range opts.Hidden {
		i := ds.Index(name)
		if i < 0 {
			err := errors.New(errors.ErrCodeInvalidSeries, "unknown series %q", name)
			hooks.OnStackComplete(ctx, 0, time.Since(start), err)
			return nil, nil, view.Scales{}, err
		}
		if err := state.SetShown(i, false); err != nil {
			hooks.OnStackComplete(ctx, 0, time.Since(start), err)
			return nil, nil, view.Scales{}, err
		}
	}

	bands := model.Bands(state, opts.ViewOptions())
	scales := view.NewScales(bands, ds.NumDates())
	hooks.OnStackComplete(ctx, state.Visible(), time.Since(start), nil)
	return state, bands, scales, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// datasetHash and state identify the chart in the cache key; pass an empty
// hash to skip the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, chart sink.Chart, datasetHash string, state *view.State, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	useCache := datasetHash != "" && !opts.Refresh
	hidden := hiddenKey(state)

	if useCache {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format, hidden))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, key)
				break
			}
			observability.Cache().OnCacheHit(ctx, key)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, err := Render(ctx, chart, opts)
	if err != nil {
		return nil, false, err
	}

	if datasetHash != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(datasetHash, opts.ArtifactKeyOpts(format, hidden))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				r.Logger.Warn("cache write failed", "key", key, "error", err)
				continue
			}
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}

	return rendered, false, nil // Cache miss
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

// hiddenKey returns the hidden series indices in ascending order.
func hiddenKey(state *view.State) []int {
	if state == nil {
		return nil
	}
	hidden := state.Hidden()
	sort.Ints(hidden)
	return hidden
}
