// Package pipeline provides the chart pipeline shared by every chatstack
// entry point.
//
// This package implements the complete preprocess → stack → render pipeline
// used by the CLI, the TUI and the live server. Centralizing it keeps the
// defaults, the cache keys and the log output identical everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Preprocess: smooth the raw counts (see package preprocess)
//  2. Stack: normalize, rank and stack the series (see package view)
//  3. Render: generate output in various formats (SVG, PNG, JSON)
//
// Each stage can be run on its own. The server, for instance, preprocesses
// once and then stacks per browser session.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{"svg", "png"}
//	result, err := runner.Execute(ctx, ds, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/preprocess"
	"github.com/matzehuels/chatstack/pkg/render/sink"
	"github.com/matzehuels/chatstack/pkg/render/styles"
	"github.com/matzehuels/chatstack/pkg/smooth"
	"github.com/matzehuels/chatstack/pkg/view"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = styles.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = styles.DefaultHeight

	// DefaultScale is the default PNG pixel density.
	DefaultScale = 2.0

	// DefaultSigma is the default Gaussian width.
	DefaultSigma = smooth.DefaultSigma
)

// DefaultTransforms is the default preprocessing chain.
var DefaultTransforms = []string{preprocess.NameBlur}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Preprocess options
	Sigma      float64  `json:"sigma,omitempty"`
	Transforms []string `json:"transforms"`
	Raw        bool     `json:"raw,omitempty"` // skip preprocessing entirely

	// Stack options
	Normalize   bool     `json:"normalize"`
	Renormalize bool     `json:"renormalize,omitempty"`
	Hidden      []string `json:"hidden,omitempty"` // series names to hide

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Title   string   `json:"title,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options for a smoothed, normalized SVG.
func DefaultOptions() Options {
	return Options{
		Sigma:      DefaultSigma,
		Transforms: append([]string(nil), DefaultTransforms...),
		Normalize:  true,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model holds the raw dataset and the preprocessed matrix.
	Model *view.Model

	// DatasetHash is the content hash of the input dataset.
	DatasetHash string

	// State is the visibility the bands were stacked under.
	State *view.State

	// Bands and Scales are the stacked chart.
	Bands  view.Bands
	Scales view.Scales

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Chart returns the sink input for r.
func (r *Result) Chart(title string) sink.Chart {
	return sink.Chart{
		Bands:      r.Bands,
		Scales:     r.Scales,
		Dates:      r.Model.Dataset().Dates,
		Normalized: r.Stats.Normalized,
		Title:      title,
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Series         int
	Dates          int
	Visible        int
	Normalized     bool
	PreprocessTime time.Duration
	StackTime      time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPreprocess(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetPreprocessDefaults sets default values for preprocessing.
func (o *Options) SetPreprocessDefaults() {
	if o.Sigma == 0 {
		o.Sigma = DefaultSigma
	}
	if o.Transforms == nil && !o.Raw {
		o.Transforms = append([]string(nil), DefaultTransforms...)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForPreprocess validates and sets defaults for preprocessing.
func (o *Options) ValidateForPreprocess() error {
	o.SetPreprocessDefaults()
	if o.Raw {
		return nil
	}
	if err := errors.ValidateSigma(o.Sigma); err != nil {
		return err
	}
	_, err := preprocess.FromNames(o.Transforms, o.Sigma)
	return err
}

// Pipeline builds the preprocessing pipeline described by o. It returns nil
// for raw charts.
func (o *Options) Pipeline() (*preprocess.Pipeline, error) {
	if o.Raw {
		return nil, nil
	}
	o.SetPreprocessDefaults()
	return preprocess.FromNames(o.Transforms, o.Sigma)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{sink.FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width, height and scale must be positive")
	}
	return sink.ValidateFormats(o.Formats)
}

// ViewOptions returns the stacking options.
func (o *Options) ViewOptions() view.Options {
	return view.Options{Normalize: o.Normalize, Renormalize: o.Renormalize}
}

// SinkOptions returns the format-independent render settings.
func (o *Options) SinkOptions() sink.Options {
	return sink.Options{Width: o.Width, Height: o.Height, Scale: o.Scale}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, hidden []int) cache.ArtifactKeyOpts {
	transforms := o.Transforms
	if o.Raw {
		transforms = []string{}
	}
	return cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		Scale:       o.Scale,
		Sigma:       o.Sigma,
		Transforms:  transforms,
		Normalize:   o.Normalize,
		Renormalize: o.Renormalize,
		Hidden:      hidden,
		Title:       o.Title,
	}
}
