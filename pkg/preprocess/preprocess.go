// Package preprocess composes the ordered list of transforms applied to the
// raw counts matrix before stacking.
//
// A [Pipeline] is immutable once built and never modifies the matrix handed
// to [Pipeline.Run]. Today the only transform is Gaussian smoothing; the
// list form keeps the order explicit for configurations that add more.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/smooth"
)

// Transform names accepted in configuration.
const (
	NameBlur = "blur"
)

// Transform maps a counts matrix to a new matrix of the same shape.
type Transform interface {
	Name() string
	Apply(m numeric.Matrix) (numeric.Matrix, error)
}

// Gaussian smooths every series with [smooth.Blur].
type Gaussian struct {
	Sigma float64
}

// Name returns "blur".
func (g Gaussian) Name() string { return NameBlur }

// Apply blurs m. A zero Sigma means [smooth.DefaultSigma].
func (g Gaussian) Apply(m numeric.Matrix) (numeric.Matrix, error) {
	sigma := g.Sigma
	if sigma == 0 {
		sigma = smooth.DefaultSigma
	}
	return smooth.Blur(m, sigma)
}

// Pipeline is an ordered list of transforms.
type Pipeline struct {
	steps []Transform
}

// New creates a pipeline running steps in order.
func New(steps ...Transform) *Pipeline {
	return &Pipeline{steps: append([]Transform(nil), steps...)}
}

// Default returns the standard pipeline: a single Gaussian blur.
func Default(sigma float64) *Pipeline {
	return New(Gaussian{Sigma: sigma})
}

// FromNames builds a pipeline from transform names as they appear in
// configuration. An empty list yields the identity pipeline.
func FromNames(names []string, sigma float64) (*Pipeline, error) {
	steps := make([]Transform, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case NameBlur:
			steps = append(steps, Gaussian{Sigma: sigma})
		default:
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown transform %q (must be one of: %s)", name, NameBlur)
		}
	}
	return New(steps...), nil
}

// Names lists the transform names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of transforms.
func (p *Pipeline) Len() int { return len(p.steps) }

// Run applies every transform in order to a copy of m.
func (p *Pipeline) Run(m numeric.Matrix) (numeric.Matrix, error) {
	out := numeric.Clone(m)
	for _, step := range p.steps {
		next, err := step.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
		out = next
	}
	return out, nil
}
