package view

import (
	"fmt"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/preprocess"
)

// Model holds the immutable inputs of a chart. It is never modified after
// NewModel returns, so one Model can back many Controllers.
type Model struct {
	original *dataset.Dataset
	working  numeric.Matrix
	order    []int
	steps    []string
}

// NewModel validates ds, keeps a private copy and runs pipe over its counts.
// A nil pipe leaves counts as they are.
func NewModel(ds *dataset.Dataset, pipe *preprocess.Pipeline) (*Model, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	original := ds.Clone()

	working := numeric.Clone(original.Counts)
	var steps []string
	if pipe != nil {
		var err error
		if working, err = pipe.Run(original.Counts); err != nil {
			return nil, fmt.Errorf("preprocess: %w", err)
		}
		steps = pipe.Names()
	}

	return &Model{
		original: original,
		working:  working,
		order:    numeric.ArgsortDesc(numeric.RowSums(working)),
		steps:    steps,
	}, nil
}

// Dataset returns the raw input. Callers must not modify it.
func (m *Model) Dataset() *dataset.Dataset { return m.original }

// Working returns a copy of the preprocessed matrix.
func (m *Model) Working() numeric.Matrix { return numeric.Clone(m.working) }

// Order returns a copy of the stacking order.
func (m *Model) Order() []int { return append([]int(nil), m.order...) }

// Steps lists the preprocessing transforms that produced the working matrix.
func (m *Model) Steps() []string { return append([]string(nil), m.steps...) }

// NewState returns a state with every series shown.
func (m *Model) NewState() *State {
	shown := make([]bool, len(m.working))
	for i := range shown {
		shown[i] = true
	}
	return &State{Shown: shown, Order: m.Order()}
}

// Bands stacks the model under state.
func (m *Model) Bands(state *State, opts Options) Bands {
	return ComputeBands(m.working, m.original.Names, state, opts)
}

// NewController returns a controller with every series shown.
func (m *Model) NewController(opts Options) *Controller {
	c := &Controller{model: m, state: m.NewState(), opts: opts}
	c.recompute()
	return c
}
