package view

import (
	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/numeric"
	"github.com/matzehuels/chatstack/pkg/preprocess"
)

// Redrawer is notified with fresh bands and scales after every change.
type Redrawer interface {
	Redraw(bands Bands, scales Scales)
}

// RedrawFunc adapts a function to [Redrawer].
type RedrawFunc func(bands Bands, scales Scales)

// Redraw calls f.
func (f RedrawFunc) Redraw(bands Bands, scales Scales) { f(bands, scales) }

// Controller is the interactive view of one chart: a shared [Model], its own
// [State] and the listeners to redraw.
//
// A Controller is not safe for concurrent use. Events are expected to run one
// at a time, each to completion.
type Controller struct {
	model     *Model
	state     *State
	opts      Options
	bands     Bands
	scales    Scales
	redrawers []Redrawer
}

// NewController builds a [Model] for ds and returns a controller over it.
func NewController(ds *dataset.Dataset, pipe *preprocess.Pipeline, opts Options) (*Controller, error) {
	m, err := NewModel(ds, pipe)
	if err != nil {
		return nil, err
	}
	return m.NewController(opts), nil
}

// Model returns the shared inputs.
func (c *Controller) Model() *Model { return c.model }

// Options returns the stacking options.
func (c *Controller) Options() Options { return c.opts }

// State returns a copy of the current visibility.
func (c *Controller) State() *State { return c.state.Clone() }

// Bands returns the bands of the last redraw.
func (c *Controller) Bands() Bands { return c.bands }

// Scales returns the scales of the last redraw.
func (c *Controller) Scales() Scales { return c.scales }

// OnRedraw registers r. It is called on every subsequent change.
func (c *Controller) OnRedraw(r Redrawer) {
	c.redrawers = append(c.redrawers, r)
}

// OnSeriesToggle hides a shown series or shows a hidden one, then redraws.
func (c *Controller) OnSeriesToggle(index int) (Bands, error) {
	return c.set(index, !c.state.IsShown(index))
}

// Hide hides series index. Hiding a hidden series still redraws.
func (c *Controller) Hide(index int) (Bands, error) {
	return c.set(index, false)
}

// Show restores series index to its original values.
func (c *Controller) Show(index int) (Bands, error) {
	return c.set(index, true)
}

// ShowAll makes every series visible.
func (c *Controller) ShowAll() Bands {
	c.state.ShowAll()
	c.Redraw()
	return c.bands
}

// Restore applies stored visibility without notifying listeners.
func (c *Controller) Restore(shown []bool) error {
	if err := c.state.Restore(shown); err != nil {
		return err
	}
	c.recompute()
	return nil
}

func (c *Controller) set(index int, shown bool) (Bands, error) {
	if err := c.state.SetShown(index, shown); err != nil {
		return nil, err
	}
	c.Redraw()
	return c.bands, nil
}

// Redraw recomputes bands and scales and notifies every listener.
func (c *Controller) Redraw() {
	c.recompute()
	for _, r := range c.redrawers {
		r.Redraw(c.bands, c.scales)
	}
}

func (c *Controller) recompute() {
	c.bands = c.model.Bands(c.state, c.opts)
	c.scales = NewScales(c.bands, c.model.original.NumDates())
}

// Values returns the current stacked values of series index: its share or
// smoothed count per date, or zeros while hidden.
func (c *Controller) Values(index int) []float64 {
	b := c.bands.BySeries(index)
	if b == nil {
		return nil
	}
	out := make([]float64, len(b.Points))
	for i, p := range b.Points {
		out[i] = p.Y
	}
	return out
}

// Current returns the pre-stack values of every series under the current
// state.
func (c *Controller) Current() numeric.Matrix {
	return Values(c.model.working, c.state, c.opts)
}

// OnHoverAt describes every visible series at date index x, bottom to top.
// x is clamped into the date range.
func (c *Controller) OnHoverAt(x int) []HoverInfo {
	ds := c.model.original
	x = ClampX(x, ds.NumDates())

	out := make([]HoverInfo, 0, len(c.bands))
	for _, b := range c.bands {
		if b.Hidden || x >= len(b.Points) {
			continue
		}
		v := b.Points[x].Y
		out = append(out, HoverInfo{
			Series: b.Series,
			Name:   b.Name,
			X:      x,
			Date:   ds.Dates[x],
			Value:  v,
			Label:  FormatValue(v, c.opts.Normalize),
			Words:  ds.TopWords(b.Series, x, TooltipWords),
		})
	}
	return out
}
