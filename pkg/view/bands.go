package view

import (
	"github.com/matzehuels/chatstack/pkg/numeric"
)

// Point is one date of a stacked band: the band spans [Y0, Y0+Y] at X.
type Point struct {
	X  int     `json:"x"`
	Y0 float64 `json:"y0"`
	Y  float64 `json:"y"`
}

// Top returns Y0 + Y.
func (p Point) Top() float64 { return p.Y0 + p.Y }

// Band is one series after stacking.
type Band struct {
	Series int     `json:"series"`
	Name   string  `json:"name"`
	Rank   int     `json:"rank"`
	Points []Point `json:"points"`
	Hidden bool    `json:"hidden"`

	// HiddenSlot is the position of the series in the reselect panel: the
	// number of hidden series stacked below it. It is -1 for shown series.
	HiddenSlot int `json:"hiddenSlot"`
}

// Bands are ordered bottom to top.
type Bands []Band

// Visible returns the shown bands.
func (b Bands) Visible() Bands {
	out := make(Bands, 0, len(b))
	for _, band := range b {
		if !band.Hidden {
			out = append(out, band)
		}
	}
	return out
}

// HiddenBands returns the hidden bands in reselect panel order.
func (b Bands) HiddenBands() Bands {
	out := make(Bands, 0, len(b))
	for _, band := range b {
		if band.Hidden {
			out = append(out, band)
		}
	}
	return out
}

// BySeries returns the band of series i, or nil.
func (b Bands) BySeries(i int) *Band {
	for k := range b {
		if b[k].Series == i {
			return &b[k]
		}
	}
	return nil
}

// Values derives the per-series values that get stacked: hidden rows are
// zeroed and, with opts.Normalize, every date is turned into shares.
func Values(working numeric.Matrix, state *State, opts Options) numeric.Matrix {
	zeroed := numeric.Clone(working)
	for i := range zeroed {
		if !state.IsShown(i) {
			clear(zeroed[i])
		}
	}
	if !opts.Normalize {
		return zeroed
	}
	if opts.Renormalize {
		return numeric.NormalizeColumns(zeroed)
	}

	shares := numeric.NormalizeColumns(working)
	for i := range shares {
		if !state.IsShown(i) {
			clear(shares[i])
		}
	}
	return shares
}

// Stack layers the rows of values in order. The first index in order has
// y0 = 0 at every date.
func Stack(values numeric.Matrix, order []int) [][]Point {
	out := make([][]Point, len(values))
	if len(order) == 0 {
		return out
	}
	cols := len(values[order[0]])
	base := make([]float64, cols)
	for _, idx := range order {
		row := values[idx]
		pts := make([]Point, cols)
		for x := range pts {
			pts[x] = Point{X: x, Y0: base[x], Y: row[x]}
			base[x] += row[x]
		}
		out[idx] = pts
	}
	return out
}

// ComputeBands stacks working under state and opts. names labels the series
// and may be shorter than working (missing names stay empty). The result is
// in stacking order; working and state are not modified.
func ComputeBands(working numeric.Matrix, names []string, state *State, opts Options) Bands {
	values := Values(working, state, opts)
	points := Stack(values, state.Order)

	bands := make(Bands, 0, len(state.Order))
	hiddenSoFar := 0
	for rank, idx := range state.Order {
		b := Band{
			Series:     idx,
			Rank:       rank,
			Points:     points[idx],
			Hidden:     !state.IsShown(idx),
			HiddenSlot: -1,
		}
		if idx < len(names) {
			b.Name = names[idx]
		}
		if b.Hidden {
			b.HiddenSlot = hiddenSoFar
			hiddenSoFar++
		}
		bands = append(bands, b)
	}
	return bands
}
