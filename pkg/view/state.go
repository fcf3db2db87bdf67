package view

import (
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

// State is the per-series visibility plus the fixed stacking order.
type State struct {
	// Shown[i] reports whether series i is drawn.
	Shown []bool `json:"shown"`

	// Order lists series indices bottom to top (largest total first).
	Order []int `json:"order"`
}

// NewState shows every series of working and orders them by descending
// row total.
func NewState(working numeric.Matrix) *State {
	shown := make([]bool, len(working))
	for i := range shown {
		shown[i] = true
	}
	return &State{
		Shown: shown,
		Order: numeric.ArgsortDesc(numeric.RowSums(working)),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		Shown: append([]bool(nil), s.Shown...),
		Order: append([]int(nil), s.Order...),
	}
}

// Len returns the number of series.
func (s *State) Len() int { return len(s.Shown) }

// IsShown reports whether series i is drawn. Out-of-range indices are hidden.
func (s *State) IsShown(i int) bool {
	return i >= 0 && i < len(s.Shown) && s.Shown[i]
}

// SetShown changes the visibility of series i.
func (s *State) SetShown(i int, shown bool) error {
	if err := errors.ValidateSeriesIndex(i, len(s.Shown)); err != nil {
		return err
	}
	s.Shown[i] = shown
	return nil
}

// ShowAll makes every series visible.
func (s *State) ShowAll() {
	for i := range s.Shown {
		s.Shown[i] = true
	}
}

// Visible returns the number of shown series.
func (s *State) Visible() int {
	n := 0
	for _, v := range s.Shown {
		if v {
			n++
		}
	}
	return n
}

// Hidden lists hidden series in stacking order.
func (s *State) Hidden() []int {
	var out []int
	for _, idx := range s.Order {
		if !s.Shown[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// Restore replaces the visibility with shown, e.g. from a stored session.
// A length mismatch (the dataset changed underneath) is an error.
func (s *State) Restore(shown []bool) error {
	if len(shown) != len(s.Shown) {
		return errors.New(errors.ErrCodeInvalidSeries, "stored view has %d series, dataset has %d", len(shown), len(s.Shown))
	}
	copy(s.Shown, shown)
	return nil
}
