package view

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/chatstack/pkg/numeric"
)

const tol = 1e-9

func genWorking(t *rapid.T) numeric.Matrix {
	rows := rapid.IntRange(1, 6).Draw(t, "rows")
	cols := rapid.IntRange(1, 10).Draw(t, "cols")
	m := numeric.Zeros(rows, cols)
	for i := range m {
		for j := range m[i] {
			if rapid.Bool().Draw(t, "zero") {
				continue
			}
			m[i][j] = rapid.Float64Range(0, 500).Draw(t, "v")
		}
	}
	return m
}

func genState(t *rapid.T, m numeric.Matrix) *State {
	s := NewState(m)
	for i := range s.Shown {
		s.Shown[i] = rapid.Bool().Draw(t, "shown")
	}
	return s
}

func genOptions(t *rapid.T) Options {
	return Options{
		Normalize:   rapid.Bool().Draw(t, "normalize"),
		Renormalize: rapid.Bool().Draw(t, "renormalize"),
	}
}

func TestComputeBandsExample(t *testing.T) {
	working := numeric.Matrix{{2, 4, 6}, {1, 1, 1}}
	state := NewState(working)
	bands := ComputeBands(working, []string{"alice", "bob"}, state, Options{})

	if len(bands) != 2 {
		t.Fatalf("len(bands) = %d, want 2", len(bands))
	}
	if bands[0].Name != "alice" || bands[1].Name != "bob" {
		t.Fatalf("order = %s, %s; want alice below bob", bands[0].Name, bands[1].Name)
	}
	want := []Point{{0, 2, 1}, {1, 4, 1}, {2, 6, 1}}
	for x, p := range bands[1].Points {
		if p != want[x] {
			t.Errorf("bob[%d] = %+v, want %+v", x, p, want[x])
		}
	}
	for _, p := range bands[0].Points {
		if p.Y0 != 0 {
			t.Errorf("bottom band y0 = %v, want 0", p.Y0)
		}
	}
}

func TestComputeBandsStackingProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		working := genWorking(t)
		state := genState(t, working)
		opts := genOptions(t)

		values := Values(working, state, opts)
		bands := ComputeBands(working, nil, state, opts)

		if len(bands) != len(working) {
			t.Fatalf("bands = %d, want %d", len(bands), len(working))
		}
		for _, p := range bands[0].Points {
			if p.Y0 != 0 {
				t.Fatalf("lowest band y0 = %v at x=%d", p.Y0, p.X)
			}
		}
		top := bands[len(bands)-1]
		for x, p := range top.Points {
			var sum float64
			for i := range values {
				sum += values[i][x]
			}
			if math.Abs(p.Top()-sum) > 1e-6 {
				t.Fatalf("top at x=%d is %v, want column sum %v", x, p.Top(), sum)
			}
		}
		for k := 1; k < len(bands); k++ {
			for x := range bands[k].Points {
				if math.Abs(bands[k].Points[x].Y0-bands[k-1].Points[x].Top()) > 1e-9 {
					t.Fatalf("band %d does not start where band %d ends at x=%d", k, k-1, x)
				}
			}
		}
	})
}

func TestComputeBandsOrderIsDescendingTotals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		working := genWorking(t)
		state := NewState(working)
		totals := numeric.RowSums(working)
		bands := ComputeBands(working, nil, state, Options{})
		for k := 1; k < len(bands); k++ {
			if totals[bands[k-1].Series] < totals[bands[k].Series] {
				t.Fatalf("band %d total %v below band %d total %v", k-1, totals[bands[k-1].Series], k, totals[bands[k].Series])
			}
		}
	})
}

func TestValuesHiddenRowsAreZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		working := genWorking(t)
		state := genState(t, working)
		values := Values(working, state, genOptions(t))
		for i, row := range values {
			if state.Shown[i] {
				continue
			}
			for x, v := range row {
				if v != 0 {
					t.Fatalf("hidden series %d has %v at %d", i, v, x)
				}
			}
		}
	})
}

func TestValuesNormalization(t *testing.T) {
	working := numeric.Matrix{{2, 0, 6}, {1, 0, 2}, {1, 0, 0}}
	state := NewState(working)
	state.Shown[1] = false

	t.Run("raw", func(t *testing.T) {
		got := Values(working, state, Options{})
		if got[0][0] != 2 || got[1][0] != 0 || got[2][0] != 1 {
			t.Errorf("raw values = %v", got)
		}
	})

	t.Run("normalize keeps gap", func(t *testing.T) {
		got := Values(working, state, Options{Normalize: true})
		if math.Abs(got[0][0]-0.5) > tol || math.Abs(got[2][0]-0.25) > tol || got[1][0] != 0 {
			t.Errorf("shares at date 0 = %v, %v, %v", got[0][0], got[1][0], got[2][0])
		}
		if got[0][1] != 0 {
			t.Errorf("all-zero date should stay zero, got %v", got[0][1])
		}
	})

	t.Run("renormalize fills height", func(t *testing.T) {
		got := Values(working, state, Options{Normalize: true, Renormalize: true})
		if math.Abs(got[0][0]-2.0/3) > tol || math.Abs(got[2][0]-1.0/3) > tol {
			t.Errorf("shares at date 0 = %v, %v", got[0][0], got[2][0])
		}
		if math.Abs(got[0][2]-1) > tol {
			t.Errorf("only visible series at date 2 should hold everything, got %v", got[0][2])
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		if working[1][0] != 1 || working[0][2] != 6 {
			t.Errorf("Values modified working: %v", working)
		}
	})
}

func TestRenormalizedColumnsSumToOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		working := genWorking(t)
		state := genState(t, working)
		values := Values(working, state, Options{Normalize: true, Renormalize: true})
		for x := range working[0] {
			var visible, sum float64
			for i := range working {
				if state.Shown[i] {
					visible += working[i][x]
				}
				sum += values[i][x]
			}
			if visible == 0 {
				if sum != 0 {
					t.Fatalf("empty column %d sums to %v", x, sum)
				}
				continue
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Fatalf("column %d sums to %v, want 1", x, sum)
			}
		}
	})
}

func TestHiddenSlots(t *testing.T) {
	working := numeric.Matrix{{9}, {7}, {5}, {3}}
	state := NewState(working)
	state.Shown[0] = false
	state.Shown[2] = false

	bands := ComputeBands(working, nil, state, Options{})
	want := map[int]int{0: 0, 1: -1, 2: 1, 3: -1}
	for _, b := range bands {
		if b.HiddenSlot != want[b.Series] {
			t.Errorf("series %d slot = %d, want %d", b.Series, b.HiddenSlot, want[b.Series])
		}
	}
	if got := len(bands.HiddenBands()); got != 2 {
		t.Errorf("HiddenBands = %d, want 2", got)
	}
	if got := len(bands.Visible()); got != 2 {
		t.Errorf("Visible = %d, want 2", got)
	}
	if hidden := state.Hidden(); len(hidden) != 2 || hidden[0] != 0 || hidden[1] != 2 {
		t.Errorf("State.Hidden = %v, want [0 2]", hidden)
	}
}
