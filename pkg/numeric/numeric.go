// Package numeric provides the small set of array utilities the chart
// pipeline is built from.
//
// All functions operate on [Matrix] values (rows are series, columns are
// dates) and never modify their inputs: every result is a fresh copy. The
// vector kernels delegate to gonum's floats package.
//
// # Operations
//
//   - [CumSum]: cumulative sum along an axis
//   - [Convolve1D]: causal row-wise convolution with implicit left zero padding
//   - [Linspace]: evenly spaced sample points
//   - [NormalizeRows]: scale rows to sum to one, leaving all-zero rows alone
//   - [ArgsortDesc]: index permutation ordering values from largest to smallest
//
// Normalizing each date across series (the "share of conversation" view) is
// expressed as Transpose, NormalizeRows, Transpose:
//
//	shares := numeric.Transpose(numeric.NormalizeRows(numeric.Transpose(counts)))
package numeric

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Axis selects the direction of a reduction.
type Axis int

const (
	// Columns accumulates down each column (across series for a fixed date).
	Columns Axis = 0
	// Rows accumulates along each row (across dates for a fixed series).
	Rows Axis = 1
)

// Matrix is a dense row-major 2D array. Rows may in principle differ in
// length; the dataset layer guarantees they do not.
type Matrix [][]float64

// Clone returns a deep copy of m.
func Clone(m Matrix) Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Zeros returns an r×c matrix of zeros.
func Zeros(r, c int) Matrix {
	out := make(Matrix, r)
	for i := range out {
		out[i] = make([]float64, c)
	}
	return out
}

// Transpose returns the transpose of m. The column count is taken from the
// first row.
func Transpose(m Matrix) Matrix {
	if len(m) == 0 {
		return Matrix{}
	}
	cols := len(m[0])
	out := Zeros(cols, len(m))
	for i, row := range m {
		for j := 0; j < cols && j < len(row); j++ {
			out[j][i] = row[j]
		}
	}
	return out
}

// RowSums returns the sum of every row.
func RowSums(m Matrix) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = floats.Sum(row)
	}
	return out
}

// CumSum returns the cumulative sum of m along axis.
func CumSum(m Matrix, axis Axis) Matrix {
	if axis == Columns {
		return Transpose(CumSum(Transpose(m), Rows))
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = floats.CumSum(make([]float64, len(row)), row)
	}
	return out
}

// Convolve1D convolves filter with every row of m.
//
// The convolution is causal: out[j] = Σ m[j-k]*filter[k] for
// k < min(len(filter), j+1). Positions before the start of a row contribute
// zero. Output rows have the same length as input rows. To convolve along
// columns, transpose first.
func Convolve1D(m Matrix, filter []float64) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		dst := make([]float64, len(row))
		for j := range row {
			var val float64
			for k := 0; k < min(len(filter), j+1); k++ {
				val += row[j-k] * filter[k]
			}
			dst[j] = val
		}
		out[i] = dst
	}
	return out
}

// Linspace returns n evenly spaced points between a and b inclusive.
// It returns an empty slice for n <= 0 and [a] for n == 1.
func Linspace(a, b float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}

// NormalizeRows returns a copy of m whose rows each sum to one.
// Rows that sum to zero are copied unchanged so no NaN ratios appear.
func NormalizeRows(m Matrix) Matrix {
	out := Clone(m)
	for _, row := range out {
		sum := floats.Sum(row)
		if sum == 0 {
			continue
		}
		floats.Scale(1/sum, row)
	}
	return out
}

// NormalizeColumns returns a copy of m whose columns each sum to one,
// leaving all-zero columns unchanged.
func NormalizeColumns(m Matrix) Matrix {
	return Transpose(NormalizeRows(Transpose(m)))
}

// ArgsortDesc returns the indices that order v from largest to smallest.
// Exact ties keep their input order.
func ArgsortDesc(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return v[idx[a]] > v[idx[b]]
	})
	return idx
}

// Max returns the largest element of m, or 0 for an empty matrix.
func Max(m Matrix) float64 {
	var best float64
	first := true
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		if v := floats.Max(row); first || v > best {
			best = v
			first = false
		}
	}
	return best
}
