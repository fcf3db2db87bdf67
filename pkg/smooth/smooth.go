// Package smooth blurs count series with a truncated Gaussian kernel.
//
// The kernel is applied causally ([numeric.Convolve1D]): the value at a date
// depends only on that date and the ones before it, with zeros assumed
// before the first date. Behaviour at the right edge is therefore lagged
// rather than clipped.
package smooth

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

// DefaultSigma is the kernel width used when none is configured.
const DefaultSigma = 1.0

// center is the tap the Gaussian peaks at.
const center = 2

// Kernel builds the L1-normalized Gaussian kernel for sigma.
// It has floor(sigma*5) taps with weight exp(-(i-2)^2 / (2 sigma^2)).
func Kernel(sigma float64) ([]float64, error) {
	if err := errors.ValidateSigma(sigma); err != nil {
		return nil, err
	}
	kernel := make([]float64, int(math.Floor(sigma*5)))
	for i := range kernel {
		d := float64(i - center)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel, nil
}

// Blur returns a copy of m with every row convolved with the Gaussian
// kernel for sigma. The input is not modified.
func Blur(m numeric.Matrix, sigma float64) (numeric.Matrix, error) {
	kernel, err := Kernel(sigma)
	if err != nil {
		return nil, err
	}
	return numeric.Convolve1D(m, kernel), nil
}
