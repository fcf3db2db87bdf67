package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether src looks like an http(s) URL rather than a file path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// MaxSigma is the widest accepted Gaussian width (a 5000-tap kernel).
const MaxSigma = 1000

// ValidateSigma checks that a Gaussian width is usable for smoothing.
// The kernel has floor(sigma*5) taps, so sigma below 0.2 yields no taps at all.
func ValidateSigma(sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return New(ErrCodeInvalidSigma, "sigma must be finite, got %v", sigma)
	}
	if sigma <= 0 {
		return New(ErrCodeInvalidSigma, "sigma must be positive, got %v", sigma)
	}
	if sigma > MaxSigma {
		return New(ErrCodeInvalidSigma, "sigma %v is too large (max %v)", sigma, MaxSigma)
	}
	if math.Floor(sigma*5) < 1 {
		return New(ErrCodeInvalidSigma, "sigma %v is too small (kernel would be empty, need sigma >= 0.2)", sigma)
	}
	return nil
}

// ValidateSeriesIndex checks that index addresses one of n series.
func ValidateSeriesIndex(index, n int) error {
	if index < 0 || index >= n {
		return New(ErrCodeInvalidSeries, "series index %d out of range [0, %d)", index, n)
	}
	return nil
}

// ValidateSeriesName validates a series label from an input document.
//
// Names are displayed verbatim in tooltips and the reselect panel, so they
// must be non-empty, at most 256 characters and free of control characters.
func ValidateSeriesName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidDataset, "series name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidDataset, "series name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "series name %q contains control characters", name)
		}
	}
	return nil
}

// ValidatePath validates a local file path given on the command line.
// It rejects empty paths and paths containing null bytes or control characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
