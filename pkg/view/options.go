package view

// Options controls how values are derived before stacking.
type Options struct {
	// Normalize scales every date to shares summing to one.
	Normalize bool `json:"normalize" toml:"normalize" yaml:"normalize"`

	// Renormalize spreads shares over the visible series only. It has no
	// effect without Normalize.
	Renormalize bool `json:"renormalize" toml:"renormalize" yaml:"renormalize"`
}

// DefaultOptions returns normalized shares without renormalization.
func DefaultOptions() Options {
	return Options{Normalize: true}
}
