package view

import (
	"fmt"

	"github.com/matzehuels/chatstack/pkg/dataset"
)

// TooltipWords is the number of words listed in a hover tooltip.
const TooltipWords = 5

// HoverInfo describes one visible series at the hovered date.
type HoverInfo struct {
	Series int                 `json:"series"`
	Name   string              `json:"name"`
	X      int                 `json:"x"`
	Date   string              `json:"date"`
	Value  float64             `json:"value"`
	Label  string              `json:"label"`
	Words  []dataset.WordCount `json:"words,omitempty"`
}

// Text renders the tooltip line, "alice, 2014-01-26: 12.3%".
func (h HoverInfo) Text() string {
	return fmt.Sprintf("%s, %s: %s", h.Name, h.Date, h.Label)
}

// FormatValue renders a band value for display: a percentage when values are
// shares, a word count otherwise.
func FormatValue(v float64, normalized bool) string {
	if normalized {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.1f words", v)
}

// ClampX limits a hovered index to [0, dates-1].
func ClampX(x, dates int) int {
	if dates <= 0 {
		return 0
	}
	return min(max(x, 0), dates-1)
}
