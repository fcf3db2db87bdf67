package styles

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Category20 is the twenty-colour categorical palette (pairs of dark and
// light shades) used for series, indexed by stacking rank.
var Category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// Page colours.
const (
	Background = "#ffffff"
	Text       = "#333333"
	Subtle     = "#777777"
	Stroke     = "#ffffff"
	PanelFill  = "#f7f7f7"
)

// Color returns the palette colour for rank, wrapping after 20.
func Color(rank int) string {
	if rank < 0 {
		rank = -rank
	}
	return Category20[rank%len(Category20)]
}

// RGBA returns Color(rank) as an opaque colour.
func RGBA(rank int) color.RGBA {
	c, _ := ParseHex(Color(rank))
	return c
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
