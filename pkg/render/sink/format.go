package sink

import (
	"slices"
	"strings"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/render/styles"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats lists the formats [Render] accepts.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// ValidateFormats rejects unknown format names.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(ValidFormats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of: %s)", f, strings.Join(ValidFormats, ", "))
		}
	}
	return nil
}

// Options are the format-independent render settings.
type Options struct {
	Width  float64
	Height float64
	Scale  float64
}

// Render produces format from c.
func Render(format string, c Chart, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(c, WithSize(opts.Width, opts.Height)), nil
	case FormatPNG:
		return RenderPNG(c, WithPNGSize(opts.Width, opts.Height), WithScale(opts.Scale))
	case FormatJSON:
		return RenderJSON(c, WithJSONFrame(opts.Width, opts.Height))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
}

func layoutFor(width, height float64) styles.Layout {
	return styles.NewLayout(width, height)
}
