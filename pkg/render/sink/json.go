package sink

import (
	json "github.com/goccy/go-json"

	"github.com/matzehuels/chatstack/pkg/view"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	frame  bool
	width  float64
	height float64
}

// WithJSONFrame includes the pixel geometry (paths and reselect slots) for
// a width × height canvas.
func WithJSONFrame(width, height float64) JSONOption {
	return func(r *jsonRenderer) { r.frame, r.width, r.height = true, width, height }
}

type jsonOutput struct {
	Title      string      `json:"title,omitempty"`
	Normalized bool        `json:"normalized"`
	Dates      []string    `json:"dates"`
	Scales     view.Scales `json:"scales"`
	Bands      view.Bands  `json:"bands"`
	Frame      *Frame      `json:"frame,omitempty"`
}

// RenderJSON exports the bands and scales as a pretty-printed JSON document.
//
// The document is the data interchange format of the chart: the live page
// consumes it after every toggle, and external tools can redraw the chart
// without recomputing the stack.
func RenderJSON(c Chart, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:      c.Title,
		Normalized: c.Normalized,
		Dates:      c.Dates,
		Scales:     c.Scales,
		Bands:      c.Bands,
	}
	if out.Bands == nil {
		out.Bands = view.Bands{}
	}
	if r.frame {
		f := NewFrame(c, layoutFor(r.width, r.height))
		out.Frame = &f
	}
	return json.MarshalIndent(out, "", "  ")
}
