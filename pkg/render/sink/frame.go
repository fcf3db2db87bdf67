package sink

import (
	"github.com/matzehuels/chatstack/pkg/render/styles"
	"github.com/matzehuels/chatstack/pkg/view"
)

// Chart is everything a sink needs to draw.
type Chart struct {
	Bands      view.Bands
	Scales     view.Scales
	Dates      []string
	Normalized bool
	Title      string
}

// Frame is the pixel geometry of a chart.
type Frame struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Plot   styles.Rect   `json:"plot"`
	Panel  styles.Rect   `json:"panel"`
	Paths  []FramePath   `json:"paths"`
	Hidden []FrameSlot   `json:"hidden"`
	Ticks  []FrameTick   `json:"ticks"`
	Scales view.Scales   `json:"scales"`
	X      view.Linear   `json:"-"`
	Y      view.Linear   `json:"-"`
	Layout styles.Layout `json:"-"`
}

// FramePath is one band's outline.
type FramePath struct {
	Series int    `json:"series"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	D      string `json:"d"`
	Hidden bool   `json:"hidden"`
	Total  string `json:"total"`
}

// FrameSlot is one row of the reselect panel.
type FrameSlot struct {
	Series int     `json:"series"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Slot   int     `json:"slot"`
	Y      float64 `json:"y"`
}

// FrameTick is a date label on the x axis.
type FrameTick struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// maxTicks bounds the number of date labels.
const maxTicks = 8

// NewFrame lays c out on l. Hidden bands keep a collapsed outline (zero
// height at their stacking position) so the live page can animate them.
func NewFrame(c Chart, l styles.Layout) Frame {
	if c.Title != "" && l.TitleSize == 0 {
		l = l.WithTitle()
	}
	plot := l.Plot()
	xs, ys := c.Scales.Project(plot.W, plot.H)
	xs.Range = view.Domain{plot.X, plot.X + plot.W}
	ys.Range = view.Domain{plot.Y + plot.H, plot.Y}

	f := Frame{
		Width:  l.Width,
		Height: l.Height,
		Plot:   plot,
		Panel:  l.Panel(),
		X:      xs,
		Y:      ys,
		Scales: c.Scales,
		Layout: l,
	}

	for _, b := range c.Bands {
		color := styles.Color(b.Rank)
		fp := FramePath{
			Series: b.Series,
			Name:   b.Name,
			Color:  color,
			Hidden: b.Hidden,
			Total:  bandTotal(b, c.Normalized),
		}
		fp.D = styles.AreaPath(b.Points, xs, ys)
		f.Paths = append(f.Paths, fp)

		if b.Hidden {
			f.Hidden = append(f.Hidden, FrameSlot{
				Series: b.Series,
				Name:   b.Name,
				Color:  color,
				Slot:   b.HiddenSlot,
				Y:      l.SlotY(b.HiddenSlot),
			})
		}
	}

	f.Ticks = ticks(c.Dates, xs)
	return f
}

func ticks(dates []string, x view.Linear) []FrameTick {
	if len(dates) == 0 {
		return nil
	}
	step := max(1, (len(dates)+maxTicks-1)/maxTicks)
	var out []FrameTick
	for i := 0; i < len(dates); i += step {
		out = append(out, FrameTick{X: x.Map(float64(i)), Label: dates[i]})
	}
	return out
}

// bandTotal summarizes a band for its tooltip: mean share or total words.
func bandTotal(b view.Band, normalized bool) string {
	if len(b.Points) == 0 {
		return view.FormatValue(0, normalized)
	}
	var sum float64
	for _, p := range b.Points {
		sum += p.Y
	}
	if normalized {
		return view.FormatValue(sum/float64(len(b.Points)), true)
	}
	return view.FormatValue(sum, false)
}
