package styles

// Interaction constants.
const (
	// ControlSize is the side of a reselect swatch in pixels.
	ControlSize = 22.0

	// ControlSpacing is the vertical pitch of reselect rows as a multiple of
	// ControlSize.
	ControlSpacing = 1.25

	// TransitionMS is the duration of the shape transition after a redraw.
	TransitionMS = 1200

	// TooltipFadeMS is the tooltip fade-in duration.
	TooltipFadeMS = 200
)

// Default canvas size.
const (
	DefaultWidth  = 960.0
	DefaultHeight = 500.0
)

// Rect is an axis-aligned box.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Layout splits the canvas into the plot area, the date axis below it and
// the reselect panel on the right.
type Layout struct {
	Width  float64
	Height float64

	Margin     float64
	AxisHeight float64
	PanelWidth float64
	TitleSize  float64
}

// NewLayout returns the standard layout for a width × height canvas. Zero
// sizes use the defaults.
func NewLayout(width, height float64) Layout {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return Layout{
		Width:      width,
		Height:     height,
		Margin:     20,
		AxisHeight: 24,
		PanelWidth: 200,
		TitleSize:  0,
	}
}

// WithTitle reserves room for a title line.
func (l Layout) WithTitle() Layout {
	l.TitleSize = 28
	return l
}

// Plot returns the area the bands are drawn into.
func (l Layout) Plot() Rect {
	x := l.Margin
	y := l.Margin + l.TitleSize
	w := l.Width - l.PanelWidth - 2*l.Margin
	h := l.Height - y - l.Margin - l.AxisHeight
	return Rect{X: x, Y: y, W: max(w, 1), H: max(h, 1)}
}

// Panel returns the reselect panel area.
func (l Layout) Panel() Rect {
	p := l.Plot()
	return Rect{X: p.X + p.W + l.Margin, Y: p.Y, W: l.PanelWidth - l.Margin, H: p.H}
}

// SlotY returns the top of reselect row slot inside the panel.
func (l Layout) SlotY(slot int) float64 {
	return l.Panel().Y + float64(slot)*ControlSize*ControlSpacing
}
