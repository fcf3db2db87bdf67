package view

// Domain is a closed numeric interval.
type Domain [2]float64

// Scales are the chart's data domains.
type Scales struct {
	X Domain `json:"x"`
	Y Domain `json:"y"`
}

// NewScales returns x = [0, dates] and y = [0, max stacked height]. The y
// maximum falls back to 1 when nothing is visible so projections stay finite.
func NewScales(bands Bands, dates int) Scales {
	var top float64
	for _, b := range bands {
		for _, p := range b.Points {
			top = max(top, p.Top())
		}
	}
	if top <= 0 {
		top = 1
	}
	return Scales{
		X: Domain{0, float64(dates)},
		Y: Domain{0, top},
	}
}

// Linear maps a domain onto a pixel range.
type Linear struct {
	Domain Domain
	Range  Domain
}

// Map projects v.
func (l Linear) Map(v float64) float64 {
	span := l.Domain[1] - l.Domain[0]
	if span == 0 {
		return l.Range[0]
	}
	t := (v - l.Domain[0]) / span
	return l.Range[0] + t*(l.Range[1]-l.Range[0])
}

// Invert maps a pixel position back into the domain.
func (l Linear) Invert(px float64) float64 {
	span := l.Range[1] - l.Range[0]
	if span == 0 {
		return l.Domain[0]
	}
	t := (px - l.Range[0]) / span
	return l.Domain[0] + t*(l.Domain[1]-l.Domain[0])
}

// Project returns pixel scales for a width × height plot area. The y axis
// grows upwards.
func (s Scales) Project(width, height float64) (x, y Linear) {
	x = Linear{Domain: s.X, Range: Domain{0, width}}
	y = Linear{Domain: s.Y, Range: Domain{height, 0}}
	return x, y
}
