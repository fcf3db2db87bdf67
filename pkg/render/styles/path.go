package styles

import (
	"strconv"
	"strings"

	"github.com/matzehuels/chatstack/pkg/view"
)

// AreaPath returns the SVG path data of a stacked band: along the top edge
// left to right, back along the bottom edge, closed. x and y map data
// coordinates to pixels. Empty input yields "".
func AreaPath(points []view.Point, x, y view.Linear) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(points) * 32)
	for i, p := range points {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		writePair(&b, x.Map(float64(p.X)), y.Map(p.Top()))
	}
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		b.WriteByte('L')
		writePair(&b, x.Map(float64(p.X)), y.Map(p.Y0))
	}
	b.WriteByte('Z')
	return b.String()
}

// Polygon returns the outline of a band as pixel coordinates, in the same
// order as AreaPath.
func Polygon(points []view.Point, x, y view.Linear) (xs, ys []float64) {
	xs = make([]float64, 0, 2*len(points))
	ys = make([]float64, 0, 2*len(points))
	for _, p := range points {
		xs = append(xs, x.Map(float64(p.X)))
		ys = append(ys, y.Map(p.Top()))
	}
	for i := len(points) - 1; i >= 0; i-- {
		xs = append(xs, x.Map(float64(points[i].X)))
		ys = append(ys, y.Map(points[i].Y0))
	}
	return xs, ys
}

func writePair(b *strings.Builder, x, y float64) {
	b.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
}
