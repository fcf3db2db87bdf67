package styles

import (
	"image/color"
	"strings"
	"testing"

	"github.com/matzehuels/chatstack/pkg/view"
)

func TestColor(t *testing.T) {
	if Color(0) != "#1f77b4" {
		t.Errorf("Color(0) = %s", Color(0))
	}
	if Color(20) != Color(0) || Color(21) != Color(1) {
		t.Error("palette should wrap after 20 colours")
	}
	if Color(-3) != Color(3) {
		t.Error("negative ranks should not panic")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#1f77b4", color.RGBA{0x1f, 0x77, 0xb4, 0xff}, false},
		{"fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#12345", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Hex(RGBA(2)) != Color(2) {
		t.Errorf("Hex(RGBA(2)) = %s, want %s", Hex(RGBA(2)), Color(2))
	}
}

func TestLayout(t *testing.T) {
	l := NewLayout(0, 0)
	if l.Width != DefaultWidth || l.Height != DefaultHeight {
		t.Fatalf("defaults not applied: %+v", l)
	}
	plot, panel := l.Plot(), l.Panel()
	if plot.X+plot.W >= panel.X {
		t.Errorf("panel %+v overlaps plot %+v", panel, plot)
	}
	if panel.X+panel.W > l.Width {
		t.Errorf("panel exceeds canvas: %+v", panel)
	}
	if got := l.SlotY(2) - l.SlotY(1); got != ControlSize*ControlSpacing {
		t.Errorf("slot pitch = %v, want %v", got, ControlSize*ControlSpacing)
	}
	if l.WithTitle().Plot().Y <= plot.Y {
		t.Error("title should push the plot down")
	}
}

func TestAreaPath(t *testing.T) {
	pts := []view.Point{{X: 0, Y0: 0, Y: 1}, {X: 1, Y0: 1, Y: 1}}
	x := view.Linear{Domain: view.Domain{0, 1}, Range: view.Domain{0, 100}}
	y := view.Linear{Domain: view.Domain{0, 2}, Range: view.Domain{100, 0}}

	got := AreaPath(pts, x, y)
	want := "M0.00,50.00L100.00,0.00L100.00,50.00L0.00,100.00Z"
	if got != want {
		t.Errorf("AreaPath = %s, want %s", got, want)
	}
	if AreaPath(nil, x, y) != "" {
		t.Error("empty band should give empty path")
	}

	xs, ys := Polygon(pts, x, y)
	if len(xs) != 4 || len(ys) != 4 || xs[1] != 100 || ys[3] != 100 {
		t.Errorf("Polygon = %v, %v", xs, ys)
	}
	if strings.Count(got, "L") != len(xs)-1 {
		t.Error("AreaPath and Polygon disagree on vertex count")
	}
}
