package sink

import (
	"bytes"
	"fmt"
	"image/color"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/chatstack/pkg/render/styles"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	layout styles.Layout
	scale  float64
}

// WithPNGSize sets the logical canvas size.
func WithPNGSize(width, height float64) PNGOption {
	return func(r *pngRenderer) { r.layout = styles.NewLayout(width, height) }
}

// WithScale sets the pixel density (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes c.
func RenderPNG(c Chart, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{layout: styles.NewLayout(0, 0), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	f := NewFrame(c, r.layout)

	dc := gg.NewContext(int(f.Width*r.scale), int(f.Height*r.scale))
	dc.Scale(r.scale, r.scale)
	dc.SetColor(mustHex(styles.Background))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if c.Title != "" {
		dc.SetColor(mustHex(styles.Text))
		dc.DrawStringAnchored(c.Title, f.Plot.X, f.Plot.Y-14, 0, 0.5)
	}

	for _, b := range c.Bands {
		if b.Hidden || len(b.Points) == 0 {
			continue
		}
		xs, ys := styles.Polygon(b.Points, f.X, f.Y)
		dc.NewSubPath()
		dc.MoveTo(xs[0], ys[0])
		for i := 1; i < len(xs); i++ {
			dc.LineTo(xs[i], ys[i])
		}
		dc.ClosePath()
		dc.SetColor(styles.RGBA(b.Rank))
		dc.FillPreserve()
		dc.SetColor(mustHex(styles.Stroke))
		dc.SetLineWidth(0.5)
		dc.Stroke()
	}

	drawAxis(dc, f)
	drawPanel(dc, f)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawAxis(dc *gg.Context, f Frame) {
	base := f.Plot.Y + f.Plot.H
	dc.SetColor(mustHex(styles.Subtle))
	dc.SetLineWidth(1)
	dc.DrawLine(f.Plot.X, base, f.Plot.X+f.Plot.W, base)
	dc.Stroke()
	for _, t := range f.Ticks {
		dc.DrawStringAnchored(t.Label, t.X, base+12, 0, 0.5)
	}
}

func drawPanel(dc *gg.Context, f Frame) {
	size := styles.ControlSize
	for _, h := range f.Hidden {
		c, err := styles.ParseHex(h.Color)
		if err != nil {
			continue
		}
		dc.SetColor(c)
		dc.DrawRoundedRectangle(f.Panel.X, h.Y, size, size, 4)
		dc.Fill()
		dc.SetColor(mustHex(styles.Subtle))
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(f.Panel.X, h.Y, size, size, 4)
		dc.Stroke()
		dc.DrawStringAnchored(truncate(h.Name, 24), f.Panel.X+size+8, h.Y+size/2, 0, 0.5)
	}
}

// mustHex parses the package's own colour constants.
func mustHex(s string) color.RGBA {
	c, err := styles.ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
