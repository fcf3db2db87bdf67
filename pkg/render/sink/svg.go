package sink

import (
	"bytes"
	"fmt"
	"html"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/chatstack/pkg/render/styles"
)

const bandCSS = `
    .band { stroke: #fff; stroke-width: 0.5; transition: d %dms ease, opacity 0.2s ease; }
    .band:hover { opacity: 0.85; }
    .interactive .band, .interactive .reselect { cursor: pointer; }
    .axis text, .reselect text { font: 11px sans-serif; fill: %s; }
    .title { font: bold 15px sans-serif; fill: %s; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	layout      styles.Layout
	interactive bool
	tooltips    bool
	axis        bool
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.layout = styles.NewLayout(width, height) }
}

// WithLayout sets the full layout.
func WithLayout(l styles.Layout) SVGOption { return func(r *svgRenderer) { r.layout = l } }

// WithInteractive adds element ids and data attributes for the live page.
func WithInteractive() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithoutTooltips drops the per-band <title> elements.
func WithoutTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = false } }

// WithoutAxis drops the date labels.
func WithoutAxis() SVGOption { return func(r *svgRenderer) { r.axis = false } }

// RenderSVG renders c as a standalone SVG document.
func RenderSVG(c Chart, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	WriteSVG(&buf, c, opts...)
	return buf.Bytes()
}

// WriteSVG writes the SVG document for c to w.
func WriteSVG(w io.Writer, c Chart, opts ...SVGOption) {
	r := newSVGRenderer(opts...)
	f := NewFrame(c, r.layout)

	canvas := svg.New(w)
	width, height := int(f.Width), int(f.Height)
	root := []string{fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height), `id="chart"`}
	if r.interactive {
		root = append(root, `class="interactive"`)
	}
	canvas.Start(width, height, root...)
	canvas.Style("text/css", fmt.Sprintf(bandCSS, styles.TransitionMS, styles.Subtle, styles.Text))
	canvas.Rect(0, 0, width, height, "fill:"+styles.Background)

	if c.Title != "" {
		canvas.Text(int(f.Plot.X), int(f.Plot.Y)-10, c.Title, `class="title"`)
	}

	r.renderBands(canvas, f)
	if r.axis {
		renderAxis(canvas, f)
	}
	r.renderPanel(canvas, f)

	canvas.End()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		layout:   styles.NewLayout(0, 0),
		tooltips: true,
		axis:     true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderBands(canvas *svg.SVG, f Frame) {
	canvas.Group(`id="bands"`)
	for _, p := range f.Paths {
		// Hidden bands keep an element in interactive output so shape
		// transitions have something to animate from.
		if p.Hidden && !r.interactive {
			continue
		}
		attrs := []string{
			`class="band"`,
			fmt.Sprintf(`fill="%s"`, p.Color),
		}
		if r.interactive {
			attrs = append(attrs,
				fmt.Sprintf(`id="band-%d"`, p.Series),
				fmt.Sprintf(`data-series="%d"`, p.Series),
				fmt.Sprintf(`data-name="%s"`, html.EscapeString(p.Name)),
			)
		}
		canvas.Group(attrs...)
		if r.tooltips && !p.Hidden {
			canvas.Title(fmt.Sprintf("%s: %s", p.Name, p.Total))
		}
		canvas.Path(pathOrEmpty(p.D))
		canvas.Gend()
	}
	canvas.Gend()
}

func renderAxis(canvas *svg.SVG, f Frame) {
	y := int(f.Plot.Y + f.Plot.H + 16)
	canvas.Group(`class="axis"`)
	canvas.Line(int(f.Plot.X), int(f.Plot.Y+f.Plot.H), int(f.Plot.X+f.Plot.W), int(f.Plot.Y+f.Plot.H),
		"stroke:"+styles.Subtle+";stroke-width:1")
	for _, t := range f.Ticks {
		canvas.Text(int(t.X), y, t.Label, `text-anchor="start"`)
	}
	canvas.Gend()
}

func (r *svgRenderer) renderPanel(canvas *svg.SVG, f Frame) {
	canvas.Group(`id="reselect"`)
	size := int(styles.ControlSize)
	for _, h := range f.Hidden {
		x, y := int(f.Panel.X), int(h.Y)
		attrs := []string{`class="reselect"`}
		if r.interactive {
			attrs = append(attrs,
				fmt.Sprintf(`id="reselect-%d"`, h.Series),
				fmt.Sprintf(`data-series="%d"`, h.Series),
			)
		}
		canvas.Group(attrs...)
		if r.tooltips {
			canvas.Title("show " + h.Name)
		}
		canvas.Roundrect(x, y, size, size, 4, 4, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", h.Color, styles.Subtle))
		canvas.Text(x+size+8, y+size/2+4, truncate(h.Name, 24))
		canvas.Gend()
	}
	canvas.Gend()
}

// pathOrEmpty keeps the d attribute valid for hidden bands.
func pathOrEmpty(d string) string {
	if d == "" {
		return "M0,0Z"
	}
	return d
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
