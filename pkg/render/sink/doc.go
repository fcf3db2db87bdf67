// Package sink renders stacked chart bands into output formats.
//
// # Overview
//
// A "sink" transforms [view.Bands] plus their [view.Scales] into a final
// output format:
//
//   - SVG: vector chart with per-band tooltips and a reselect panel
//   - PNG: raster chart drawn with gg
//   - JSON: band and scale data for external tools
//   - HTML: the live page served by `chatstack serve`
//
// Every sink draws from the same [Frame], so the live page's updates line
// up with its initial SVG exactly.
//
// # SVG Output
//
// [RenderSVG] emits one <path> per visible band, coloured by stacking rank.
// Each band carries a <title> with the series name and total so static
// exports keep hover information. [WithInteractive] adds the ids and data
// attributes the live page script binds to.
//
// # Adding a Sink
//
// New sinks take a [Chart] and functional options, as the existing ones do,
// and are registered in [Render].
//
// [view.Bands]: github.com/matzehuels/chatstack/pkg/view#Bands
// [view.Scales]: github.com/matzehuels/chatstack/pkg/view#Scales
package sink
