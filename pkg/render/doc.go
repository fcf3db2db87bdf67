// Package render groups the chart output packages.
//
//   - [sink]: SVG, PNG, JSON and HTML encoders for a stacked chart
//   - [styles]: palette, canvas layout and band paths shared by the sinks
//
// Every sink draws from the same [sink.Frame], the pixel geometry of one
// chart, so an SVG, a PNG and the live page agree on every coordinate.
//
//	frame := sink.NewFrame(chart, styles.NewLayout(960, 500))
//	svg := sink.RenderSVG(chart, sink.WithSize(960, 500))
//
// [sink]: https://pkg.go.dev/github.com/matzehuels/chatstack/pkg/render/sink
// [styles]: https://pkg.go.dev/github.com/matzehuels/chatstack/pkg/render/styles
package render
