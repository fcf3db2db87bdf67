// Package styles holds the visual constants of the stacked-area chart: the
// series palette, the page layout and the SVG path builder shared by every
// sink.
package styles
