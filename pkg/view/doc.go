// Package view turns a preprocessed counts matrix into stacked chart bands
// and tracks which series are shown.
//
// The package separates three things:
//
//   - [Model]: the immutable inputs (raw dataset, preprocessed working
//     matrix, stacking order). Safe for concurrent use.
//   - [State]: per-series visibility. Small, copyable, persisted per browser
//     session by the server.
//   - [ComputeBands]: a pure function from (working, state, options) to
//     [Bands].
//
// [Controller] combines a Model and a State behind a typed event interface
// ([Controller.OnSeriesToggle], [Controller.OnHoverAt]) and notifies
// registered [Redrawer]s after every change.
//
// # Stacking
//
// Series are stacked in descending order of their preprocessed totals. The
// first series in that order sits at the bottom (y0 = 0) and every next one
// starts where the previous one ends. Hiding a series zeroes its values; it
// keeps its place in the order so showing it again restores the exact
// values it had.
//
// # Normalization
//
// With [Options.Normalize] every date is scaled so the series' values sum to
// one (share of conversation). [Options.Renormalize] chooses what a hidden
// series does to the shares:
//
//   - false: shares are taken over all series, then hidden rows are zeroed,
//     so a gap remains at the top of the chart.
//   - true: shares are taken over the visible series only, so they fill the
//     full height again.
package view
