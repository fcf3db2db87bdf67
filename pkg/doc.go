// Package pkg provides the core libraries for chatstack.
//
// # Overview
//
// chatstack charts how many words you exchanged with each contact over time
// as a stacked-area chart. The bands are smoothed, optionally shown as
// shares of each date's total and stacked with the largest series at the
// bottom. Any band can be hidden and brought back.
//
// # Architecture
//
// The typical data flow:
//
//	chat log (JSON lines or SQLite)
//	         ↓
//	    [ingest] (group by contact, bin by date, count words)
//	         ↓
//	    [dataset] (names × dates counts matrix)
//	         ↓
//	    [preprocess] + [smooth] (Gaussian blur along dates)
//	         ↓
//	    [view] (ranking, hide/show state, stacking, hover)
//	         ↓
//	    [render/sink] (SVG, PNG, JSON, live HTML page)
//
// # Quick Start
//
//	ds, _ := dataset.ReadFile("chats.json")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(ctx, ds, pipeline.Options{
//	    Normalize: true,
//	    Hidden:    []string{"alice"},
//	    Formats:   []string{"svg", "png"},
//	})
//	os.WriteFile("chats.svg", result.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// ## Chart Logic
//
// [numeric] - Matrix helpers (cumulative sums, causal convolution,
// normalization, descending argsort) built on gonum.
//
// [smooth] - Gaussian kernel and the blur applied to every series.
//
// [preprocess] - Named, ordered transforms run once per dataset.
//
// [view] - The interactive model: ranking order, shown/hidden state, band
// stacking, scales, hover lookups and the [view.Controller] event API.
//
// ## Input
//
// [dataset] - The input document, its validation and content hash.
//
// [ingest] - Chat log readers and the date binning that produces a dataset.
//
// ## Output
//
// [render/sink] - SVG (svgo), PNG (gg), JSON and the live HTML page.
//
// [render/styles] - Palette, canvas layout and area paths.
//
// ## Serving
//
// [server] - chi HTTP server with per-browser view state and dataset watch.
//
// [session] - View state stores: memory, file, Redis and MongoDB.
//
// ## Infrastructure
//
// [pipeline] - preprocess → stack → render, shared by the CLI and server.
//
// [cache] - File, Redis and null caches for fetched datasets and artifacts.
//
// [httputil] - Dataset fetching with retry and backoff.
//
// [config] - TOML or YAML configuration file.
//
// [errors] - Coded errors and input validators.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
package pkg
