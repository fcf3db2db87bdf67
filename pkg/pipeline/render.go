package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/chatstack/pkg/observability"
	"github.com/matzehuels/chatstack/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, chart sink.Chart, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := sink.ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	sopts := opts.SinkOptions()
	for _, format := range opts.Formats {
		data, err := sink.Render(format, chart, sopts)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, err
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}
