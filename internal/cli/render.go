package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/render/sink"
)

// chartFlags are the chart options shared by render, serve and tui.
type chartFlags struct {
	sigma       float64
	transforms  string
	raw         bool
	normalize   bool
	renormalize bool
	width       float64
	height      float64
	title       string
	noCache     bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	d := pipeline.DefaultOptions()
	cmd.Flags().Float64Var(&f.sigma, "sigma", d.Sigma, "gaussian smoothing width in date steps")
	cmd.Flags().StringVar(&f.transforms, "transforms", strings.Join(d.Transforms, ","), "preprocessing steps (comma-separated)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "skip preprocessing and chart the counts as-is")
	cmd.Flags().BoolVar(&f.normalize, "normalize", d.Normalize, "show each series as a share of the date total")
	cmd.Flags().BoolVar(&f.renormalize, "renormalize", false, "recompute shares over visible series only")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "chart width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "chart height in pixels")
	cmd.Flags().StringVar(&f.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact and fetch cache")
}

// options merges the config file's [chart] section with any flag the user set.
func (f *chartFlags) options(cmd *cobra.Command, cfg config.Config) pipeline.Options {
	opts := cfg.PipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("sigma") {
		opts.Sigma = f.sigma
	}
	if flags.Changed("transforms") {
		opts.Transforms = splitList(f.transforms)
	}
	if flags.Changed("raw") {
		opts.Raw = f.raw
	}
	if flags.Changed("normalize") {
		opts.Normalize = f.normalize
	}
	if flags.Changed("renormalize") {
		opts.Renormalize = f.renormalize
	}
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("title") {
		opts.Title = f.title
	}
	return opts
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	chartFlags
	output  string  // output file path (or base path for multiple outputs)
	formats string  // comma-separated output formats
	hide    string  // comma-separated series names to hide
	scale   float64 // PNG pixel density
	refresh bool    // ignore cached artifacts
}

// renderCommand creates the render command for writing static charts.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset to SVG, PNG or JSON",
		Long: `Render a dataset to static chart files.

The dataset is a local JSON file or an http(s) URL. Series named with --hide
start hidden, exactly as if they had been clicked away in the live chart.`,
		Example: `  chatstack render chats.json
  chatstack render chats.json -f svg,png -o out/chats
  chatstack render chats.json --hide alice,bob --sigma 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			popts := opts.options(cmd, cfg)
			popts.Formats = parseFormats(opts.formats)
			popts.Hidden = splitList(opts.hide)
			popts.Scale = opts.scale
			popts.Refresh = opts.refresh
			if err := sink.ValidateFormats(popts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, popts, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.hide, "hide", "", "series names to hide (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached chart exists")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, popts pipeline.Options, opts *renderOpts) error {
	ds, err := c.loadDataset(ctx, input, cfg, opts.noCache)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, ds, popts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printStats(result.Stats.Series, result.Stats.Dates, result.Stats.Visible, result.CacheInfo.RenderHit)

	base := basePath(opts.output, input)
	for _, format := range popts.Formats {
		path := base + "." + format
		if len(popts.Formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(result.Artifacts[format]))
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped; an empty output reuses
// the input name without its extension.
func basePath(output, input string) string {
	if output == "" {
		if errors.IsURL(input) {
			input = filepath.Base(input)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(sink.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
