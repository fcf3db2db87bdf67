// Package cli implements the chatstack command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/httputil"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/render/sink"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chatstack"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the config file location (--config).
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file, falling back to defaults when none exists.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.LoadFrom(c.configPath)
	}
	return config.Load()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadDataset reads src (a path or http(s) URL). A failure is logged here so
// every command reports it the same way before exiting.
func (c *CLI) loadDataset(ctx context.Context, src string, cfg config.Config, noCache bool) (*dataset.Dataset, error) {
	prog := newProgress(c.Logger)

	fetcher := &httputil.Fetcher{
		TTL:     cfg.Fetch.CacheTTL,
		Retries: cfg.Fetch.Retries,
		Backoff: cfg.Fetch.Backoff,
		Timeout: cfg.Fetch.Timeout,
		Logger:  c.Logger,
	}
	if !noCache {
		if fc, err := newCache(false); err == nil {
			fetcher.Cache = fc
			defer fc.Close()
		}
	}

	var spinner *Spinner
	if errors.IsURL(src) {
		spinner = newSpinnerWithContext(ctx, "Fetching "+src)
		spinner.Start()
	}
	ds, err := dataset.Fetch(ctx, src, dataset.FetchOptions{Fetcher: fetcher, Logger: c.Logger})
	if spinner != nil {
		if err == nil {
			spinner.StopWithSuccess("Fetched " + src)
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		c.Logger.Error("could not load dataset", "source", src, "error", err)
		return nil, reported{err}
	}
	prog.done("Loaded " + src)
	c.Logger.Debug("dataset", "series", ds.NumSeries(), "dates", ds.NumDates())
	return ds, nil
}

// reported marks an error the command has already logged.
type reported struct{ err error }

func (r reported) Error() string { return r.err.Error() }
func (r reported) Unwrap() error { return r.err }

// Reported reports whether err was already logged by the command that
// returned it, so main only has to set the exit code.
func Reported(err error) bool {
	var r reported
	return stderrors.As(err, &r)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chatstack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if formats := splitList(s); len(formats) > 0 {
		return formats
	}
	return []string{sink.FormatSVG}
}
