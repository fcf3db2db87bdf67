// Package config loads chatstack settings from a TOML or YAML file.
//
// The file lives in the XDG config directory:
//   - $XDG_CONFIG_HOME/chatstack/config.toml, or
//   - $XDG_CONFIG_HOME/chatstack/config.yaml
//
// Command-line flags override file values, which override [Default].
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/ingest"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/session"
)

const appName = "chatstack"

// File names searched in the config directory, in order.
var fileNames = []string{"config.toml", "config.yaml", "config.yml"}

// ChartConfig holds the [chart] section.
type ChartConfig struct {
	Width       float64  `toml:"width" yaml:"width"`
	Height      float64  `toml:"height" yaml:"height"`
	Sigma       float64  `toml:"sigma" yaml:"sigma"`
	Transforms  []string `toml:"transforms" yaml:"transforms"`
	Raw         bool     `toml:"raw" yaml:"raw"`
	Normalize   bool     `toml:"normalize" yaml:"normalize"`
	Renormalize bool     `toml:"renormalize" yaml:"renormalize"`
	Title       string   `toml:"title" yaml:"title,omitempty"`
}

// ServerConfig holds the [server] section.
type ServerConfig struct {
	Addr       string         `toml:"addr" yaml:"addr"`
	Watch      bool           `toml:"watch" yaml:"watch"`
	SessionTTL time.Duration  `toml:"session_ttl" yaml:"session_ttl"`
	Session    session.Config `toml:"session" yaml:"session"`
	Cache      string         `toml:"cache" yaml:"cache"` // file, redis or none
	// CacheRedisAddr defaults to Session.RedisAddr.
	CacheRedisAddr string `toml:"cache_redis_addr" yaml:"cache_redis_addr,omitempty"`
}

// FetchConfig holds the [fetch] section.
type FetchConfig struct {
	Retries  int           `toml:"retries" yaml:"retries"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout"`
	Backoff  time.Duration `toml:"backoff" yaml:"backoff"`
	CacheTTL time.Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// IngestConfig holds the [ingest] section.
type IngestConfig struct {
	Owner     string               `toml:"owner" yaml:"owner,omitempty"`
	Interval  int                  `toml:"interval" yaml:"interval"`
	Words     bool                 `toml:"words" yaml:"words"`
	TopWords  int                  `toml:"top_words" yaml:"top_words"`
	Stopwords bool                 `toml:"stopwords" yaml:"stopwords"`
	SQLite    ingest.SQLiteOptions `toml:"sqlite" yaml:"sqlite"`
}

// Config is the top-level configuration.
type Config struct {
	Chart  ChartConfig  `toml:"chart" yaml:"chart"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Fetch  FetchConfig  `toml:"fetch" yaml:"fetch"`
	Ingest IngestConfig `toml:"ingest" yaml:"ingest"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chart: ChartConfig{
			Width:      pipeline.DefaultWidth,
			Height:     pipeline.DefaultHeight,
			Sigma:      pipeline.DefaultSigma,
			Transforms: append([]string(nil), pipeline.DefaultTransforms...),
			Normalize:  true,
		},
		Server: ServerConfig{
			Addr:       "localhost:8080",
			SessionTTL: session.DefaultTTL,
			Session:    session.Config{Backend: session.BackendMemory},
			Cache:      "file",
		},
		Fetch: FetchConfig{
			Retries:  0,
			Timeout:  30 * time.Second,
			Backoff:  time.Second,
			CacheTTL: time.Hour,
		},
		Ingest: IngestConfig{
			Interval:  ingest.DefaultInterval,
			TopWords:  ingest.DefaultTopWords,
			Stopwords: true,
			SQLite:    ingest.DefaultSQLiteOptions(),
		},
	}
}

// Dir returns the XDG config directory for chatstack.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// Path returns the first existing config file in Dir, or the default TOML
// path when none exists.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, fileNames[0])
}

// Load reads the config file from the XDG config directory.
// Returns Default if no file exists.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path, choosing the decoder by extension.
// Returns Default if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := Decode(data, formatOf(path), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode unmarshals data in format ("toml" or "yaml") on top of cfg.
func Decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("unknown config format %q", format)
}

// SaveTo writes cfg to path, choosing the encoder by extension.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	switch formatOf(path) {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "toml"
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "chart width and height must be positive")
	}
	if !c.Chart.Raw {
		if err := errors.ValidateSigma(c.Chart.Sigma); err != nil {
			return err
		}
	}
	switch c.Server.Session.Backend {
	case "", session.BackendMemory, session.BackendFile, session.BackendRedis, session.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown session backend %q", c.Server.Session.Backend)
	}
	switch c.Server.Cache {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be file, redis or none)", c.Server.Cache)
	}
	if c.Fetch.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fetch retries must not be negative")
	}
	if c.Ingest.Interval < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "ingest interval must be at least one day")
	}
	return nil
}

// PipelineOptions returns pipeline options seeded from the [chart] section.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Sigma:       c.Chart.Sigma,
		Transforms:  append([]string{}, c.Chart.Transforms...),
		Raw:         c.Chart.Raw,
		Normalize:   c.Chart.Normalize,
		Renormalize: c.Chart.Renormalize,
		Width:       c.Chart.Width,
		Height:      c.Chart.Height,
		Title:       c.Chart.Title,
	}
}

// IngestOptions returns summarize options from the [ingest] section.
func (c Config) IngestOptions() ingest.Options {
	return ingest.Options{
		Interval:  c.Ingest.Interval,
		Words:     c.Ingest.Words,
		TopWords:  c.Ingest.TopWords,
		Stopwords: c.Ingest.Stopwords,
	}
}
