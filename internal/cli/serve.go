package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/config"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/server"
	"github.com/matzehuels/chatstack/pkg/session"
)

type serveOpts struct {
	chartFlags
	addr     string
	watch    bool
	sessions string
	redis    string
	mongo    string
	cache    string
}

// serveCommand creates the serve command for the live chart.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve the interactive chart over HTTP",
		Long: `Serve the interactive chart.

Click a band to hide it, click its entry in the panel to bring it back and
hover for the words behind each value. Every browser keeps its own view.
With --watch the chart follows changes to the dataset file.`,
		Example: `  chatstack serve chats.json
  chatstack serve chats.json --addr :9000 --watch
  chatstack serve chats.json --sessions redis --redis localhost:6379`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			return c.runServe(cmd.Context(), args[0], cfg, opts.options(cmd, cfg), opts.noCache)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the dataset when the file changes")
	cmd.Flags().StringVar(&opts.sessions, "sessions", session.BackendMemory, "session store: memory, file, redis, mongo")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address for sessions and cache")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "mongodb URI for sessions")
	cmd.Flags().StringVar(&opts.cache, "cache", "file", "artifact cache: file, redis, none")

	return cmd
}

// apply copies the server flags the user set onto cfg.
func (o *serveOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if flags.Changed("watch") {
		cfg.Server.Watch = o.watch
	}
	if flags.Changed("sessions") {
		cfg.Server.Session.Backend = o.sessions
	}
	if flags.Changed("redis") {
		cfg.Server.Session.RedisAddr = o.redis
		cfg.Server.CacheRedisAddr = o.redis
	}
	if flags.Changed("mongo") {
		cfg.Server.Session.MongoURI = o.mongo
	}
	if flags.Changed("cache") {
		cfg.Server.Cache = o.cache
	}
	if o.noCache {
		cfg.Server.Cache = "none"
	}
}

func (c *CLI) runServe(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, noCache bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ds, err := c.loadDataset(ctx, input, cfg, noCache)
	if err != nil {
		return err
	}

	store, err := session.Open(ctx, cfg.Server.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	c.Logger.Debug("session store", "backend", cfg.Server.Session.Backend)

	artifacts, err := c.serverCache(ctx, cfg.Server)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(artifacts, nil, c.Logger)
	defer runner.Close()

	srv, err := server.New(ctx, ds, server.Config{
		Addr:        cfg.Server.Addr,
		DatasetPath: input,
		Watch:       cfg.Server.Watch && !errors.IsURL(input),
		Options:     opts,
		Runner:      runner,
		Sessions:    store,
		SessionTTL:  cfg.Server.SessionTTL,
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %s", input)
	printLink("Open in a browser", "http://"+cfg.Server.Addr)
	return srv.Run(ctx)
}

// serverCache opens the artifact cache named by cfg.Cache.
func (c *CLI) serverCache(ctx context.Context, cfg config.ServerConfig) (cache.Cache, error) {
	switch cfg.Cache {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		addr := cfg.CacheRedisAddr
		if addr == "" {
			addr = cfg.Session.RedisAddr
		}
		rc, err := cache.NewRedisCache(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	case "", "file":
		return newCache(false)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be file, redis or none)", cfg.Cache)
}
