// Package server serves the live interactive chart.
//
// Every browser gets a session cookie. Its view state (which series are
// hidden) lives in a [session.Store]; the preprocessed model is shared by all
// sessions and replaced as a whole when the dataset file changes on disk.
//
// # Routes
//
//	GET  /                          HTML page with the interactive chart
//	GET  /chart.svg                 static chart (also .png and .json)
//	GET  /api/bands                 bands, scales and frame geometry
//	GET  /api/dataset               the raw input document
//	POST /api/series/{index}/toggle hide or show one series
//	POST /api/series/{index}/show   show one series
//	POST /api/series/{index}/hide   hide one series
//	POST /api/reset                 show every series
//	GET  /api/hover?x=N             tooltip lines for date index N
//	GET  /healthz                   liveness probe
//
// Requests of one session run one at a time; different sessions run in
// parallel.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/pipeline"
	"github.com/matzehuels/chatstack/pkg/session"
	"github.com/matzehuels/chatstack/pkg/view"
)

// Defaults for Config.
const (
	DefaultAddr            = "localhost:8080"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultCleanupInterval = 10 * time.Minute
)

// CookieName is the session cookie.
const CookieName = "chatstack_session"

// Config configures a Server.
type Config struct {
	Addr string

	// DatasetPath is reloaded on change when Watch is set.
	DatasetPath string
	Watch       bool

	Options    pipeline.Options
	Runner     *pipeline.Runner
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *log.Logger

	ShutdownTimeout time.Duration
	CleanupInterval time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
	if c.Sessions == nil {
		c.Sessions = session.NewMemoryStore()
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = session.DefaultTTL
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
}

// chart is the immutable state shared by every session.
type chart struct {
	model *view.Model
	hash  string
}

// Server is the live chart HTTP server.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router

	mu      sync.RWMutex // guards current
	current *chart

	locks keyedMutex
}

// New preprocesses ds and returns a server ready to Run.
func New(ctx context.Context, ds *dataset.Dataset, cfg Config) (*Server, error) {
	cfg.setDefaults()
	if err := cfg.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		locks:  keyedMutex{locks: make(map[string]*refLock)},
	}
	if err := s.Reload(ctx, ds); err != nil {
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/chart.svg", s.handleChart("svg"))
	r.Get("/chart.png", s.handleChart("png"))
	r.Get("/chart.json", s.handleChart("json"))
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/bands", s.handleBands)
		r.Get("/dataset", s.handleDataset)
		r.Get("/hover", s.handleHover)
		r.Post("/reset", s.handleReset)
		r.Route("/series/{index}", func(r chi.Router) {
			r.Post("/toggle", s.handleSeries(actionToggle))
			r.Post("/show", s.handleSeries(actionShow))
			r.Post("/hide", s.handleSeries(actionHide))
		})
	})
	return r
}

// Reload swaps in a new dataset. Sessions bound to the previous dataset are
// reset to all-shown on their next request.
func (s *Server) Reload(ctx context.Context, ds *dataset.Dataset) error {
	model, err := s.cfg.Runner.Preprocess(ctx, ds, s.cfg.Options)
	if err != nil {
		return err
	}
	hash, err := ds.Hash()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &chart{model: model, hash: hash}
	s.mu.Unlock()

	s.logger.Info("loaded dataset",
		"series", ds.NumSeries(),
		"dates", ds.NumDates(),
		"hash", shortHash(hash))
	return nil
}

func (s *Server) chart() *chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving chart", "addr", "http://"+s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return s.cleanupLoop(ctx)
	})
	if s.cfg.Watch && s.cfg.DatasetPath != "" {
		g.Go(func() error {
			return s.watch(ctx, s.cfg.DatasetPath)
		})
	}
	return g.Wait()
}

func (s *Server) cleanupLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.cfg.Sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

// requestLogger logs every request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
