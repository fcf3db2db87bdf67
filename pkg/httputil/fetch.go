package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/cache"
	"github.com/matzehuels/chatstack/pkg/observability"
)

// Defaults for [Fetcher].
const (
	DefaultTimeout = 30 * time.Second
	DefaultBackoff = time.Second

	// MaxBodySize caps a fetched document.
	MaxBodySize = 64 << 20
)

// Fetcher downloads documents over HTTP.
//
// The zero value is usable: no cache, no retries, [DefaultTimeout].
type Fetcher struct {
	// Client performs requests. Nil uses a client with Timeout.
	Client *http.Client

	// Cache stores fetched bodies. Nil disables caching.
	Cache cache.Cache

	// Keyer builds cache keys. Nil uses cache.DefaultKeyer.
	Keyer cache.Keyer

	// TTL is the cache lifetime of a fetched body.
	TTL time.Duration

	// Retries is the number of additional attempts after a transient failure.
	Retries int

	// Backoff is the initial delay between attempts.
	Backoff time.Duration

	// Timeout applies when Client is nil.
	Timeout time.Duration

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger

	// Accept, when set, must approve a body before Get caches or returns it.
	// A cached body it rejects is dropped and fetched again.
	Accept func(body []byte) error
}

// Get fetches rawURL and returns its body. hit reports whether the body came
// from the cache.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (body []byte, hit bool, err error) {
	keyer := f.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.DatasetKey(rawURL)

	if f.Cache != nil {
		data, ok, err := f.Cache.Get(ctx, key)
		if err != nil {
			f.debug("cache read failed", "url", rawURL, "error", err)
		} else if ok {
			aerr := f.accept(data)
			if aerr == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				return data, true, nil
			}
			f.debug("dropping rejected cache entry", "url", rawURL, "error", aerr)
			if derr := f.Cache.Delete(ctx, key); derr != nil {
				f.debug("cache delete failed", "url", rawURL, "error", derr)
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	backoff := f.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	attempt := 0
	err = Retry(ctx, f.Retries+1, backoff, func() error {
		attempt++
		if attempt > 1 {
			f.debug("retrying fetch", "url", rawURL, "attempt", attempt)
		}
		var ferr error
		body, ferr = f.do(ctx, rawURL)
		return ferr
	})
	if err != nil {
		return nil, false, err
	}
	if err := f.accept(body); err != nil {
		return nil, false, err
	}

	if f.Cache != nil {
		if err := f.Cache.Set(ctx, key, body, f.TTL); err != nil {
			f.debug("cache write failed", "url", rawURL, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "dataset", len(body))
		}
	}
	return body, false, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.client().Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: rawURL, Code: resp.StatusCode}
		if RetryableStatus(resp.StatusCode) {
			return nil, Retryable(serr)
		}
		return nil, serr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, Retryable(fmt.Errorf("read body: %w", err))
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return body, nil
}

func (f *Fetcher) accept(body []byte) error {
	if f.Accept == nil {
		return nil
	}
	return f.Accept(body)
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (f *Fetcher) debug(msg string, kv ...any) {
	if f.Logger != nil {
		f.Logger.Debug(msg, kv...)
	}
}
