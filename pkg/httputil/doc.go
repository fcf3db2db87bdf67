// Package httputil provides the HTTP plumbing used to fetch chart datasets.
//
// # Overview
//
//   - [Fetcher]: GET a document with optional caching and retries
//   - [Retry]: automatic retry with exponential backoff
//
// # Fetching
//
// A dataset document is fetched once at startup. [Fetcher] reads the whole
// body, consults a cache.Cache first when one is configured and stores the
// body on success:
//
//	f := &httputil.Fetcher{Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: time.Hour}
//	body, hit, err := f.Get(ctx, "https://example.com/chats.json")
//
// # Retry
//
// [Retry] wraps an operation with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried. The delay doubles
// after every attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return doRequest()
//	})
//
// # Configuration
//
// The fetch defaults follow the chart's startup behaviour: no retries (a
// failed load is reported once), a 30 second timeout, and no cache.
package httputil
