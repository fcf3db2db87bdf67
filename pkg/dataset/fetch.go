package dataset

import (
	"bytes"
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/httputil"
)

// FetchOptions configures [Fetch].
type FetchOptions struct {
	// Fetcher downloads http(s) sources. Nil uses a zero [httputil.Fetcher]:
	// no cache and no retries.
	Fetcher *httputil.Fetcher

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Fetch loads the dataset at src, which is either a local path or an
// http(s) URL. Errors carry FILE_NOT_FOUND, FETCH_FAILED or INVALID_DATASET.
func Fetch(ctx context.Context, src string, opts FetchOptions) (*Dataset, error) {
	if !errors.IsURL(src) {
		return ReadFile(src)
	}
	if err := errors.ValidateURL(src); err != nil {
		return nil, err
	}

	f := httputil.Fetcher{Logger: opts.Logger}
	if opts.Fetcher != nil {
		f = *opts.Fetcher
	}

	// Only documents that parse and validate reach the cache.
	var (
		ds      *Dataset
		readErr error
	)
	f.Accept = func(body []byte) error {
		ds, readErr = Read(bytes.NewReader(body))
		return readErr
	}
	body, hit, err := f.Get(ctx, src)
	if err != nil {
		if readErr != nil && err == readErr {
			return nil, readErr
		}
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "fetch %s", src)
	}
	if opts.Logger != nil {
		opts.Logger.Debug("fetched dataset", "url", src, "bytes", len(body), "cached", hit)
	}
	return ds, nil
}
