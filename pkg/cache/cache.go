// Package cache provides the byte cache used for fetched datasets and
// rendered chart artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under the XDG cache directory (CLI)
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so every entry point builds them the same way.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached entries.
const (
	// TTLDataset bounds how long a fetched remote dataset is reused.
	TTLDataset = time.Hour

	// TTLArtifact bounds how long a rendered chart is reused. Artifacts are
	// keyed by content hash, so this only limits disk growth.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string
	Width       float64
	Height      float64
	Scale       float64
	Sigma       float64
	Transforms  []string
	Normalize   bool
	Renormalize bool
	Hidden      []int
	Title       string
}

// Keyer builds cache keys.
type Keyer interface {
	// DatasetKey keys a dataset fetched from src (a URL).
	DatasetKey(src string) string

	// ArtifactKey keys a rendered artifact of the dataset with the given content hash.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DatasetKey returns "dataset:<hash(src)>".
func (DefaultKeyer) DatasetKey(src string) string {
	return hashKey("dataset", src)
}

// ArtifactKey returns "artifact:<hash(datasetHash, opts)>".
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
