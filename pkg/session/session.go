// Package session stores the per-browser view state of the live server.
//
// A [Session] remembers which series one viewer has hidden, so reloading the
// page or reconnecting later shows the same chart. Backends:
//   - memory: in-process map, the default for a single server
//   - file: JSON files under a directory, survives restarts
//   - redis: shared across server instances, expiry handled by Redis
//   - mongo: document store, one document per session keyed by _id
//
// # Usage
//
//	store, err := session.Open(ctx, session.Config{Backend: "redis", RedisAddr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sess := session.New(len(ds.Names), hash, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	if sess == nil {
//	    // unknown or expired; start over
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrInvalidID is returned for IDs that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")

	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown session backend")
)

// DefaultTTL is the default session lifetime, extended on every update.
const DefaultTTL = 7 * 24 * time.Hour

// Session is the view state of one browser.
type Session struct {
	ID          string    `json:"id" bson:"_id"`
	Shown       []bool    `json:"shown" bson:"shown"`
	DatasetHash string    `json:"dataset_hash" bson:"dataset_hash"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
}

// New creates a session with n series shown, bound to datasetHash.
func New(n int, datasetHash string, ttl time.Duration) *Session {
	shown := make([]bool, n)
	for i := range shown {
		shown[i] = true
	}
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		Shown:       shown,
		DatasetHash: datasetHash,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch stores shown and pushes the expiry ttl into the future.
func (s *Session) Touch(shown []bool, ttl time.Duration) {
	s.Shown = append(s.Shown[:0:0], shown...)
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	out.Shown = append([]bool(nil), s.Shown...)
	return &out
}

// ValidateID reports whether id is a well-formed session ID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op when the backend
	// expires entries itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string `toml:"backend" yaml:"backend"`
	Dir           string `toml:"dir" yaml:"dir"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
}

// Open creates the store named by cfg.Backend. An empty backend means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return nil, ErrUnknownBackend
}
