package port

import (
	"context"
	"time"
)

// Cache is the key-value cache contract used for board snapshot caching.
// Implementations must be concurrency-safe and context-aware.
type Cache interface {
	// Get fetches the value for key. Misses are reported as ErrMiss so
	// callers can tell them apart from transport errors.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes one or more keys and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way.
var ErrMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache: miss" }
