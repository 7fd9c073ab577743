package port

import (
	"context"
	"errors"
	"time"
)

// Cache is the key-value contract used for session records.
// Implementations must be safe for concurrent use and honor ctx.
type Cache interface {
	// Get returns ErrMiss when key does not exist or has expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value with ttl; zero ttl means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss so callers can tell it apart from
// transport errors.
var ErrMiss = errors.New("cache: miss")
