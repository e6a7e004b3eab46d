// Package cache provides the read-through cache injected into the search and
// hydration services. Entries are immutable once written; concurrent writers
// for the same key may race and the last write wins, which costs at most one
// duplicated remote call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"food-resolver/internal/infrastructure/config"
)

// Cache is a TTL key-value store. Implementations must treat Get misses as
// ErrCacheMiss, not as failures.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Close() error
}

// New builds the configured cache backend, or nil when caching is disabled.
// A nil *noop is not returned on purpose: callers check for nil and skip
// lookups entirely.
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		return NewRedisCache(&cfg.Cache)
	case "memory":
		return NewMemoryCache(&cfg.Cache), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// Key builds a stable cache key from a namespace and its parts.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}
