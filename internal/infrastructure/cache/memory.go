package cache

import (
	"context"
	"sync"
	"time"

	"food-resolver/internal/infrastructure/config"
	"food-resolver/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryCache is an in-process TTL cache with periodic cleanup and
// oldest-entry eviction when full.
type MemoryCache struct {
	cfg   *config.CacheConfig
	mu    sync.RWMutex
	store map[string]memoryEntry
	stats cacheStats
	stop  chan struct{}
	once  sync.Once
}

type memoryEntry struct {
	value      string
	expiresAt  time.Time
	createdAt  time.Time
	lastAccess time.Time
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryCache creates an in-memory cache and starts its cleanup loop.
func NewMemoryCache(cfg *config.CacheConfig) *MemoryCache {
	m := &MemoryCache{
		cfg:   cfg,
		store: make(map[string]memoryEntry),
		stop:  make(chan struct{}),
	}

	go m.startCleanup()

	common.LogInfo("memory cache initialized",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	return m
}

// Get returns the cached value for key, or ErrCacheMiss.
func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", common.ErrCacheMiss
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	m.store[key] = entry
	m.stats.hits++
	return entry.value, nil
}

// Set stores value under key. A zero ttl uses the configured default.
func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.cfg.TTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSize > 0 && len(m.store) >= m.cfg.MaxSize {
		m.evictOldestLocked()
	}

	now := time.Now()
	m.store[key] = memoryEntry{
		value:      value,
		expiresAt:  now.Add(ttl),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// Close stops the cleanup loop.
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

// Stats returns hit/miss/eviction counters.
func (m *MemoryCache) Stats() (hits, misses, evictions int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.hits, m.stats.misses, m.stats.evictions
}

func (m *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAccess time.Time
	for k, e := range m.store {
		if oldestKey == "" || e.lastAccess.Before(oldestAccess) {
			oldestKey = k
			oldestAccess = e.lastAccess
		}
	}
	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}

func (m *MemoryCache) startCleanup() {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanupExpired()
		}
	}
}

func (m *MemoryCache) cleanupExpired() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, k)
			m.stats.evictions++
		}
	}
}
