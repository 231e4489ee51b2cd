// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is a process-local Cacher: a mutex-guarded map with TTL
// expiry and an optional background sweeper.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	bytes      int64
	closed     bool
	defaultTTL time.Duration
	maxSize    int
	stopSweep  chan struct{}

	stats struct {
		sync.Mutex
		hits   int64
		misses int64
		sets   int64
	}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration

	// MaxSize caps the entry count; 0 means unlimited.
	MaxSize int

	// CleanupInterval is how often expired entries are swept; 0 disables
	// the sweeper and expiry happens lazily on access.
	CleanupInterval time.Duration
}

// NewMemoryCache creates a memory cache with the given options.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopSweep:  make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.sweep(opts.CleanupInterval)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrCacheClosed
	}
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		if ok {
			c.evictExpired(key)
		}
		c.miss()
		return nil, ErrCacheMiss
	}

	c.hit()
	// Callers may mutate the returned slice.
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.dropExpiredLocked(time.Now())
	}

	if old, ok := c.entries[key]; ok {
		c.bytes -= int64(len(old.value))
	}
	c.entries[key] = memoryEntry{value: stored, expiresAt: time.Now().Add(ttl)}
	c.bytes += int64(len(stored))

	c.stats.Lock()
	c.stats.sets++
	c.stats.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.removeLocked(key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.entries = make(map[string]memoryEntry)
	c.bytes = 0
	return nil
}

func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return false, ErrCacheClosed
	}
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.evictExpired(key)
		return false, nil
	}
	return true, nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key)
		}
	}
	return nil
}

// Close stops the sweeper. Further operations return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.stopSweep)
	}
	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.stats.Lock()
	hits, misses, sets := c.stats.hits, c.stats.misses, c.stats.sets
	c.stats.Unlock()

	c.mu.RLock()
	items, bytes := len(c.entries), c.bytes
	c.mu.RUnlock()

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    sets,
		Items:   items,
		HitRate: hitRate(hits, misses),
		Size:    bytes,
	}
}

func (c *MemoryCache) ResetStats() {
	c.stats.Lock()
	c.stats.hits, c.stats.misses, c.stats.sets = 0, 0, 0
	c.stats.Unlock()
}

func (c *MemoryCache) hit() {
	c.stats.Lock()
	c.stats.hits++
	c.stats.Unlock()
}

func (c *MemoryCache) miss() {
	c.stats.Lock()
	c.stats.misses++
	c.stats.Unlock()
}

// evictExpired removes key only while its entry is still expired. The
// expiry was observed under the read lock, so a Set that refreshed the
// key in the meantime must win.
func (c *MemoryCache) evictExpired(key string) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && time.Now().After(entry.expiresAt) {
		c.removeLocked(key)
	}
	c.mu.Unlock()
}

func (c *MemoryCache) removeLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.bytes -= int64(len(entry.value))
		delete(c.entries, key)
	}
}

func (c *MemoryCache) dropExpiredLocked(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			c.removeLocked(key)
		}
	}
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if !c.closed {
				c.dropExpiredLocked(time.Now())
			}
			c.mu.Unlock()
		case <-c.stopSweep:
			return
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
