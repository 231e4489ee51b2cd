// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix namespaces Redis keys; ignored by the memory backend.
	Prefix string

	DefaultTTL time.Duration

	// MaxSize caps the memory backend's entry count; 0 means unlimited.
	MaxSize int

	CleanupInterval time.Duration
}

// DefaultOptions returns the factory defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:          "navcms:",
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache from opts. When RedisURL is set but the server is
// unreachable the memory backend is used instead, so a Redis outage at
// startup degrades performance rather than availability.
func New(opts Options, logger *slog.Logger) Cacher {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.RedisURL != "" {
		redisOpts := DefaultRedisCacheOptions()
		redisOpts.URL = opts.RedisURL
		if opts.Prefix != "" {
			redisOpts.Prefix = opts.Prefix
		}
		if opts.DefaultTTL > 0 {
			redisOpts.DefaultTTL = opts.DefaultTTL
		}

		c, err := NewRedisCache(redisOpts)
		if err == nil {
			logger.Info("using redis cache", "prefix", redisOpts.Prefix)
			return c
		}
		logger.Warn("redis unavailable, falling back to memory cache", "error", err)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: opts.CleanupInterval,
	})
}

// NewWithTTL creates a memory cache with just a TTL, for callers that do
// not need the full option set.
func NewWithTTL(ttl time.Duration) Cacher {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      ttl,
		CleanupInterval: time.Minute,
	})
}
