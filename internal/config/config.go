// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"NAVCMS_DB_PATH" envDefault:"./data/navcms.db"`
	ServerHost string `env:"NAVCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"NAVCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"NAVCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"NAVCMS_LOG_LEVEL" envDefault:"info"`

	// Menu editing configuration
	MenuMaxDepth int `env:"NAVCMS_MENU_MAX_DEPTH" envDefault:"2"` // Maximum nesting depth for menu trees

	// Request handling
	RequestTimeout int     `env:"NAVCMS_REQUEST_TIMEOUT" envDefault:"30"` // Request timeout in seconds
	RateLimitRPS   float64 `env:"NAVCMS_RATE_LIMIT_RPS" envDefault:"10"`  // API requests per second per IP
	RateLimitBurst int     `env:"NAVCMS_RATE_LIMIT_BURST" envDefault:"20"`

	// Cache configuration
	RedisURL     string `env:"NAVCMS_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"NAVCMS_CACHE_PREFIX" envDefault:"navcms:"`  // Redis key prefix
	CacheTTL     int    `env:"NAVCMS_CACHE_TTL" envDefault:"3600"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"NAVCMS_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Event log retention
	EventRetentionDays int `env:"NAVCMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"NAVCMS_DO_SEED" envDefault:"true"` // Create default menus on startup
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// RequestTimeoutDuration returns the request timeout as a time.Duration.
func (c Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MenuMaxDepth < 1 {
		return nil, fmt.Errorf("NAVCMS_MENU_MAX_DEPTH must be at least 1, got %d", cfg.MenuMaxDepth)
	}
	if cfg.RequestTimeout < 1 {
		return nil, fmt.Errorf("NAVCMS_REQUEST_TIMEOUT must be at least 1 second, got %d", cfg.RequestTimeout)
	}

	return cfg, nil
}
