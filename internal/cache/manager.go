// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"

	"navcms/internal/store"
)

// Manager owns all cache instances and gives handlers a single handle for
// warm-up, invalidation and shutdown.
type Manager struct {
	// General is the byte-level backend used for ad-hoc cached data.
	General Cacher

	// Menus is the slug-keyed menu cache.
	Menus *MenuCache

	logger *slog.Logger
}

// NewManager creates the cache instances from the factory options.
func NewManager(opts Options, queries *store.Queries, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		General: New(opts, logger),
		Menus:   NewMenuCache(queries),
		logger:  logger,
	}
}

// Preload warms the menu cache. A failure is logged, not fatal; the cache
// loads lazily on first access instead.
func (m *Manager) Preload(ctx context.Context) {
	if err := m.Menus.Preload(ctx); err != nil {
		m.logger.Warn("menu cache preload failed", "error", err)
		return
	}
	m.logger.Info("menu cache preloaded", "menus", m.Menus.Stats().Items)
}

// InvalidateMenus discards cached menus after any menu or item mutation.
func (m *Manager) InvalidateMenus() {
	m.Menus.Invalidate()
}

// Stats returns per-cache statistics keyed by cache name.
func (m *Manager) Stats() map[string]Stats {
	stats := map[string]Stats{
		"menus": m.Menus.Stats(),
	}
	if sp, ok := m.General.(StatsProvider); ok {
		stats["general"] = sp.Stats()
	}
	return stats
}

// Close releases the backend resources.
func (m *Manager) Close() error {
	return m.General.Close()
}
