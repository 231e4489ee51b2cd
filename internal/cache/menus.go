// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"navcms/internal/model"
	"navcms/internal/store"
)

// MenuWithItems pairs a menu with its flat, position-ordered item list.
// Items carry the linked page slug so cached menus render without extra
// queries.
type MenuWithItems struct {
	Menu  model.Menu
	Items []store.MenuItemWithPage
}

// MenuCache holds every menu with its items, keyed by slug. Menus are few
// and read on every page render, so the whole set is loaded at once and
// invalidated wholesale on any menu change.
type MenuCache struct {
	queries *store.Queries
	mu      sync.RWMutex
	menus   map[string]*MenuWithItems
	loaded  bool

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewMenuCache creates a menu cache over the given queries.
func NewMenuCache(queries *store.Queries) *MenuCache {
	return &MenuCache{
		queries: queries,
		menus:   make(map[string]*MenuWithItems),
	}
}

// Get returns the menu with the given slug, or nil when no such menu
// exists. The full set is loaded from the database on first access.
func (c *MenuCache) Get(ctx context.Context, slug string) (*MenuWithItems, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if menu, ok := c.menus[slug]; ok {
		c.hits.Add(1)
		return menu, nil
	}
	c.misses.Add(1)
	return nil, nil
}

// GetByID returns the menu with the given ID, or nil when absent.
func (c *MenuCache) GetByID(ctx context.Context, id int64) (*MenuWithItems, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, menu := range c.menus {
		if menu.Menu.ID == id {
			c.hits.Add(1)
			return menu, nil
		}
	}
	c.misses.Add(1)
	return nil, nil
}

// All returns every cached menu.
func (c *MenuCache) All(ctx context.Context) ([]*MenuWithItems, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*MenuWithItems, 0, len(c.menus))
	for _, menu := range c.menus {
		result = append(result, menu)
	}
	return result, nil
}

// Invalidate discards the cached set; the next access reloads it.
func (c *MenuCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.menus = make(map[string]*MenuWithItems)
}

// Preload loads all menus, for warming the cache at startup.
func (c *MenuCache) Preload(ctx context.Context) error {
	return c.ensureLoaded(ctx)
}

func (c *MenuCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	menus, err := c.queries.ListMenus(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string]*MenuWithItems, len(menus))
	for _, menu := range menus {
		items, err := c.queries.ListMenuItemsWithPage(ctx, menu.ID)
		if err != nil {
			return err
		}
		fresh[menu.Slug] = &MenuWithItems{Menu: menu, Items: items}
	}

	c.menus = fresh
	c.loaded = true
	c.loads.Add(1)
	return nil
}

// Stats returns the cache counters.
func (c *MenuCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	c.mu.RLock()
	items := len(c.menus)
	c.mu.RUnlock()

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.loads.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

// ResetStats resets the cache counters.
func (c *MenuCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.loads.Store(0)
}
