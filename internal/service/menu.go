// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer of navcms.
package service

import (
	"context"
	"database/sql"
	"sort"

	"navcms/internal/cache"
	"navcms/internal/model"
	"navcms/internal/store"
)

// MenuItem is a menu item prepared for rendering: the URL is resolved
// (page link or external), inactive items are dropped, and children are
// nested and position-sorted.
type MenuItem struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Target   string     `json:"target"`
	PageID   *int64     `json:"page_id,omitempty"`
	PageSlug string     `json:"page_slug,omitempty"`
	CSSClass string     `json:"css_class,omitempty"`
	Position int        `json:"position"`
	Children []MenuItem `json:"children"`
}

// MenuService loads menus for rendering, through the menu cache when one
// is attached.
type MenuService struct {
	queries   *store.Queries
	menuCache *cache.MenuCache
}

// NewMenuService creates a MenuService. A nil menuCache disables caching
// and every call reads the database directly.
func NewMenuService(db *sql.DB, menuCache *cache.MenuCache) *MenuService {
	return &MenuService{
		queries:   store.New(db),
		menuCache: menuCache,
	}
}

// GetMenu returns the rendered tree for the menu with the given slug, or
// nil when the menu does not exist.
func (s *MenuService) GetMenu(ctx context.Context, slug string) []MenuItem {
	if s.menuCache != nil {
		cached, err := s.menuCache.Get(ctx, slug)
		if err == nil && cached != nil {
			return buildMenuTree(cached.Items)
		}
	}

	menu, err := s.queries.GetMenuBySlug(ctx, slug)
	if err != nil {
		return nil
	}

	items, err := s.queries.ListMenuItemsWithPage(ctx, menu.ID)
	if err != nil {
		return nil
	}
	return buildMenuTree(items)
}

// InvalidateCache discards the cached menu set after a mutation.
func (s *MenuService) InvalidateCache() {
	if s.menuCache != nil {
		s.menuCache.Invalidate()
	}
}

// buildMenuTree converts the flat item list into a nested tree. Inactive
// items are skipped along with their subtrees.
func buildMenuTree(items []store.MenuItemWithPage) []MenuItem {
	itemMap := make(map[int64]*MenuItem, len(items))
	childIDs := make(map[int64][]int64)
	var rootIDs []int64

	for _, item := range items {
		if !item.IsActive {
			continue
		}

		mi := MenuItem{
			ID:       item.ID,
			Title:    item.Title,
			Target:   model.TargetSelf,
			Position: int(item.Position),
			Children: []MenuItem{},
		}

		switch {
		case item.PageID.Valid && item.PageSlug.Valid:
			mi.PageID = &item.PageID.Int64
			mi.PageSlug = item.PageSlug.String
			mi.URL = "/" + item.PageSlug.String
		case item.URL.Valid && item.URL.String != "":
			mi.URL = item.URL.String
		}

		if item.Target.Valid && item.Target.String != "" {
			mi.Target = item.Target.String
		}
		if item.CSSClass.Valid {
			mi.CSSClass = item.CSSClass.String
		}

		itemMap[item.ID] = &mi

		if item.ParentID.Valid {
			childIDs[item.ParentID.Int64] = append(childIDs[item.ParentID.Int64], item.ID)
		} else {
			rootIDs = append(rootIDs, item.ID)
		}
	}

	var build func(id int64) MenuItem
	build = func(id int64) MenuItem {
		node := *itemMap[id]
		ids := childIDs[id]
		node.Children = make([]MenuItem, 0, len(ids))
		for _, childID := range ids {
			if _, ok := itemMap[childID]; ok {
				node.Children = append(node.Children, build(childID))
			}
		}
		sort.Slice(node.Children, func(i, j int) bool {
			return node.Children[i].Position < node.Children[j].Position
		})
		return node
	}

	roots := make([]MenuItem, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, build(id))
	}
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Position < roots[j].Position
	})
	return roots
}
