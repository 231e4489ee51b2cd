// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menu implements the menu editor core: the working copy of a menu's
// items, the flat-to-tree projection, the drag-and-drop reorder algorithm,
// and the optimistic persistence of reorder batches.
package menu

import (
	"navcms/internal/model"
	"navcms/internal/util"
)

// Item is the editor's working-copy representation of a menu item.
// ParentID is nil for top-level items. Position is the zero-based index
// within the item's parent group.
type Item struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	PageID   *int64 `json:"page_id,omitempty"`
	Target   string `json:"target,omitempty"`
	ParentID *int64 `json:"parent_id"`
	Position int64  `json:"position"`
}

// ItemFromModel converts a persisted menu item into its editor representation.
func ItemFromModel(m model.MenuItem) Item {
	return Item{
		ID:       m.ID,
		Title:    m.Title,
		URL:      m.URL.String,
		PageID:   util.PtrFromNullInt64(m.PageID),
		Target:   m.Target.String,
		ParentID: util.PtrFromNullInt64(m.ParentID),
		Position: m.Position,
	}
}

// ItemsFromModels converts a slice of persisted menu items.
func ItemsFromModels(models []model.MenuItem) []Item {
	items := make([]Item, 0, len(models))
	for _, m := range models {
		items = append(items, ItemFromModel(m))
	}
	return items
}

// sameParent reports whether two parent references point at the same group.
func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
