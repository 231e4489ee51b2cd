// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"navcms/internal/store"
	"navcms/internal/util"
)

// StoreAPI implements API directly against the database. The reorder batch
// runs inside one transaction so a failing update rolls every position back.
type StoreAPI struct {
	db      *sql.DB
	queries *store.Queries
}

// NewStoreAPI creates a store-backed API.
func NewStoreAPI(db *sql.DB) *StoreAPI {
	return &StoreAPI{
		db:      db,
		queries: store.New(db),
	}
}

// MenuItems returns the flat item list for a menu.
func (a *StoreAPI) MenuItems(ctx context.Context, menuID int64) ([]Item, error) {
	rows, err := a.queries.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return ItemsFromModels(rows), nil
}

// UpdateMenuItemsOrder applies a reorder batch atomically. Every item is
// verified to belong to the menu before any position is written.
func (a *StoreAPI) UpdateMenuItemsOrder(ctx context.Context, menuID int64, updates []OrderUpdate) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reorder transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := a.queries.WithTx(tx)
	now := time.Now()

	for _, update := range updates {
		item, err := qtx.GetMenuItemByID(ctx, update.ID)
		if err != nil {
			return fmt.Errorf("item %d not found: %w", update.ID, err)
		}
		if item.MenuID != menuID {
			return fmt.Errorf("item %d does not belong to menu %d", update.ID, menuID)
		}

		if err := qtx.UpdateMenuItemPosition(ctx, store.UpdateMenuItemPositionParams{
			ID:        update.ID,
			ParentID:  util.NullInt64FromPtr(update.ParentID),
			Position:  update.Position,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("updating item %d: %w", update.ID, err)
		}
	}

	if err := qtx.TouchMenu(ctx, menuID, now); err != nil {
		return fmt.Errorf("touching menu %d: %w", menuID, err)
	}

	return tx.Commit()
}

// Ensure StoreAPI implements the editor API.
var _ API = (*StoreAPI)(nil)
