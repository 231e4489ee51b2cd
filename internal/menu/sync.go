// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// OrderUpdate is the wire form of one item in a reorder batch.
type OrderUpdate struct {
	ID       int64  `json:"id"`
	Position int64  `json:"order"`
	ParentID *int64 `json:"parent_id"`
}

// API is the persistence backend the editor synchronizes against. The batch
// update must be atomic: either every update is applied or none is.
type API interface {
	// MenuItems returns the authoritative flat item list for a menu.
	MenuItems(ctx context.Context, menuID int64) ([]Item, error)

	// UpdateMenuItemsOrder applies a reorder batch in one atomic operation.
	UpdateMenuItemsOrder(ctx context.Context, menuID int64, updates []OrderUpdate) error
}

// DefaultSyncTimeout bounds a single batch submission. A timeout is treated
// like any other transport failure: the optimistic state is rolled back.
const DefaultSyncTimeout = 30 * time.Second

// Synchronizer submits reorder batches and handles rollback on failure.
type Synchronizer struct {
	api     API
	timeout time.Duration
	logger  *slog.Logger
}

// NewSynchronizer creates a Synchronizer. A zero timeout selects
// DefaultSyncTimeout; a nil logger selects slog.Default.
func NewSynchronizer(api API, timeout time.Duration, logger *slog.Logger) *Synchronizer {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		api:     api,
		timeout: timeout,
		logger:  logger,
	}
}

// Submit sends the reorder batch for the given working copy. On failure it
// re-fetches the authoritative list and returns it along with the error, so
// the caller can discard the optimistic state wholesale. There is no partial
// merge and no retry; the user re-initiates the action if needed.
func (s *Synchronizer) Submit(ctx context.Context, menuID int64, items []Item) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.api.UpdateMenuItemsOrder(ctx, menuID, OrderUpdates(items)); err != nil {
		s.logger.Warn("reorder batch failed, rolling back",
			"menu_id", menuID,
			"items", len(items),
			"error", err)

		authoritative, fetchErr := s.refetch(menuID)
		if fetchErr != nil {
			// The optimistic state is already known to be unconfirmed;
			// surface the original failure and let the caller retry the fetch.
			return nil, fmt.Errorf("submitting reorder batch: %w (rollback fetch also failed: %v)", err, fetchErr)
		}
		return authoritative, fmt.Errorf("submitting reorder batch: %w", err)
	}

	return nil, nil
}

// refetch loads the authoritative item list with a fresh timeout, detached
// from the (possibly expired) submission context.
func (s *Synchronizer) refetch(menuID int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.api.MenuItems(ctx, menuID)
}
