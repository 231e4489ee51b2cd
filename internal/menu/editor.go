// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"sync"
)

// ErrReorderInFlight is returned when a move is attempted while a previous
// reorder batch is still being submitted.
var ErrReorderInFlight = errors.New("a reorder is already in progress")

// State is the serializable editor state: the flat working copy of one
// menu's items plus the in-flight flag that blocks overlapping reorders.
type State struct {
	MenuID     int64  `json:"menu_id"`
	Items      []Item `json:"items"`
	Reordering bool   `json:"reordering"`
}

// Editor owns the working copy of one menu's items. All mutation goes
// through the pure Reorder function; the editor only swaps whole states.
// The external API owns the durable copy: every successful fetch replaces
// the working copy wholesale, no partial merge is performed.
type Editor struct {
	mu       sync.Mutex
	state    State
	maxDepth int
	sync     *Synchronizer
}

// NewEditor creates an editor for one menu. maxDepth caps the nesting the
// editor will accept; values below 1 are raised to 1.
func NewEditor(menuID int64, maxDepth int, sync *Synchronizer) *Editor {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Editor{
		state:    State{MenuID: menuID},
		maxDepth: maxDepth,
		sync:     sync,
	}
}

// Load replaces the working copy with a fresh authoritative list.
func (e *Editor) Load(items []Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Items = append([]Item(nil), items...)
}

// Refresh fetches the authoritative list through the API and replaces the
// working copy.
func (e *Editor) Refresh(ctx context.Context) error {
	items, err := e.sync.api.MenuItems(ctx, e.menuID())
	if err != nil {
		return err
	}
	e.Load(items)
	return nil
}

// State returns a copy of the current editor state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		MenuID:     e.state.MenuID,
		Items:      append([]Item(nil), e.state.Items...),
		Reordering: e.state.Reordering,
	}
}

// Tree returns the current two-level (or deeper, up to maxDepth) projection
// of the working copy.
func (e *Editor) Tree() []Node {
	e.mu.Lock()
	items := append([]Item(nil), e.state.Items...)
	e.mu.Unlock()
	return BuildTree(items, e.maxDepth)
}

// Move applies a drag-and-drop gesture: the reorder is computed, the
// working copy optimistically updated, and the batch submitted. On
// submission failure the optimistic state is discarded and replaced with
// the authoritative list. A no-op move changes nothing and submits nothing.
func (e *Editor) Move(ctx context.Context, move Move) error {
	e.mu.Lock()
	if e.state.Reordering {
		e.mu.Unlock()
		return ErrReorderInFlight
	}

	next, changed, err := Reorder(e.state.Items, move, e.maxDepth)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if !changed {
		e.mu.Unlock()
		return nil
	}

	previous := e.state.Items
	e.state.Items = next
	e.state.Reordering = true
	e.mu.Unlock()

	authoritative, submitErr := e.sync.Submit(ctx, e.menuID(), next)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Reordering = false
	if submitErr != nil {
		if authoritative != nil {
			e.state.Items = authoritative
		} else {
			// Rollback fetch failed too; fall back to the pre-move copy so
			// the editor at least shows a state the server once confirmed.
			e.state.Items = previous
		}
		return submitErr
	}
	return nil
}

func (e *Editor) menuID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.MenuID
}
