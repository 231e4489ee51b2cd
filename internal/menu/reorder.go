// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"errors"
	"sort"
)

// Reorder validation errors.
var (
	// ErrItemNotFound is returned when the dragged item or the destination
	// group's parent is not part of the working copy.
	ErrItemNotFound = errors.New("menu item not found")

	// ErrStaleMove is returned when the move's source group does not match
	// the item's current parent, indicating the move was computed against
	// an outdated snapshot.
	ErrStaleMove = errors.New("source group does not match item's current parent")

	// ErrCycle is returned when an item would be moved into its own subtree.
	ErrCycle = errors.New("cannot move an item into its own subtree")

	// ErrDepthExceeded is returned when a move would nest items beyond the
	// configured maximum depth.
	ErrDepthExceeded = errors.New("move exceeds maximum menu depth")
)

// Move describes a single drag-and-drop gesture in the menu editor.
// SourceParent and DestParent identify parent groups, nil meaning the top
// level. DestIndex is the zero-based position within the destination group's
// sorted children where the item should land.
type Move struct {
	ItemID       int64  `json:"item_id"`
	SourceParent *int64 `json:"source_parent_id"`
	DestParent   *int64 `json:"dest_parent_id"`
	DestIndex    int    `json:"dest_index"`
}

// Reorder computes the new working copy after applying a move. It returns
// the recomputed flat list, whether anything changed, and a validation
// error. The input slice is never mutated; on error the caller's state is
// untouched and no result is returned.
//
// After a successful move every parent group - including source and
// destination - carries a dense, zero-based position sequence. Children of
// the dragged item keep their parent reference and therefore follow it.
func Reorder(items []Item, move Move, maxDepth int) ([]Item, bool, error) {
	dragged, ok := findItem(items, move.ItemID)
	if !ok {
		return nil, false, ErrItemNotFound
	}
	if !sameParent(dragged.ParentID, move.SourceParent) {
		return nil, false, ErrStaleMove
	}

	// Dropping an item at its current place is a no-op: no state change,
	// and the caller must not issue a network call.
	if sameParent(move.SourceParent, move.DestParent) &&
		move.DestIndex == indexIn(items, move.SourceParent, move.ItemID) {
		return items, false, nil
	}

	if move.DestParent != nil {
		if _, ok := findItem(items, *move.DestParent); !ok {
			return nil, false, ErrItemNotFound
		}
		// An item must not become its own ancestor.
		if isDescendant(items, *move.DestParent, move.ItemID) {
			return nil, false, ErrCycle
		}
	}

	// The dragged item lands one level below its destination parent; its
	// own subtree keeps its shape underneath.
	if DepthOf(items, move.DestParent)+subtreeHeight(items, move.ItemID) > maxDepth {
		return nil, false, ErrDepthExceeded
	}

	// Remove the dragged item and reassign its parent.
	remaining := make([]Item, 0, len(items)-1)
	for _, item := range items {
		if item.ID != move.ItemID {
			remaining = append(remaining, item)
		}
	}
	dragged.ParentID = copyParent(move.DestParent)

	// Partition the remaining items into parent groups, each sorted by the
	// current position so insertion indexes line up with what is rendered.
	groups := make(map[int64][]Item)
	var order []int64
	const rootKey = int64(-1) // grouping key only; persisted parent stays nil
	for _, item := range remaining {
		key := rootKey
		if item.ParentID != nil {
			key = *item.ParentID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}
	for key := range groups {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Position < group[j].Position
		})
		groups[key] = group
	}

	destKey := rootKey
	if move.DestParent != nil {
		destKey = *move.DestParent
	}
	if _, seen := groups[destKey]; !seen {
		order = append(order, destKey)
	}

	// Clamp the destination index: a stale UI snapshot may point past the
	// end of the group.
	group := groups[destKey]
	index := move.DestIndex
	if index < 0 {
		index = 0
	}
	if index > len(group) {
		index = len(group)
	}
	group = append(group[:index:index], append([]Item{dragged}, group[index:]...)...)
	groups[destKey] = group

	// Re-sequence every group densely from zero and recombine.
	result := make([]Item, 0, len(items))
	for _, key := range order {
		for i := range groups[key] {
			groups[key][i].Position = int64(i)
			result = append(result, groups[key][i])
		}
	}

	return result, true, nil
}

// Resequence renumbers every parent group densely from zero, preserving the
// relative order given by the current positions. It is used after an item is
// removed, which otherwise leaves a gap in its former group.
func Resequence(items []Item) []Item {
	groups := make(map[int64][]Item)
	var order []int64
	const rootKey = int64(-1)
	for _, item := range items {
		key := rootKey
		if item.ParentID != nil {
			key = *item.ParentID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	result := make([]Item, 0, len(items))
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Position < group[j].Position
		})
		for i := range group {
			group[i].Position = int64(i)
			result = append(result, group[i])
		}
	}
	return result
}

// OrderUpdates serializes the parent and position of every item for the
// batch persistence call. Only id, position and parent are sent; all other
// fields are unchanged by a reorder.
func OrderUpdates(items []Item) []OrderUpdate {
	updates := make([]OrderUpdate, 0, len(items))
	for _, item := range items {
		updates = append(updates, OrderUpdate{
			ID:       item.ID,
			Position: item.Position,
			ParentID: copyParent(item.ParentID),
		})
	}
	return updates
}

func findItem(items []Item, id int64) (Item, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func copyParent(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
