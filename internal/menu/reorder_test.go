// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"errors"
	"testing"
)

func ptr(v int64) *int64 {
	return &v
}

// testItems returns the scenario used throughout: root items A, B, C with a
// single child D under B.
func testItems() []Item {
	return []Item{
		{ID: 1, Title: "A", Position: 0},
		{ID: 2, Title: "B", Position: 1},
		{ID: 3, Title: "C", Position: 2},
		{ID: 4, Title: "D", ParentID: ptr(2), Position: 0},
	}
}

// positionsByParent collects position sequences per parent group.
func positionsByParent(items []Item) map[int64][]int64 {
	groups := make(map[int64][]int64)
	for _, parent := range parentKeys(items) {
		var p *int64
		if parent >= 0 {
			p = ptr(parent)
		}
		for _, child := range ChildrenOf(items, p) {
			groups[parent] = append(groups[parent], child.Position)
		}
	}
	return groups
}

func parentKeys(items []Item) []int64 {
	seen := map[int64]bool{}
	var keys []int64
	for _, item := range items {
		key := int64(-1)
		if item.ParentID != nil {
			key = *item.ParentID
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// checkDense verifies every parent group carries positions 0..n-1.
func checkDense(t *testing.T, items []Item) {
	t.Helper()
	for parent, positions := range positionsByParent(items) {
		for i, pos := range positions {
			if pos != int64(i) {
				t.Errorf("group %d: position[%d] = %d, want %d", parent, i, pos, i)
			}
		}
	}
}

func TestReorderWithinRoot(t *testing.T) {
	// Dragging C to root index 0 yields [C, A, B]; D stays under B.
	result, changed, err := Reorder(testItems(), Move{ItemID: 3, DestIndex: 0}, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}

	root := ChildrenOf(result, nil)
	want := []int64{3, 1, 2}
	if len(root) != len(want) {
		t.Fatalf("got %d root items, want %d", len(root), len(want))
	}
	for i, id := range want {
		if root[i].ID != id {
			t.Errorf("root[%d].ID = %d, want %d", i, root[i].ID, id)
		}
		if root[i].Position != int64(i) {
			t.Errorf("root[%d].Position = %d, want %d", i, root[i].Position, i)
		}
	}

	d, ok := findItem(result, 4)
	if !ok {
		t.Fatal("D missing from result")
	}
	if d.ParentID == nil || *d.ParentID != 2 || d.Position != 0 {
		t.Errorf("D = parent %v position %d, want parent 2 position 0", d.ParentID, d.Position)
	}

	checkDense(t, result)
}

func TestReorderOutOfParent(t *testing.T) {
	// Dragging D out of B to root index 1 yields root [A, D, B, C] and
	// leaves B childless.
	result, changed, err := Reorder(testItems(), Move{
		ItemID:       4,
		SourceParent: ptr(2),
		DestIndex:    1,
	}, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}

	root := ChildrenOf(result, nil)
	want := []int64{1, 4, 2, 3}
	if len(root) != len(want) {
		t.Fatalf("got %d root items, want %d", len(root), len(want))
	}
	for i, id := range want {
		if root[i].ID != id {
			t.Errorf("root[%d].ID = %d, want %d", i, root[i].ID, id)
		}
	}

	if children := ChildrenOf(result, ptr(2)); len(children) != 0 {
		t.Errorf("B still has %d children, want 0", len(children))
	}

	checkDense(t, result)
}

func TestReorderIntoParent(t *testing.T) {
	// Dragging A under B at index 0 pushes D to index 1 and re-sequences
	// the root group without a gap.
	result, changed, err := Reorder(testItems(), Move{
		ItemID:     1,
		DestParent: ptr(2),
		DestIndex:  0,
	}, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}

	children := ChildrenOf(result, ptr(2))
	if len(children) != 2 || children[0].ID != 1 || children[1].ID != 4 {
		t.Fatalf("B's children = %v, want [A D]", childIDs(children))
	}

	root := ChildrenOf(result, nil)
	if len(root) != 2 || root[0].ID != 2 || root[1].ID != 3 {
		t.Fatalf("root = %v, want [B C]", childIDs(root))
	}

	checkDense(t, result)
}

func childIDs(items []Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestReorderNoOp(t *testing.T) {
	// Dropping B at its current root index changes nothing.
	items := testItems()
	result, changed, err := Reorder(items, Move{ItemID: 2, DestIndex: 1}, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if changed {
		t.Fatal("expected no change")
	}
	if len(result) != len(items) {
		t.Fatalf("got %d items, want %d", len(result), len(items))
	}
	for i := range items {
		if result[i] != items[i] {
			t.Errorf("item %d changed: got %+v, want %+v", i, result[i], items[i])
		}
	}
}

func TestReorderClampsDestinationIndex(t *testing.T) {
	// A stale snapshot may send an index past the end of the group.
	result, changed, err := Reorder(testItems(), Move{ItemID: 1, DestIndex: 99}, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if !changed {
		t.Fatal("expected a change")
	}

	root := ChildrenOf(result, nil)
	if root[len(root)-1].ID != 1 {
		t.Errorf("A not appended at the end, root = %v", childIDs(root))
	}
	checkDense(t, result)
}

func TestReorderRejectsCycle(t *testing.T) {
	items := testItems()

	// B into its own child D.
	if _, _, err := Reorder(items, Move{ItemID: 2, DestParent: ptr(4), DestIndex: 0}, 10); !errors.Is(err, ErrCycle) {
		t.Errorf("moving B under D: err = %v, want ErrCycle", err)
	}

	// B onto itself.
	if _, _, err := Reorder(items, Move{ItemID: 2, DestParent: ptr(2), DestIndex: 0}, 10); !errors.Is(err, ErrCycle) {
		t.Errorf("moving B under itself: err = %v, want ErrCycle", err)
	}

	// Input untouched after the rejection.
	for i, item := range testItems() {
		if items[i] != item {
			t.Errorf("input mutated at %d: %+v", i, items[i])
		}
	}
}

func TestReorderRejectsExcessDepth(t *testing.T) {
	// Moving B (which carries child D, subtree height 2) under C would
	// occupy three levels; the default cap is two.
	_, _, err := Reorder(testItems(), Move{ItemID: 2, DestParent: ptr(3), DestIndex: 0}, 2)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("err = %v, want ErrDepthExceeded", err)
	}

	// The same move is fine with a deeper cap, and D follows B.
	result, changed, err := Reorder(testItems(), Move{ItemID: 2, DestParent: ptr(3), DestIndex: 0}, 3)
	if err != nil || !changed {
		t.Fatalf("Reorder with maxDepth 3: changed=%v err=%v", changed, err)
	}
	d, _ := findItem(result, 4)
	if d.ParentID == nil || *d.ParentID != 2 {
		t.Errorf("D no longer under B after B moved: parent = %v", d.ParentID)
	}
	checkDense(t, result)
}

func TestReorderRejectsUnknownItem(t *testing.T) {
	if _, _, err := Reorder(testItems(), Move{ItemID: 99}, 2); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("unknown item: err = %v, want ErrItemNotFound", err)
	}
	if _, _, err := Reorder(testItems(), Move{ItemID: 1, DestParent: ptr(99)}, 2); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("unknown destination: err = %v, want ErrItemNotFound", err)
	}
}

func TestReorderRejectsStaleSource(t *testing.T) {
	// D's parent is B, not the root.
	_, _, err := Reorder(testItems(), Move{ItemID: 4, SourceParent: nil, DestIndex: 0}, 2)
	if !errors.Is(err, ErrStaleMove) {
		t.Errorf("err = %v, want ErrStaleMove", err)
	}
}

func TestReorderSequenceStaysDense(t *testing.T) {
	// Apply a series of moves and verify the density invariant after each.
	items := testItems()
	moves := []Move{
		{ItemID: 3, DestIndex: 0},
		{ItemID: 1, DestParent: ptr(2), DestIndex: 0},
		{ItemID: 4, SourceParent: ptr(2), DestIndex: 2},
		{ItemID: 1, SourceParent: ptr(2), DestParent: ptr(3), DestIndex: 0},
		{ItemID: 4, DestIndex: 0},
	}

	for i, move := range moves {
		var err error
		items, _, err = Reorder(items, move, 2)
		if err != nil {
			t.Fatalf("move %d (%+v): %v", i, move, err)
		}
		checkDense(t, items)
		if len(items) != 4 {
			t.Fatalf("move %d: %d items, want 4", i, len(items))
		}
	}
}

func TestOrderUpdates(t *testing.T) {
	updates := OrderUpdates(testItems())
	if len(updates) != 4 {
		t.Fatalf("got %d updates, want 4", len(updates))
	}
	for i, item := range testItems() {
		if updates[i].ID != item.ID || updates[i].Position != item.Position {
			t.Errorf("update %d = %+v, want id %d position %d", i, updates[i], item.ID, item.Position)
		}
		if (updates[i].ParentID == nil) != (item.ParentID == nil) {
			t.Errorf("update %d parent mismatch", i)
		}
	}
}
