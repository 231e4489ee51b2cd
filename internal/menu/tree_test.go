// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import "testing"

func TestChildrenOfSortsByPosition(t *testing.T) {
	items := []Item{
		{ID: 1, Position: 2},
		{ID: 2, Position: 0},
		{ID: 3, Position: 1},
		{ID: 4, ParentID: ptr(1), Position: 0},
	}

	root := ChildrenOf(items, nil)
	want := []int64{2, 3, 1}
	if len(root) != len(want) {
		t.Fatalf("got %d root items, want %d", len(root), len(want))
	}
	for i, id := range want {
		if root[i].ID != id {
			t.Errorf("root[%d].ID = %d, want %d", i, root[i].ID, id)
		}
	}

	// The input order must survive the sorted projection.
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Error("ChildrenOf mutated its input")
	}
}

func TestBuildTree(t *testing.T) {
	nodes := BuildTree(testItems(), 2)

	if len(nodes) != 3 {
		t.Fatalf("got %d root nodes, want 3", len(nodes))
	}
	if nodes[1].ID != 2 || len(nodes[1].Children) != 1 || nodes[1].Children[0].ID != 4 {
		t.Errorf("B's subtree wrong: %+v", nodes[1])
	}
	if len(nodes[0].Children) != 0 || len(nodes[2].Children) != 0 {
		t.Error("A or C unexpectedly has children")
	}
}

func TestBuildTreeDepthCap(t *testing.T) {
	items := []Item{
		{ID: 1, Position: 0},
		{ID: 2, ParentID: ptr(1), Position: 0},
		{ID: 3, ParentID: ptr(2), Position: 0},
	}

	nodes := BuildTree(items, 2)
	if len(nodes) != 1 || len(nodes[0].Children) != 1 {
		t.Fatalf("unexpected shape: %+v", nodes)
	}
	if len(nodes[0].Children[0].Children) != 0 {
		t.Error("item beyond the depth cap was kept")
	}
}

func TestDepthOf(t *testing.T) {
	items := []Item{
		{ID: 1, Position: 0},
		{ID: 2, ParentID: ptr(1), Position: 0},
		{ID: 3, ParentID: ptr(2), Position: 0},
	}

	tests := []struct {
		name   string
		parent *int64
		want   int
	}{
		{"root", nil, 0},
		{"under top item", ptr(1), 1},
		{"under second level", ptr(2), 2},
	}
	for _, tt := range tests {
		if got := DepthOf(items, tt.parent); got != tt.want {
			t.Errorf("%s: depthOf = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSubtreeHeight(t *testing.T) {
	items := testItems()
	if got := subtreeHeight(items, 1); got != 1 {
		t.Errorf("leaf height = %d, want 1", got)
	}
	if got := subtreeHeight(items, 2); got != 2 {
		t.Errorf("parent height = %d, want 2", got)
	}
}

func TestIsDescendant(t *testing.T) {
	items := testItems()
	if !isDescendant(items, 4, 2) {
		t.Error("D should be a descendant of B")
	}
	if !isDescendant(items, 2, 2) {
		t.Error("an item counts as its own descendant")
	}
	if isDescendant(items, 2, 4) {
		t.Error("B is not a descendant of D")
	}
	if isDescendant(items, 1, 2) {
		t.Error("A is not a descendant of B")
	}
}
