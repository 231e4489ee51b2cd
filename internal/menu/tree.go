// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"sort"
)

// Node is a menu item with its resolved children, for tree display.
type Node struct {
	Item
	Children []Node `json:"children,omitempty"`
}

// ChildrenOf returns the direct children of parentID (nil for top level),
// sorted ascending by position. The input is not mutated. Position ties,
// which the reorder algorithm never produces, fall back to input order.
func ChildrenOf(items []Item, parentID *int64) []Item {
	var children []Item
	for _, item := range items {
		if sameParent(item.ParentID, parentID) {
			children = append(children, item)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Position < children[j].Position
	})
	return children
}

// indexIn returns the index of id within the sorted children of parentID,
// or -1 when absent.
func indexIn(items []Item, parentID *int64, id int64) int {
	for i, child := range ChildrenOf(items, parentID) {
		if child.ID == id {
			return i
		}
	}
	return -1
}

// BuildTree projects the flat item list into a tree, capped at maxDepth
// levels. Items nested deeper than the cap are dropped from the projection
// rather than rendered at the wrong level.
func BuildTree(items []Item, maxDepth int) []Node {
	return buildLevel(items, nil, 1, maxDepth)
}

func buildLevel(items []Item, parentID *int64, depth, maxDepth int) []Node {
	if depth > maxDepth {
		return nil
	}
	children := ChildrenOf(items, parentID)
	nodes := make([]Node, 0, len(children))
	for _, child := range children {
		id := child.ID
		nodes = append(nodes, Node{
			Item:     child,
			Children: buildLevel(items, &id, depth+1, maxDepth),
		})
	}
	return nodes
}

// DepthOf returns the nesting depth of the group keyed by parentID:
// 0 for the root group, 1 for the children of a top-level item, and so on.
// A missing parent chain or a cycle in the input yields the chain length
// walked so far, which is always deep enough to fail a depth check.
func DepthOf(items []Item, parentID *int64) int {
	byID := make(map[int64]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	depth := 0
	seen := make(map[int64]bool)
	for parentID != nil {
		if seen[*parentID] {
			break
		}
		seen[*parentID] = true
		depth++
		parent, ok := byID[*parentID]
		if !ok {
			break
		}
		parentID = parent.ParentID
	}
	return depth
}

// subtreeHeight returns the number of levels occupied by id and its
// descendants: 1 for a leaf, 2 for an item with children, and so on.
func subtreeHeight(items []Item, id int64) int {
	height := 1
	for _, item := range items {
		if item.ParentID != nil && *item.ParentID == id {
			if h := 1 + subtreeHeight(items, item.ID); h > height {
				height = h
			}
		}
	}
	return height
}

// isDescendant reports whether candidate is id itself or a descendant of id.
func isDescendant(items []Item, candidate, id int64) bool {
	if candidate == id {
		return true
	}
	byID := make(map[int64]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	seen := make(map[int64]bool)
	current, ok := byID[candidate]
	for ok {
		if current.ParentID == nil || seen[current.ID] {
			return false
		}
		seen[current.ID] = true
		if *current.ParentID == id {
			return true
		}
		current, ok = byID[*current.ParentID]
	}
	return false
}
