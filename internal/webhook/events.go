// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook provides webhook event dispatching and delivery.
package webhook

import (
	"time"
)

// Event is a webhook event ready for dispatch.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// MenuEventData carries menu-level event payloads.
type MenuEventData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MenuItemEventData carries item-level event payloads.
type MenuItemEventData struct {
	ID       int64  `json:"id"`
	MenuID   int64  `json:"menu_id"`
	Title    string `json:"title"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Position int64  `json:"position"`
}

// ReorderEventData carries the payload of a completed reorder batch.
type ReorderEventData struct {
	MenuID   int64  `json:"menu_id"`
	MenuSlug string `json:"menu_slug"`
	ItemID   int64  `json:"item_id"`
	Items    int    `json:"items"`
}

// PageEventData carries page-level event payloads.
type PageEventData struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}
