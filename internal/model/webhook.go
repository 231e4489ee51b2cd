// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Webhook event types. The string form is what subscribers see and what
// is stored in each webhook's events list.
const (
	EventMenuCreated        = "menu.created"
	EventMenuUpdated        = "menu.updated"
	EventMenuDeleted        = "menu.deleted"
	EventMenuItemCreated    = "menu.item.created"
	EventMenuItemUpdated    = "menu.item.updated"
	EventMenuItemDeleted    = "menu.item.deleted"
	EventMenuItemsReordered = "menu.items.reordered"
	EventPageCreated        = "page.created"
	EventPageUpdated        = "page.updated"
	EventPageDeleted        = "page.deleted"
)

// Webhook delivery lifecycle. A delivery moves pending -> delivered, or
// pending -> failed -> ... -> dead once retries are exhausted.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
	DeliveryStatusDead      = "dead"
)

// WebhookEventInfo describes one subscribable event type.
type WebhookEventInfo struct {
	Type        string
	Description string
}

// AllWebhookEvents returns the catalog of subscribable event types.
func AllWebhookEvents() []WebhookEventInfo {
	return []WebhookEventInfo{
		{EventMenuCreated, "When a new menu is created"},
		{EventMenuUpdated, "When a menu is updated"},
		{EventMenuDeleted, "When a menu is deleted"},
		{EventMenuItemCreated, "When a menu item is created"},
		{EventMenuItemUpdated, "When a menu item is updated"},
		{EventMenuItemDeleted, "When a menu item is deleted"},
		{EventMenuItemsReordered, "When menu items are reordered"},
		{EventPageCreated, "When a new page is created"},
		{EventPageUpdated, "When a page is updated"},
		{EventPageDeleted, "When a page is deleted"},
	}
}

// Webhook is a subscriber endpoint. Events and Headers are stored as JSON
// text and read through GetEvents and GetHeaders; Secret signs payloads
// and is never serialized.
type Webhook struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Secret    string    `json:"-"`
	Events    string    `json:"-"`
	IsActive  bool      `json:"is_active"`
	Headers   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WebhookDelivery records one delivery and its retry state.
type WebhookDelivery struct {
	ID           int64         `json:"id"`
	WebhookID    int64         `json:"webhook_id"`
	UUID         string        `json:"uuid"`
	Event        string        `json:"event"`
	Payload      string        `json:"payload"`
	ResponseCode sql.NullInt64 `json:"response_code,omitempty"`
	ResponseBody string        `json:"response_body,omitempty"`
	Attempts     int64         `json:"attempts"`
	NextRetryAt  sql.NullTime  `json:"next_retry_at,omitempty"`
	DeliveredAt  sql.NullTime  `json:"delivered_at,omitempty"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// GenerateWebhookSecret returns 32 random bytes hex-encoded, for HMAC
// payload signing.
func GenerateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GetEvents decodes the subscribed event list. Malformed or empty JSON
// yields nil.
func (w *Webhook) GetEvents() []string {
	var events []string
	if w.Events != "" {
		_ = json.Unmarshal([]byte(w.Events), &events)
	}
	return events
}

// SetEvents stores the event list as JSON text. An empty list is stored
// as "[]", not "".
func (w *Webhook) SetEvents(events []string) {
	if len(events) == 0 {
		w.Events = "[]"
		return
	}
	data, _ := json.Marshal(events)
	w.Events = string(data)
}

// HasEvent reports whether the webhook subscribes to event.
func (w *Webhook) HasEvent(event string) bool {
	for _, e := range w.GetEvents() {
		if e == event {
			return true
		}
	}
	return false
}

// GetHeaders decodes the extra delivery headers. The result is never nil.
func (w *Webhook) GetHeaders() map[string]string {
	headers := make(map[string]string)
	if w.Headers != "" {
		_ = json.Unmarshal([]byte(w.Headers), &headers)
	}
	return headers
}
