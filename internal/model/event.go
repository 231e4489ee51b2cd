// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event severity levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories, used to group event-log entries in queries.
const (
	EventCategoryMenu    = "menu"
	EventCategoryPage    = "page"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
	EventCategoryCache   = "cache"
	EventCategoryWebhook = "webhook"
)

// Event is one row of the persistent event log. Metadata holds a flat
// JSON object of the attributes the log record carried.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
