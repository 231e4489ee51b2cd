// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Page lifecycle states. There is no scheduled state; publishing is
// immediate.
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
)

// Page is a content page that menu items may link to by ID. PublishedAt
// is set the first time the page goes published and never cleared.
type Page struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
}
