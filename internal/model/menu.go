// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across the storage,
// service and handler layers.
package model

import (
	"database/sql"
	"time"
)

// Slugs of the menus created by the seed data.
const (
	MenuMain   = "main"
	MenuFooter = "footer"
)

// Link target attribute values.
const (
	TargetSelf   = "_self"
	TargetBlank  = "_blank"
	TargetParent = "_parent"
	TargetTop    = "_top"
)

// ValidTargets lists every accepted link target.
var ValidTargets = []string{TargetSelf, TargetBlank, TargetParent, TargetTop}

// IsValidTarget reports whether target is one of the accepted link
// target values.
func IsValidTarget(target string) bool {
	switch target {
	case TargetSelf, TargetBlank, TargetParent, TargetTop:
		return true
	}
	return false
}

// Menu is a named navigation menu. Location is a free-form hint for the
// theme (header, footer) and carries no semantics here.
type Menu struct {
	ID        int64
	Name      string
	Slug      string
	Location  sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuItem is one entry in a menu. ParentID is null for top-level items.
// URL and PageID are mutually exclusive; whichever is set decides how the
// link renders.
type MenuItem struct {
	ID        int64
	MenuID    int64
	ParentID  sql.NullInt64
	Title     string
	URL       sql.NullString
	Target    sql.NullString
	PageID    sql.NullInt64
	Position  int64
	CSSClass  sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
