// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testQueries(t *testing.T) (*Queries, *sql.DB) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return New(db), db
}

func createTestItem(t *testing.T, q *Queries, menuID int64, title string, parent sql.NullInt64, pos int64) int64 {
	t.Helper()
	now := time.Now()
	item, err := q.CreateMenuItem(context.Background(), CreateMenuItemParams{
		MenuID:    menuID,
		ParentID:  parent,
		Title:     title,
		URL:       sql.NullString{String: "/" + title, Valid: true},
		Position:  pos,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem(%s): %v", title, err)
	}
	return item.ID
}

func TestMenuCRUD(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main Menu", Slug: "main-menu"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	if m.Name != "Main Menu" || m.Slug != "main-menu" {
		t.Errorf("created menu = %+v", m)
	}

	bySlug, err := q.GetMenuBySlug(ctx, "main-menu")
	if err != nil {
		t.Fatalf("GetMenuBySlug: %v", err)
	}
	if bySlug.ID != m.ID {
		t.Errorf("GetMenuBySlug ID = %d, want %d", bySlug.ID, m.ID)
	}

	count, err := q.MenuSlugExists(ctx, "main-menu")
	if err != nil || count != 1 {
		t.Errorf("MenuSlugExists = %d, %v, want 1", count, err)
	}

	count, err = q.MenuSlugExistsExcluding(ctx, MenuSlugExistsExcludingParams{Slug: "main-menu", ID: m.ID})
	if err != nil || count != 0 {
		t.Errorf("MenuSlugExistsExcluding (self) = %d, %v, want 0", count, err)
	}

	if err := q.DeleteMenu(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if _, err := q.GetMenuByID(ctx, m.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetMenuByID after delete err = %v, want sql.ErrNoRows", err)
	}
}

func TestGetMaxMenuItemPosition(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	// Empty group reports -1 so the first append lands at position 0.
	pos, err := q.GetMaxMenuItemPosition(ctx, GetMaxMenuItemPositionParams{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMaxMenuItemPosition: %v", err)
	}
	if pos != -1 {
		t.Errorf("empty group max = %d, want -1", pos)
	}

	parent := createTestItem(t, q, m.ID, "a", sql.NullInt64{}, 0)
	createTestItem(t, q, m.ID, "b", sql.NullInt64{}, 1)
	createTestItem(t, q, m.ID, "c", sql.NullInt64{Int64: parent, Valid: true}, 0)

	pos, err = q.GetMaxMenuItemPosition(ctx, GetMaxMenuItemPositionParams{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMaxMenuItemPosition: %v", err)
	}
	if pos != 1 {
		t.Errorf("root group max = %d, want 1", pos)
	}

	pos, err = q.GetMaxMenuItemPosition(ctx, GetMaxMenuItemPositionParams{
		MenuID:   m.ID,
		ParentID: sql.NullInt64{Int64: parent, Valid: true},
	})
	if err != nil {
		t.Fatalf("GetMaxMenuItemPosition(child): %v", err)
	}
	if pos != 0 {
		t.Errorf("child group max = %d, want 0", pos)
	}
}

func TestUpdateMenuItemPositionMissingRow(t *testing.T) {
	q, _ := testQueries(t)

	err := q.UpdateMenuItemPosition(context.Background(), UpdateMenuItemPositionParams{
		ID:        12345,
		Position:  0,
		UpdatedAt: time.Now(),
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows for a missing item", err)
	}
}

func TestTouchMenuBumpsUpdatedAt(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	touched := m.UpdatedAt.Add(time.Hour)
	if err := q.TouchMenu(ctx, m.ID, touched); err != nil {
		t.Fatalf("TouchMenu: %v", err)
	}

	after, err := q.GetMenuByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMenuByID: %v", err)
	}
	if !after.UpdatedAt.After(m.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want later than %v", after.UpdatedAt, m.UpdatedAt)
	}
}

func TestListMenuItemsOrdering(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	// Inserted out of order on purpose.
	createTestItem(t, q, m.ID, "b", sql.NullInt64{}, 1)
	a := createTestItem(t, q, m.ID, "a", sql.NullInt64{}, 0)
	createTestItem(t, q, m.ID, "child", sql.NullInt64{Int64: a, Valid: true}, 0)

	items, err := q.ListMenuItems(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	// Root items come first ordered by position, then child groups.
	if items[0].Title != "a" || items[1].Title != "b" {
		t.Errorf("root order = %q, %q, want a, b", items[0].Title, items[1].Title)
	}
}

func TestListMenuItemsWithPageResolvesSlug(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	page, err := q.CreatePage(ctx, CreatePageParams{Title: "About", Slug: "about", Status: "published"})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	now := time.Now()
	_, err = q.CreateMenuItem(ctx, CreateMenuItemParams{
		MenuID:    m.ID,
		Title:     "About",
		PageID:    sql.NullInt64{Int64: page.ID, Valid: true},
		Position:  0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}

	items, err := q.ListMenuItemsWithPage(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListMenuItemsWithPage: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if !items[0].PageSlug.Valid || items[0].PageSlug.String != "about" {
		t.Errorf("PageSlug = %+v, want about", items[0].PageSlug)
	}
}

func TestDeleteMenuCascadesItems(t *testing.T) {
	q, _ := testQueries(t)
	ctx := context.Background()

	m, err := q.CreateMenu(ctx, CreateMenuParams{Name: "Main", Slug: "main"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	id := createTestItem(t, q, m.ID, "a", sql.NullInt64{}, 0)

	if err := q.DeleteMenu(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if _, err := q.GetMenuItemByID(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("item survived menu deletion, err = %v", err)
	}
}
