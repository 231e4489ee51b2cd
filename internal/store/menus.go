// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"navcms/internal/model"
)

const menuColumns = "id, name, slug, location, created_at, updated_at"

const menuItemColumns = "id, menu_id, parent_id, title, url, target, page_id, position, css_class, is_active, created_at, updated_at"

func scanMenu(row interface{ Scan(...any) error }) (model.Menu, error) {
	var m model.Menu
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.Location, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanMenuItem(row interface{ Scan(...any) error }) (model.MenuItem, error) {
	var i model.MenuItem
	err := row.Scan(&i.ID, &i.MenuID, &i.ParentID, &i.Title, &i.URL, &i.Target,
		&i.PageID, &i.Position, &i.CSSClass, &i.IsActive, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// CreateMenuParams holds parameters for CreateMenu.
type CreateMenuParams struct {
	Name     string
	Slug     string
	Location sql.NullString
}

// CreateMenu inserts a new menu and returns it.
func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO menus (name, slug, location) VALUES (?, ?, ?) RETURNING `+menuColumns,
		arg.Name, arg.Slug, arg.Location)
	return scanMenu(row)
}

// GetMenuByID fetches a menu by ID.
func (q *Queries) GetMenuByID(ctx context.Context, id int64) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = ?`, id)
	return scanMenu(row)
}

// GetMenuBySlug fetches a menu by slug.
func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE slug = ?`, slug)
	return scanMenu(row)
}

// ListMenus returns all menus ordered by name.
func (q *Queries) ListMenus(ctx context.Context) ([]model.Menu, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// MenuSlugExists reports how many menus use the given slug.
func (q *Queries) MenuSlugExists(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menus WHERE slug = ?`, slug).Scan(&count)
	return count, err
}

// MenuSlugExistsExcludingParams holds parameters for MenuSlugExistsExcluding.
type MenuSlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// MenuSlugExistsExcluding reports how many menus other than ID use the given slug.
func (q *Queries) MenuSlugExistsExcluding(ctx context.Context, arg MenuSlugExistsExcludingParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM menus WHERE slug = ? AND id != ?`, arg.Slug, arg.ID).Scan(&count)
	return count, err
}

// UpdateMenuParams holds parameters for UpdateMenu.
type UpdateMenuParams struct {
	ID        int64
	Name      string
	Slug      string
	Location  sql.NullString
	UpdatedAt time.Time
}

// UpdateMenu updates a menu's name, slug and location.
func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE menus SET name = ?, slug = ?, location = ?, updated_at = ? WHERE id = ? RETURNING `+menuColumns,
		arg.Name, arg.Slug, arg.Location, arg.UpdatedAt, arg.ID)
	return scanMenu(row)
}

// TouchMenu bumps a menu's updated_at, used for optimistic concurrency checks.
func (q *Queries) TouchMenu(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE menus SET updated_at = ? WHERE id = ?`, updatedAt, id)
	return err
}

// DeleteMenu deletes a menu; menu items cascade.
func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	return err
}

// ListMenuItems returns all items of a menu, parents first, ordered by position.
func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE menu_id = ?
		 ORDER BY parent_id IS NOT NULL, parent_id, position`, menuID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MenuItemWithPage is a menu item joined with the slug of its linked page.
type MenuItemWithPage struct {
	model.MenuItem
	PageSlug sql.NullString
}

// ListMenuItemsWithPage returns all items of a menu with linked page slugs.
func (q *Queries) ListMenuItemsWithPage(ctx context.Context, menuID int64) ([]MenuItemWithPage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT mi.id, mi.menu_id, mi.parent_id, mi.title, mi.url, mi.target, mi.page_id,
		        mi.position, mi.css_class, mi.is_active, mi.created_at, mi.updated_at, p.slug
		 FROM menu_items mi
		 LEFT JOIN pages p ON p.id = mi.page_id
		 WHERE mi.menu_id = ?
		 ORDER BY mi.parent_id IS NOT NULL, mi.parent_id, mi.position`, menuID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []MenuItemWithPage
	for rows.Next() {
		var i MenuItemWithPage
		if err := rows.Scan(&i.ID, &i.MenuID, &i.ParentID, &i.Title, &i.URL, &i.Target,
			&i.PageID, &i.Position, &i.CSSClass, &i.IsActive, &i.CreatedAt, &i.UpdatedAt,
			&i.PageSlug); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// GetMenuItemByID fetches a single menu item.
func (q *Queries) GetMenuItemByID(ctx context.Context, id int64) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id)
	return scanMenuItem(row)
}

// GetMaxMenuItemPositionParams holds parameters for GetMaxMenuItemPosition.
type GetMaxMenuItemPositionParams struct {
	MenuID   int64
	ParentID sql.NullInt64
}

// GetMaxMenuItemPosition returns the highest position within a parent group,
// or -1 when the group is empty.
func (q *Queries) GetMaxMenuItemPosition(ctx context.Context, arg GetMaxMenuItemPositionParams) (int64, error) {
	var maxPos sql.NullInt64
	var err error
	if arg.ParentID.Valid {
		err = q.db.QueryRowContext(ctx,
			`SELECT MAX(position) FROM menu_items WHERE menu_id = ? AND parent_id = ?`,
			arg.MenuID, arg.ParentID.Int64).Scan(&maxPos)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT MAX(position) FROM menu_items WHERE menu_id = ? AND parent_id IS NULL`,
			arg.MenuID).Scan(&maxPos)
	}
	if err != nil {
		return -1, err
	}
	if !maxPos.Valid {
		return -1, nil
	}
	return maxPos.Int64, nil
}

// CreateMenuItemParams holds parameters for CreateMenuItem.
type CreateMenuItemParams struct {
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

// CreateMenuItem inserts a new menu item and returns it.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO menu_items (menu_id, parent_id, title, url, target, page_id, position, css_class, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+menuItemColumns,
		arg.MenuID, arg.ParentID, arg.Title, arg.URL, arg.Target, arg.PageID,
		arg.Position, arg.CSSClass, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	return scanMenuItem(row)
}

// UpdateMenuItemParams holds parameters for UpdateMenuItem.
type UpdateMenuItemParams struct {
	ID        int64
	ParentID  sql.NullInt64
	Title     string
	URL       sql.NullString
	Target    sql.NullString
	PageID    sql.NullInt64
	Position  int64
	CSSClass  sql.NullString
	IsActive  bool
	UpdatedAt time.Time
}

// UpdateMenuItem updates all editable fields of a menu item and returns it.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE menu_items SET parent_id = ?, title = ?, url = ?, target = ?, page_id = ?,
		        position = ?, css_class = ?, is_active = ?, updated_at = ?
		 WHERE id = ? RETURNING `+menuItemColumns,
		arg.ParentID, arg.Title, arg.URL, arg.Target, arg.PageID,
		arg.Position, arg.CSSClass, arg.IsActive, arg.UpdatedAt, arg.ID)
	return scanMenuItem(row)
}

// UpdateMenuItemPositionParams holds parameters for UpdateMenuItemPosition.
type UpdateMenuItemPositionParams struct {
	ID        int64
	ParentID  sql.NullInt64
	Position  int64
	UpdatedAt time.Time
}

// UpdateMenuItemPosition updates only the parent and position of a menu item.
// Used by the reorder batch; all other fields are left untouched.
func (q *Queries) UpdateMenuItemPosition(ctx context.Context, arg UpdateMenuItemPositionParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE menu_items SET parent_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		arg.ParentID, arg.Position, arg.UpdatedAt, arg.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMenuItem deletes a menu item; children cascade.
func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}

// CountMenuItems returns the number of items in a menu.
func (q *Queries) CountMenuItems(ctx context.Context, menuID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items WHERE menu_id = ?`, menuID).Scan(&count)
	return count, err
}
