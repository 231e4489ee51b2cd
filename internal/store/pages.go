// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"navcms/internal/model"
)

const pageColumns = "id, title, slug, status, created_at, updated_at, published_at"

func scanPage(row interface{ Scan(...any) error }) (model.Page, error) {
	var p model.Page
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	return p, err
}

// CreatePageParams holds parameters for CreatePage.
type CreatePageParams struct {
	Title       string
	Slug        string
	Status      string
	PublishedAt sql.NullTime
}

// CreatePage inserts a new page and returns it.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO pages (title, slug, status, published_at) VALUES (?, ?, ?, ?) RETURNING `+pageColumns,
		arg.Title, arg.Slug, arg.Status, arg.PublishedAt)
	return scanPage(row)
}

// GetPageByID fetches a page by ID.
func (q *Queries) GetPageByID(ctx context.Context, id int64) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// GetPageBySlug fetches a page by slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// ListPagesParams holds pagination parameters for ListPages.
type ListPagesParams struct {
	Limit  int64
	Offset int64
}

// ListPages returns pages ordered by title.
func (q *Queries) ListPages(ctx context.Context, arg ListPagesParams) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY title LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CountPages returns the total number of pages.
func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	return count, err
}

// PageSlugExists reports how many pages use the given slug.
func (q *Queries) PageSlugExists(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE slug = ?`, slug).Scan(&count)
	return count, err
}

// UpdatePageParams holds parameters for UpdatePage.
type UpdatePageParams struct {
	ID          int64
	Title       string
	Slug        string
	Status      string
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

// UpdatePage updates a page and returns it.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE pages SET title = ?, slug = ?, status = ?, published_at = ?, updated_at = ?
		 WHERE id = ? RETURNING `+pageColumns,
		arg.Title, arg.Slug, arg.Status, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

// DeletePage deletes a page. Menu items linking to it keep their row with page_id cleared.
func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}
