package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"navcms/internal/model"
)

// Seed creates the default menus if they do not exist yet.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	defaults := []struct {
		name     string
		slug     string
		location string
	}{
		{"Main Menu", model.MenuMain, "header"},
		{"Footer Menu", model.MenuFooter, "footer"},
	}

	for _, d := range defaults {
		_, err := queries.GetMenuBySlug(ctx, d.slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking for menu %q: %w", d.slug, err)
		}

		menu, err := queries.CreateMenu(ctx, CreateMenuParams{
			Name:     d.name,
			Slug:     d.slug,
			Location: sql.NullString{String: d.location, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("creating menu %q: %w", d.slug, err)
		}

		slog.Info("created default menu", "id", menu.ID, "slug", menu.Slug)
	}

	return nil
}
