// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access for navcms.
package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/*.sql
var migrations embed.FS

// connPragmas go into the DSN so the driver applies them to every pool
// connection. foreign_keys, busy_timeout and the rest are per-connection
// in SQLite; a plain Exec would configure only whichever connection it
// happened to run on, and menu item cascades depend on foreign_keys
// being enforced everywhere. WAL is persistent in the database file but
// is kept here so a fresh file starts out right.
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"cache_size(-64000)",
	"foreign_keys(1)",
	"temp_store(MEMORY)",
}

// NewDB opens the SQLite database at path and verifies the connection.
func NewDB(path string) (*sql.DB, error) {
	dsn := "file:" + path
	sep := "?"
	for _, pragma := range connPragmas {
		dsn += sep + "_pragma=" + pragma
		sep = "&"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Migrate applies all pending embedded migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
