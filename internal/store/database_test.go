// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"testing"
)

// Pool connections are created lazily, so pragma configuration must come
// from the DSN. Holding two connections at once forces the pool to open a
// second one and exposes any connection that missed the settings.
func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	conn1, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("first Conn: %v", err)
	}
	defer func() { _ = conn1.Close() }()

	conn2, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("second Conn: %v", err)
	}
	defer func() { _ = conn2.Close() }()

	var fk1, fk2 int64
	if err := conn1.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk1); err != nil {
		t.Fatalf("querying pragma on first connection: %v", err)
	}
	if err := conn2.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk2); err != nil {
		t.Fatalf("querying pragma on second connection: %v", err)
	}
	if fk1 != 1 || fk2 != 1 {
		t.Errorf("foreign_keys = %d and %d, want 1 on every connection", fk1, fk2)
	}
}
