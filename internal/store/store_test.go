package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "estg-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() { _ = db.Close() }
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	for _, table := range []string{"sessions", "activity"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestNewDB_PragmasOnEveryConnection(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		defer func() { _ = c.Close() }()
		conns[i] = c
	}

	for i, c := range conns {
		var mode string
		var fk, busy int
		if err := c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d journal_mode: %v", i, err)
		}
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if mode != "wal" || fk != 1 || busy != 5000 {
			t.Errorf("conn %d: journal_mode=%s foreign_keys=%d busy_timeout=%d", i, mode, fk, busy)
		}
	}
}

func TestCreateAndListActivity(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC()
	for i, msg := range []string{"first", "second"} {
		_, err := q.CreateActivity(ctx, CreateActivityParams{
			Level:     "info",
			Category:  "event",
			Message:   msg,
			Actor:     "admin@example.com",
			IpAddress: "127.0.0.1",
			Metadata:  "{}",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	items, err := q.ListActivity(ctx, ListActivityParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Message != "second" {
		t.Errorf("items[0].Message = %q, want newest first", items[0].Message)
	}
	if items[1].Actor != "admin@example.com" {
		t.Errorf("Actor = %q", items[1].Actor)
	}

	count, err := q.CountActivity(ctx)
	if err != nil {
		t.Fatalf("CountActivity: %v", err)
	}
	if count != 2 {
		t.Errorf("CountActivity = %d, want 2", count)
	}
}

func TestDeleteActivityBefore(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	for _, age := range []time.Duration{72 * time.Hour, time.Hour} {
		if _, err := q.CreateActivity(ctx, CreateActivityParams{
			Level:     "info",
			Category:  "system",
			Message:   "entry",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateActivity: %v", err)
		}
	}

	deleted, err := q.DeleteActivityBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteActivityBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, _ := q.CountActivity(ctx)
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}
