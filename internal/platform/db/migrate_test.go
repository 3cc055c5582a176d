package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_records.sql": "CREATE TABLE b (id INT);",
		"001_init.sql":    "CREATE TABLE a (id INT);",
		"010_users.sql":   "CREATE TABLE c (id INT);",
		"notes.txt":       "ignore me",
		"README.sql":      "no numeric prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 10} {
		if migrations[i].Version != want {
			t.Errorf("migration %d: expected version %d, got %d", i, want, migrations[i].Version)
		}
	}
	if migrations[0].SQL != "CREATE TABLE a (id INT);" {
		t.Errorf("unexpected SQL for first migration: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent-migrations-dir")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMapError(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if !errors.Is(MapError(pgx.ErrNoRows), ErrNotFound) {
		t.Error("expected pgx.ErrNoRows to map to ErrNotFound")
	}
	if !errors.Is(MapError(errors.New("connection refused")), ErrUnavailable) {
		t.Error("expected generic error to map to ErrUnavailable")
	}
}
