// Package testutil provides shared test helpers: a migrated SQLite store on
// a temp dir and builders for history fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/platewise/internal/storage"
)

// SetupTestDB creates a migrated SQLite store in a temp directory. The store
// is closed when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "platewise.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedItem stores a raw value, failing the test on error.
func SeedItem(t *testing.T, store *storage.SQLiteStorage, key, value string) {
	t.Helper()
	if err := store.SetItem(context.Background(), key, value); err != nil {
		t.Fatalf("failed to seed %q: %v", key, err)
	}
}
