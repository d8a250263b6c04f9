package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestSQLiteStorage_ItemLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, found, err := store.GetItem(ctx, "foodAnalysisHistory")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetItem(ctx, "foodAnalysisHistory", `[]`))
	value, found, err := store.GetItem(ctx, "foodAnalysisHistory")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.SetItem(ctx, "foodAnalysisHistory", `[{"id":1}]`))
	value, _, err = store.GetItem(ctx, "foodAnalysisHistory")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, value)

	require.NoError(t, store.RemoveItem(ctx, "foodAnalysisHistory"))
	_, found, err = store.GetItem(ctx, "foodAnalysisHistory")
	require.NoError(t, err)
	assert.False(t, found)

	// Removing again is a no-op.
	require.NoError(t, store.RemoveItem(ctx, "foodAnalysisHistory"))
}

func TestSQLiteStorage_EmptyValueIsStored(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "k", ""))
	value, found, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, value)
}

func TestSQLiteStorage_Keys(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, store.SetItem(ctx, k, k))
	}

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestSQLiteStorage_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // Testing nil context handling
	_, _, err := store.GetItem(nil, "k")
	assert.ErrorIs(t, err, ErrNilContext)

	err = store.SetItem(context.Background(), "  ", "v")
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "platewise.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SetItem(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	value, found, err := reopened.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
}

func TestSQLiteStorage_UpdatedAt(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	fixed := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	require.NoError(t, store.SetItem(ctx, "k", "v"))

	var updated time.Time
	require.NoError(t, store.db.QueryRow(`SELECT updated_at FROM local_storage WHERE key = 'k'`).Scan(&updated))
	assert.True(t, fixed.Equal(updated))
}

func TestSQLiteStorage_UpdateItem(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		err := store.UpdateItem(ctx, "counter", func(value string, found bool) (string, bool, error) {
			assert.False(t, found)
			assert.Empty(t, value)
			return "1", true, nil
		})
		require.NoError(t, err)

		value, found, err := store.GetItem(ctx, "counter")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "1", value)
	})

	t.Run("unchanged is not written", func(t *testing.T) {
		err := store.UpdateItem(ctx, "counter", func(value string, found bool) (string, bool, error) {
			assert.True(t, found)
			assert.Equal(t, "1", value)
			return "ignored", false, nil
		})
		require.NoError(t, err)

		value, _, err := store.GetItem(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "1", value)
	})

	t.Run("callback error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.UpdateItem(ctx, "counter", func(string, bool) (string, bool, error) {
			return "2", true, boom
		})
		assert.ErrorIs(t, err, boom)

		value, _, err := store.GetItem(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "1", value)
	})
}
