package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
	assert.Len(t, migrations, ExpectedSchemaVersion)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrate_FromVersionOne(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "v1.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.apply(ctx, migrations[0]))
	_, err = store.db.Exec(`INSERT INTO local_storage (key, value) VALUES ('legacy', '[]')`)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(ctx))

	var hasTimestamp bool
	require.NoError(t, store.db.QueryRow(
		`SELECT updated_at IS NOT NULL FROM local_storage WHERE key = 'legacy'`).Scan(&hasTimestamp))
	assert.True(t, hasTimestamp)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "future.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)

	err = store.Migrate(context.Background())
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}
