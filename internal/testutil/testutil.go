// Package testutil opens throwaway databases and media stores for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"memoria/internal/config"
	"memoria/internal/repository"
	"memoria/internal/storage"
)

// NewDB returns a migrated SQLite database living in the test's temp dir.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := config.NewSQLiteDB(filepath.Join(t.TempDir(), "memoria.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.InitSchema(context.Background(), db))
	return db
}

// NewStager returns a stager over a fresh local uploads root.
func NewStager(t *testing.T) (*storage.Stager, *storage.Local) {
	t.Helper()

	local, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	stager := storage.NewStager(local, config.NewUploadsConfig(local.Root()))
	require.NoError(t, stager.Init(context.Background()))
	return stager, local
}
