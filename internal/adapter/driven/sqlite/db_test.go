package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_FileBackedWithMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, err := db.MigrateSessions()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	version, err = db.MigrateSessions()
	require.NoError(t, err, "second run is a no-op")
	assert.Equal(t, uint(1), version)

	var mode string
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var count int
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Zero(t, count)
}

func TestMemoryDB_PoolsShareSchema(t *testing.T) {
	db := newMemoryDB(t)

	_, err := db.Writer.ExecContext(context.Background(),
		`INSERT INTO sessions (id, username, created_at, last_seen_at) VALUES ('s1', 'alice', 1, 1)`)
	require.NoError(t, err)

	var username string
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), `SELECT username FROM sessions WHERE id = 's1'`).Scan(&username))
	assert.Equal(t, "alice", username)
}
