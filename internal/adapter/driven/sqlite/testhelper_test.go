package sqlite

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// newMemoryDB opens a migrated in-memory session database private to t. Both
// pools reach the same database through cache=shared.
func newMemoryDB(t *testing.T) *DB {
	t.Helper()

	name := "sessions-" + url.PathEscape(t.Name())
	db, err := openDB(fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", name, sessionPragmas), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.MigrateSessions()
	require.NoError(t, err)
	return db
}
