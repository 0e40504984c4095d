package extract

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/browser-search/internal/storage"
)

// openFixture creates an SQLite file from the given statements and returns an
// open connection to it
func openFixture(t *testing.T, stmts ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open(storage.DriverName, filepath.Join(t.TempDir(), "fixture.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}
