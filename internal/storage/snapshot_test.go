package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/browser-search/pkg/types"
)

// createSourceDB writes a small database standing in for a browser store
func createSourceDB(t *testing.T, path string, rows int) {
	t.Helper()

	db, err := sql.Open(DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT)")
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		_, err = db.Exec("INSERT INTO urls (url, title) VALUES (?, ?)", "https://example.com/"+string(rune('a'+i%26)), "title")
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM urls").Scan(&n))
	return n
}

func TestTakeSnapshotFreshTempFile(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "History")
	createSourceDB(t, src, 3)

	snap, err := TakeSnapshot(ctx, src)
	require.NoError(t, err)

	assert.True(t, snap.Copied)
	assert.NotEqual(t, src, snap.Path)
	assert.Equal(t, 3, countRows(t, snap.DB))

	require.NoError(t, snap.Close())
	_, err = os.Stat(snap.Path)
	assert.True(t, os.IsNotExist(err), "snapshot file should be removed on close")

	// Close is idempotent
	assert.NoError(t, snap.Close())
}

// openWALSource creates a WAL-mode database whose rows stay in the -wal file
// while the returned connection is open, like a running browser's store
func openWALSource(t *testing.T, path string, rows int) {
	t.Helper()

	db, err := sql.Open(DriverName, path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA wal_autocheckpoint=0",
		"CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT)",
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	for i := 0; i < rows; i++ {
		_, err = db.Exec("INSERT INTO urls (url, title) VALUES (?, ?)", "https://example.com/wal", "title")
		require.NoError(t, err)
	}

	info, err := os.Stat(path + "-wal")
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestTakeSnapshotIncludesWriteAheadLog(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "places.sqlite")
	openWALSource(t, src, 4)

	snap, err := TakeSnapshot(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 4, countRows(t, snap.DB))

	require.NoError(t, snap.Close())
	for _, s := range sideSuffixes {
		_, err := os.Stat(snap.Path + s)
		assert.True(t, os.IsNotExist(err), "%s removed on close", s)
	}
}

func TestTakeSnapshotRecopiesWhileWALPending(t *testing.T) {
	ctx := context.Background()
	reuse := t.TempDir()
	src := filepath.Join(t.TempDir(), "places.sqlite")
	openWALSource(t, src, 2)

	first, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("firefox-places-"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("firefox-places-"))
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.Copied)
	assert.Equal(t, 2, countRows(t, second.DB))
}

func TestTakeSnapshotIsReadOnly(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "History")
	createSourceDB(t, src, 1)

	snap, err := TakeSnapshot(ctx, src)
	require.NoError(t, err)
	defer snap.Close()

	_, err = snap.DB.Exec("DELETE FROM urls")
	assert.Error(t, err)
}

func TestTakeSnapshotMissingSource(t *testing.T) {
	_, err := TakeSnapshot(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSnapshotFailed)
}

func TestTakeSnapshotCleansUpOnFailure(t *testing.T) {
	reuse := t.TempDir()
	src := filepath.Join(t.TempDir(), "History")
	require.NoError(t, os.WriteFile(src, []byte("definitely not a database"), 0644))

	_, err := TakeSnapshot(context.Background(), src, WithReuseDir(reuse), WithPrefix("chrome-history-"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSnapshotFailed)

	entries, err := os.ReadDir(reuse)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed snapshot must not leave files behind")
}

func TestTakeSnapshotReusesPreviousCopy(t *testing.T) {
	ctx := context.Background()
	reuse := t.TempDir()
	src := filepath.Join(t.TempDir(), "History")
	createSourceDB(t, src, 5)

	// Make sure the source is strictly older than the copy
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, old, old))

	first, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("chrome-history-"))
	require.NoError(t, err)
	assert.True(t, first.Copied)
	require.NoError(t, first.Close())

	_, err = os.Stat(first.Path)
	require.NoError(t, err, "reuse dir keeps the snapshot between runs")

	second, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("chrome-history-"))
	require.NoError(t, err)
	defer second.Close()

	assert.False(t, second.Copied, "identical snapshot should be reused")
	assert.Equal(t, 5, countRows(t, second.DB))

	_, err = os.Stat(first.Path)
	assert.True(t, os.IsNotExist(err) || first.Path == second.Path, "previous snapshot is refreshed in place")

	matches := findPrevious(reuse, "chrome-history-")
	assert.Len(t, matches, 1)
}

func TestTakeSnapshotRecopiesWhenSizeChanges(t *testing.T) {
	ctx := context.Background()
	reuse := t.TempDir()
	src := filepath.Join(t.TempDir(), "History")
	createSourceDB(t, src, 1)

	first, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("edge-history-"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Grow the source well past one page
	db, err := sql.Open(DriverName, src)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE padding (data BLOB)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO padding VALUES (zeroblob(65536))")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	second, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("edge-history-"))
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.Copied)
}

func TestTakeSnapshotRecopiesCorruptPrevious(t *testing.T) {
	ctx := context.Background()
	reuse := t.TempDir()
	src := filepath.Join(t.TempDir(), "History")
	createSourceDB(t, src, 2)

	info, err := os.Stat(src)
	require.NoError(t, err)

	// A same-size garbage file posing as the previous snapshot
	garbage := make([]byte, info.Size())
	for i := range garbage {
		garbage[i] = 0xAB
	}
	require.NoError(t, os.WriteFile(filepath.Join(reuse, "brave-history-stale"), garbage, 0600))

	snap, err := TakeSnapshot(ctx, src, WithReuseDir(reuse), WithPrefix("brave-history-"))
	require.NoError(t, err)
	defer snap.Close()

	assert.True(t, snap.Copied)
	assert.Equal(t, 2, countRows(t, snap.DB))
}

func TestAllocateTargetRemovesStaleDuplicates(t *testing.T) {
	reuse := t.TempDir()
	for _, name := range []string{"arc-history-1", "arc-history-2", "arc-history-2-wal", "other-file"} {
		require.NoError(t, os.WriteFile(filepath.Join(reuse, name), []byte("x"), 0600))
	}

	target, err := allocateTarget(snapshotConfig{reuseDir: reuse, prefix: "arc-history-"})
	require.NoError(t, err)

	assert.Equal(t, []string{target}, findPrevious(reuse, "arc-history-"))
	_, err = os.Stat(filepath.Join(reuse, "other-file"))
	assert.NoError(t, err, "unrelated files are left alone")
	_, err = os.Stat(filepath.Join(reuse, "arc-history-2-wal"))
	assert.True(t, os.IsNotExist(err))
}

func TestIsSideFile(t *testing.T) {
	assert.True(t, isSideFile("x-wal"))
	assert.True(t, isSideFile("x-shm"))
	assert.True(t, isSideFile("x-journal"))
	assert.False(t, isSideFile("x.db"))
}
