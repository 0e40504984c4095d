// Package storage provides SQLite access for browser-search.
//
// It has two jobs:
//   - Snapshots: private, integrity-checked copies of browser databases
//     that a running browser may hold open and locked
//   - BlobStore: the key to blob store behind the warm-start cache
//
// # Snapshots
//
// Browser databases are never queried in place. TakeSnapshot copies the
// file, opens the copy and restricts the connection to read-only queries:
//
//	snap, err := storage.TakeSnapshot(ctx, historyPath,
//	    storage.WithReuseDir(dir),
//	    storage.WithPrefix("chrome-history-"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer snap.Close()
//
//	rows, err := snap.DB.QueryContext(ctx, "SELECT url, title FROM urls")
//
// Close removes the copy on every path. With a reuse directory the copy is
// kept and the next TakeSnapshot with the same prefix refreshes it in place,
// skipping the copy when the size matches, the copy is not older than the
// source and PRAGMA quick_check passes.
//
// # Blob Store
//
//	store, err := storage.OpenBlobStore(filepath.Join(cacheDir, "cache.db"))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Put(ctx, key, blob)
//	blob, storedAt, err := store.Get(ctx, key) // ErrNotFound when absent
//
// The schema is versioned with semantic versions; ApplyMigrations runs every
// migration newer than the recorded version.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Building with
// -tags sqlite_cgo and CGO enabled switches to github.com/mattn/go-sqlite3.
// DriverName holds the registered driver name for sql.Open.
package storage
