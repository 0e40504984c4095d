package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/dshills/browser-search/pkg/types"
)

// sideSuffixes are the files SQLite keeps next to a database
var sideSuffixes = []string{"-wal", "-shm", "-journal"}

// pendingSuffixes hold committed or in-flight changes that are not yet in the
// main file. The shared-memory index is rebuilt by SQLite and never copied.
var pendingSuffixes = []string{"-wal", "-journal"}

// Snapshot is a private, integrity-checked copy of a database that a live
// browser may hold open. Close releases the connection and removes the copy.
type Snapshot struct {
	DB   *sql.DB
	Path string

	// Copied reports whether the source was copied for this snapshot, as
	// opposed to reusing an identical previous copy
	Copied bool

	keep      bool
	closeOnce sync.Once
	closeErr  error
}

// Close closes the connection and deletes the snapshot file. With a reuse
// directory the main file is retained for the next run. Close is idempotent.
func (s *Snapshot) Close() error {
	s.closeOnce.Do(func() {
		if s.DB != nil {
			s.closeErr = s.DB.Close()
		}
		removeSideFiles(s.Path)
		if !s.keep {
			if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

type snapshotConfig struct {
	reuseDir string
	prefix   string
	logger   zerolog.Logger
}

// SnapshotOption customises TakeSnapshot
type SnapshotOption func(*snapshotConfig)

// WithReuseDir keeps snapshots in dir between runs instead of the system temp
// directory
func WithReuseDir(dir string) SnapshotOption {
	return func(c *snapshotConfig) { c.reuseDir = dir }
}

// WithPrefix names snapshot files so a later run can find them again
func WithPrefix(prefix string) SnapshotOption {
	return func(c *snapshotConfig) { c.prefix = prefix }
}

// WithLogger sets the logger used for copy decisions
func WithLogger(l zerolog.Logger) SnapshotOption {
	return func(c *snapshotConfig) { c.logger = l }
}

// TakeSnapshot returns a readable snapshot of the database at src. The live
// file is only ever read by the copy; queries run against the snapshot.
//
// With a reuse directory and prefix, a previous snapshot named prefix* is
// refreshed in place. The copy is skipped when the previous snapshot has the
// source's size, is not older than the source and passes PRAGMA quick_check.
func TakeSnapshot(ctx context.Context, src string, opts ...SnapshotOption) (_ *Snapshot, err error) {
	cfg := snapshotConfig{logger: zerolog.Nop()}
	for _, o := range opts {
		o(&cfg)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: stat source: %w", types.ErrSnapshotFailed, err)
	}

	target, err := allocateTarget(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: allocate: %w", types.ErrSnapshotFailed, err)
	}

	// Every failure below must leave nothing behind
	defer func() {
		if err != nil {
			removeSnapshotFiles(target)
		}
	}()

	snap := &Snapshot{Path: target, keep: cfg.reuseDir != ""}

	db, reason := probeExisting(ctx, src, srcInfo, target)
	if db == nil {
		cfg.logger.Debug().
			Str("source", src).
			Str("reason", reason).
			Str("size", humanize.Bytes(uint64(srcInfo.Size()))).
			Msg("copying database")

		if err := copyFile(src, target); err != nil {
			return nil, fmt.Errorf("%w: copy: %w", types.ErrSnapshotFailed, err)
		}
		if err := copyPendingFiles(src, target); err != nil {
			return nil, fmt.Errorf("%w: copy side files: %w", types.ErrSnapshotFailed, err)
		}
		snap.Copied = true

		db, err = openSnapshot(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("%w: open: %w", types.ErrSnapshotFailed, err)
		}
	} else {
		cfg.logger.Debug().Str("source", src).Msg("reusing snapshot")
	}

	snap.DB = db
	return snap, nil
}

// allocateTarget returns the path the snapshot will live at. A previous
// snapshot matching the prefix is moved there; other matches are stale and
// removed.
func allocateTarget(cfg snapshotConfig) (string, error) {
	dir := cfg.reuseDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	var previous []string
	if dir != "" && cfg.prefix != "" {
		previous = findPrevious(dir, cfg.prefix)
	}

	pattern := cfg.prefix
	if pattern == "" {
		pattern = "snapshot-"
	}
	f, err := os.CreateTemp(dir, pattern+"*")
	if err != nil {
		return "", err
	}
	target := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	for i, p := range previous {
		removeSideFiles(p)
		if i > 0 {
			_ = os.Remove(p)
			continue
		}
		if err := os.Rename(p, target); err != nil {
			// Cross-device or locked: fall back to copying the old snapshot
			if cerr := copyFile(p, target); cerr == nil {
				_ = os.Remove(p)
			}
		}
	}

	return target, nil
}

// findPrevious lists snapshot files in dir named prefix*, excluding SQLite
// side files, in name order
func findPrevious(dir, prefix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || isSideFile(name) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out
}

// probeExisting opens target when it can stand in for a fresh copy of the
// source. It returns nil and the reason a copy is needed otherwise.
func probeExisting(ctx context.Context, src string, srcInfo os.FileInfo, target string) (*sql.DB, string) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, "no previous snapshot"
	}
	if hasPendingFiles(src) {
		return nil, "source has uncheckpointed changes"
	}
	if info.Size() != srcInfo.Size() {
		return nil, "size changed"
	}
	if info.ModTime().Before(srcInfo.ModTime()) {
		return nil, "source modified"
	}

	db, err := openSnapshot(ctx, target)
	if err != nil {
		return nil, "integrity probe failed"
	}
	return db, ""
}

// openSnapshot opens a snapshot, verifies it with PRAGMA quick_check and
// locks the connection to read-only queries
func openSnapshot(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}

	// One connection keeps the query_only pragma in effect for every query
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := IntegrityCheck(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set query_only: %w", err)
	}

	return db, nil
}

// IntegrityCheck runs SQLite's quick_check and fails unless it reports ok
func IntegrityCheck(ctx context.Context, db *sql.DB) error {
	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check(1)").Scan(&result); err != nil {
		return fmt.Errorf("integrity probe: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity probe: %s", result)
	}
	return nil
}

// copyFile copies src over dst, truncating dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// copyPendingFiles copies the source's write-ahead log or rollback journal
// next to the snapshot so opening it sees the same committed state
func copyPendingFiles(src, target string) error {
	for _, s := range pendingSuffixes {
		info, err := os.Stat(src + s)
		if err != nil || info.Size() == 0 {
			continue
		}
		if err := copyFile(src+s, target+s); err != nil {
			return err
		}
	}
	return nil
}

func hasPendingFiles(src string) bool {
	for _, s := range pendingSuffixes {
		if info, err := os.Stat(src + s); err == nil && info.Size() > 0 {
			return true
		}
	}
	return false
}

func isSideFile(name string) bool {
	for _, s := range sideSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func removeSideFiles(path string) {
	for _, s := range sideSuffixes {
		_ = os.Remove(path + s)
	}
}

func removeSnapshotFiles(path string) {
	removeSideFiles(path)
	_ = os.Remove(path)
}
