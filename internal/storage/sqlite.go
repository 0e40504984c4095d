package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNotFound is returned when a requested entry doesn't exist
	ErrNotFound = errors.New("not found")
)

// BlobStore is a key to blob store backed by SQLite. It holds the warm-start
// batches of the cache collaborator.
type BlobStore struct {
	db  *sql.DB
	now func() time.Time
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A second process may hold the write lock briefly
	if _, err := db.Exec("PRAGMA busy_timeout=2000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// OpenBlobStore opens (creating if needed) the blob store at dbPath
func OpenBlobStore(dbPath string) (*BlobStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &BlobStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *BlobStore) Close() error {
	return s.db.Close()
}

// Get returns the blob stored under key and when it was stored
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var (
		value    []byte
		storedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, stored_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &storedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get entry: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE cache_entries SET hit_count = hit_count + 1 WHERE key = ?", key,
	); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to record hit: %w", err)
	}

	return value, time.Unix(0, storedAt), nil
}

// Put stores value under key, replacing any previous value
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO cache_entries (key, value, stored_at, hit_count)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at,
			hit_count = 0
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UnixNano()); err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// Delete removes the entry stored under key
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// Prune deletes entries stored before cutoff and returns how many were removed
func (s *BlobStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE stored_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats describes the contents of the blob store
type Stats struct {
	Entries   int
	TotalHits int
	SizeBytes int64
}

// Stats returns entry count, accumulated hits and payload size
func (s *BlobStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(hit_count), 0), COALESCE(SUM(LENGTH(value)), 0) FROM cache_entries",
	).Scan(&st.Entries, &st.TotalHits, &st.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return &st, nil
}

// Reset drops every entry by rolling the schema back to nothing and applying
// it again
func (s *BlobStore) Reset(ctx context.Context) error {
	for {
		v, err := currentVersion(ctx, s.db)
		if err != nil {
			return err
		}
		if v.Equal(semver.MustParse("0.0.0")) {
			break
		}
		if err := RollbackMigration(ctx, s.db); err != nil {
			return err
		}
	}
	return ApplyMigrations(ctx, s.db)
}
