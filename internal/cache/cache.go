// Package cache keeps recently extracted record batches between runs. An
// in-process LRU sits in front of an optional persistent blob store; every
// failure degrades to a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/browser-search/internal/storage"
	"github.com/dshills/browser-search/pkg/types"
)

const (
	// DefaultTTL is how long a stored batch stays usable
	DefaultTTL = 24 * time.Hour
	// DefaultSize is the number of batches held in memory
	DefaultSize = 128
	// FileName is the blob store file created inside the cache directory
	FileName = "cache.sqlite"
)

// Store is what the pipeline needs from a cache
type Store interface {
	Get(ctx context.Context, key string) ([]types.Record, bool)
	Put(ctx context.Context, key string, batch []types.Record) error
}

// Backend persists encoded batches. *storage.BlobStore implements it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, time.Time, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// inspector is implemented by backends that can report and reset their
// contents
type inspector interface {
	Stats(ctx context.Context) (*storage.Stats, error)
	Reset(ctx context.Context) error
}

// Key builds a cache key from its parts
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Nop is a Store that never hits
type Nop struct{}

// Get implements Store
func (Nop) Get(context.Context, string) ([]types.Record, bool) { return nil, false }

// Put implements Store
func (Nop) Put(context.Context, string, []types.Record) error { return nil }

// entry is a cached batch with its expiration time
type entry struct {
	records   []types.Record
	expiresAt time.Time
}

// LRU is an in-memory LRU with TTL, optionally backed by a persistent store
type LRU struct {
	entries *lru.Cache[[32]byte, *entry]
	mu      sync.RWMutex
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures an LRU
type Option func(*LRU)

// WithTTL sets the entry lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *LRU) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for degraded operations
func WithLogger(l zerolog.Logger) Option {
	return func(c *LRU) { c.logger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *LRU) { c.now = now }
}

// New creates an LRU holding up to size batches in memory. backend may be nil.
func New(size int, backend Backend, opts ...Option) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}

	entries, err := lru.New[[32]byte, *entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &LRU{
		entries: entries,
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Open creates an LRU persisted to a blob store inside dir. Entries older
// than the TTL are pruned on open.
func Open(ctx context.Context, dir string, opts ...Option) (*LRU, error) {
	blobs, err := storage.OpenBlobStore(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)
	}

	c, err := New(DefaultSize, blobs, opts...)
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}

	if n, err := blobs.Prune(ctx, c.now().Add(-c.ttl)); err != nil {
		c.logger.Debug().Err(err).Msg("cache prune failed")
	} else if n > 0 {
		c.logger.Debug().Int("removed", n).Msg("pruned expired cache entries")
	}
	return c, nil
}

// Get returns a copy of the batch stored under key if it has not expired
func (c *LRU) Get(ctx context.Context, key string) ([]types.Record, bool) {
	hash := sha256.Sum256([]byte(key))
	now := c.now()

	c.mu.RLock()
	e, found := c.entries.Get(hash)
	if found && !now.After(e.expiresAt) {
		records := copyRecords(e.records)
		c.mu.RUnlock()
		return records, true
	}
	c.mu.RUnlock()

	if found {
		c.mu.Lock()
		c.entries.Remove(hash)
		c.mu.Unlock()
	}

	return c.load(ctx, key, hash, now)
}

// load reads key from the backend and promotes it into memory
func (c *LRU) load(ctx context.Context, key string, hash [32]byte, now time.Time) ([]types.Record, bool) {
	if c.backend == nil {
		return nil, false
	}

	data, storedAt, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Debug().Err(fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)).Msg("cache read failed")
		}
		return nil, false
	}

	expiresAt := storedAt.Add(c.ttl)
	if now.After(expiresAt) {
		c.evict(ctx, key)
		return nil, false
	}

	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Debug().Err(err).Msg("cache entry is corrupt")
		c.evict(ctx, key)
		return nil, false
	}

	c.mu.Lock()
	c.entries.Add(hash, &entry{records: copyRecords(records), expiresAt: expiresAt})
	c.mu.Unlock()

	return records, true
}

// evict drops a stale or unreadable entry from the backend
func (c *LRU) evict(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		c.logger.Debug().Err(err).Msg("cache eviction failed")
	}
}

// Put stores a copy of batch under key. The in-memory entry is always
// written; backend failures are returned wrapped in types.ErrCacheUnavailable.
func (c *LRU) Put(ctx context.Context, key string, batch []types.Record) error {
	hash := sha256.Sum256([]byte(key))

	c.mu.Lock()
	c.entries.Add(hash, &entry{records: copyRecords(batch), expiresAt: c.now().Add(c.ttl)})
	c.mu.Unlock()

	if c.backend == nil {
		return nil
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("%w: encode batch: %w", types.ErrCacheUnavailable, err)
	}
	if err := c.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)
	}
	return nil
}

// Len returns the number of batches held in memory
func (c *LRU) Len() int {
	return c.entries.Len()
}

// Purge empties the in-memory cache
func (c *LRU) Purge() {
	c.mu.Lock()
	c.entries.Purge()
	c.mu.Unlock()
}

// Stats reports the persisted entries. It fails with
// types.ErrCacheUnavailable when the backend cannot report.
func (c *LRU) Stats(ctx context.Context) (*storage.Stats, error) {
	in, ok := c.backend.(inspector)
	if !ok {
		return nil, fmt.Errorf("%w: backend has no statistics", types.ErrCacheUnavailable)
	}
	st, err := in.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)
	}
	return st, nil
}

// Clear empties memory and the backend
func (c *LRU) Clear(ctx context.Context) error {
	c.Purge()
	in, ok := c.backend.(inspector)
	if !ok {
		return nil
	}
	if err := in.Reset(ctx); err != nil {
		return fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)
	}
	return nil
}

// Close closes the backend if it needs closing
func (c *LRU) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func copyRecords(src []types.Record) []types.Record {
	if src == nil {
		return nil
	}
	dst := make([]types.Record, len(src))
	copy(dst, src)
	return dst
}
