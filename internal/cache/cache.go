package cache

import (
	"context"
	stderrors "errors"
	"strconv"

	apperrors "github.com/louisbranch/datastore/internal/platform/errors"
	"github.com/louisbranch/datastore/internal/storage"
)

// ErrClosed is returned by Put, Get and Flush after Close.
var ErrClosed = apperrors.New(apperrors.CodeCacheClosed, "cache is closed")

// Config controls cache capacity.
//
// Capacity is the maximum number of resident entries. Zero is valid: every
// inserted entry is evicted (and written back if dirty) before the call
// returns.
type Config struct {
	Capacity int
}

// Cache is a bounded LRU cache with write-back persistence.
type Cache struct {
	capacity  int
	maxKeyLen int
	store     storage.Store

	recency *recencyList
	dirty   dirtyTracker
	stats   Stats
	closed  bool
}

// New constructs a cache in front of store. The store stays owned by the
// caller; Close flushes into it but does not close it.
func New(cfg Config, store storage.Store) (*Cache, error) {
	if cfg.Capacity < 0 {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeInvalidCapacity,
			"capacity must not be negative",
			map[string]string{"capacity": strconv.Itoa(cfg.Capacity)},
			nil,
		)
	}
	if store == nil {
		return nil, apperrors.New(apperrors.CodeStoreUnavailable, "store is required")
	}
	return &Cache{
		capacity:  cfg.Capacity,
		maxKeyLen: storage.MaxKeyBytes(store),
		store:     store,
		recency:   newRecencyList(),
		dirty:     make(dirtyTracker),
	}, nil
}

// Put writes value for key in memory and marks it dirty. If the cache grows
// past capacity the least recently used entry is evicted; a failed write-back
// of that entry is returned, but the eviction still happens.
//
// Keys longer than the store can persist are rejected before anything
// changes.
func (c *Cache) Put(ctx context.Context, key, value string) error {
	if c.closed {
		return ErrClosed
	}
	if c.maxKeyLen > 0 && len(key) > c.maxKeyLen {
		return apperrors.WrapWithMetadata(
			apperrors.CodeKeyTooLarge,
			"put key",
			map[string]string{"key_bytes": strconv.Itoa(len(key)), "limit": strconv.Itoa(c.maxKeyLen)},
			storage.ErrKeyTooLarge,
		)
	}
	return c.insert(ctx, key, value, true)
}

// Get returns the value for key. A resident key becomes the most recently
// used. On a miss the store is consulted and a found value is cached clean.
//
// A key missing from both reports ok=false with a nil error. A store failure
// also reports ok=false, with a LOAD_FAILURE error so callers can tell the
// two apart. A successful reload may still return an error if making room
// for it failed to write back an evicted entry.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if c.closed {
		return "", false, ErrClosed
	}

	if value, ok := c.recency.lookup(key); ok {
		c.recency.moveToFront(key)
		c.stats.Hits++
		return value, true, nil
	}
	c.stats.Misses++

	value, found, err := c.store.Load(ctx, key)
	if err != nil {
		c.stats.LoadFailures++
		return "", false, apperrors.WrapWithMetadata(
			apperrors.CodeLoadFailure,
			"load key",
			map[string]string{"key": key},
			err,
		)
	}
	if !found {
		return "", false, nil
	}
	c.stats.Loads++

	return value, true, c.insert(ctx, key, value, false)
}

// Contains reports whether key is resident. It never touches the store and
// does not change recency.
func (c *Cache) Contains(key string) bool {
	return c.recency.contains(key)
}

// Size returns the number of resident entries.
func (c *Cache) Size() int {
	return c.recency.len()
}

// Capacity returns the configured capacity.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns resident keys from most to least recently used.
func (c *Cache) Keys() []string {
	return c.recency.keys()
}

// Dirty returns the number of resident entries awaiting write-back.
func (c *Cache) Dirty() int {
	return c.dirty.count()
}

// Stats returns a snapshot of the activity counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Flush writes every dirty entry to the store in one batch and keeps them
// resident. Entries are marked clean only if the batch succeeds.
func (c *Cache) Flush(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	entries := c.dirtyEntries()
	if err := c.saveBatch(ctx, entries); err != nil {
		return err
	}
	for _, e := range entries {
		c.dirty.markClean(e.Key)
	}
	return nil
}

// Close writes every dirty entry to the store in one batch and releases the
// resident entries. A failed flush is returned but the entries are released
// anyway. Close is safe to call multiple times.
func (c *Cache) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.saveBatch(ctx, c.dirtyEntries())

	c.recency = newRecencyList()
	c.dirty = make(dirtyTracker)
	return err
}

// insert is the single front-insertion path shared by Put and miss reloads.
// dirty is applied before eviction runs, so a clean reload evicted straight
// away (capacity 0) is not written back.
func (c *Cache) insert(ctx context.Context, key, value string, dirty bool) error {
	c.recency.remove(key)
	if err := c.recency.insertFront(key, value); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "insert key", err)
	}
	if dirty {
		c.dirty.markDirty(key)
	} else {
		c.dirty.markClean(key)
	}
	return c.evictIfNeeded(ctx)
}

func (c *Cache) evictIfNeeded(ctx context.Context) error {
	var errs []error
	for c.recency.len() > c.capacity {
		evicted, ok := c.recency.removeLeastRecent()
		if !ok {
			break
		}
		dirty := c.dirty.isDirty(evicted.key)
		c.dirty.clear(evicted.key)
		c.stats.Evictions++
		if !dirty {
			continue
		}

		if err := c.store.Save(ctx, evicted.key, evicted.value); err != nil {
			c.stats.WriteBackFailures++
			errs = append(errs, apperrors.WrapWithMetadata(
				apperrors.CodeSaveFailure,
				"write back evicted key",
				map[string]string{"key": evicted.key},
				err,
			))
			continue
		}
		c.stats.WriteBacks++
	}
	return stderrors.Join(errs...)
}

// dirtyEntries collects dirty resident entries from most to least recently
// used.
func (c *Cache) dirtyEntries() []storage.Entry {
	var entries []storage.Entry
	c.recency.each(func(key, value string) {
		if c.dirty.isDirty(key) {
			entries = append(entries, storage.Entry{Key: key, Value: value})
		}
	})
	return entries
}

func (c *Cache) saveBatch(ctx context.Context, entries []storage.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	c.stats.Flushes++
	if err := c.store.SaveBatch(ctx, entries); err != nil {
		return apperrors.WrapWithMetadata(
			apperrors.CodeFlushFailure,
			"flush dirty entries",
			map[string]string{"entries": strconv.Itoa(len(entries))},
			err,
		)
	}
	return nil
}
