// Package bbolt provides a BoltDB-backed persistent store for the cache.
//
// Bolt caps keys at bbolt.MaxKeySize bytes. One byte goes to the key prefix,
// so the store accepts keys of at most MaxKeyBytes and reports that limit
// through storage.KeyLimiter.
package bbolt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/datastore/internal/storage"
	"go.etcd.io/bbolt"
)

const dataBucket = "data"

// MaxKeyBytes is the longest cache key the store can persist.
const MaxKeyBytes = bbolt.MaxKeySize - 1

// Store provides a BoltDB-backed key/value store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open storage db: %w: %w", storage.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load fetches the value stored for key.
func (s *Store) Load(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("storage is not configured")
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dataBucket))
		if bucket == nil {
			return fmt.Errorf("data bucket is missing")
		}
		payload := bucket.Get(dataKey(key))
		if len(payload) == 0 {
			return nil
		}
		// payload is only valid for the life of the transaction.
		value = string(payload[1:])
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("load value: %w", err)
	}
	return value, found, nil
}

// MaxKeyBytes reports the key size limit.
func (s *Store) MaxKeyBytes() int {
	return MaxKeyBytes
}

// Save upserts one value.
func (s *Store) Save(ctx context.Context, key, value string) error {
	return s.SaveBatch(ctx, []storage.Entry{{Key: key, Value: value}})
}

// SaveBatch upserts every entry in a single transaction. Either all entries
// are committed or none are.
func (s *Store) SaveBatch(ctx context.Context, entries []storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if len(entry.Key) > MaxKeyBytes {
			return fmt.Errorf("save values: %w: %d bytes, limit %d", storage.ErrKeyTooLarge, len(entry.Key), MaxKeyBytes)
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dataBucket))
		if bucket == nil {
			return fmt.Errorf("data bucket is missing")
		}
		for _, entry := range entries {
			if err := bucket.Put(dataKey(entry.Key), dataValue(entry.Value)); err != nil {
				return fmt.Errorf("put %s: %w", keyLabel(entry.Key), err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save values: %w", err)
	}
	return nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dataBucket))
		if err != nil {
			return fmt.Errorf("create data bucket: %w", err)
		}
		return nil
	})
}

// dataKey maps a cache key to a bolt key. Bolt rejects zero-length keys, so
// every key carries a one-byte prefix.
func dataKey(key string) []byte {
	return prefixed('k', key)
}

// dataValue prefixes values so an empty string is never stored as an empty
// payload, which Get cannot tell apart from a missing key.
func dataValue(value string) []byte {
	return prefixed('v', value)
}

// keyLabel quotes key for error messages, shortening long keys.
func keyLabel(key string) string {
	const max = 64
	if len(key) <= max {
		return fmt.Sprintf("%q", key)
	}
	return fmt.Sprintf("%q... (%d bytes)", key[:max], len(key))
}

func prefixed(prefix byte, s string) []byte {
	out := make([]byte, 0, len(s)+1)
	out = append(out, prefix)
	return append(out, s...)
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.KeyLimiter = (*Store)(nil)
)
