package storage

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable indicates the backing database cannot serve requests.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrKeyTooLarge indicates a key exceeds the backend's key size limit.
	ErrKeyTooLarge = errors.New("key too large")
)

// Entry is one key/value pair as written to durable storage.
type Entry struct {
	Key   string
	Value string
}

// Store persists string values by string key.
//
// Load reports a plain miss as found=false with a nil error; errors are
// reserved for I/O or storage failures. Save upserts. SaveBatch is equivalent
// to calling Save for every entry, in order.
type Store interface {
	Load(ctx context.Context, key string) (value string, found bool, err error)
	Save(ctx context.Context, key, value string) error
	SaveBatch(ctx context.Context, entries []Entry) error
	Close() error
}

// KeyLimiter is implemented by stores that cannot persist keys longer than
// MaxKeyBytes. Zero means no limit.
type KeyLimiter interface {
	MaxKeyBytes() int
}

// MaxKeyBytes returns the key size limit of store, or zero when it has none.
func MaxKeyBytes(store Store) int {
	if limiter, ok := store.(KeyLimiter); ok {
		return limiter.MaxKeyBytes()
	}
	return 0
}
