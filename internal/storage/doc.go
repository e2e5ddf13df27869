// Package storage defines the persistence contract behind the write-back cache.
//
// The cache only ever reaches durable state through Store. Implementations
// live in subpackages (sqlite, bbolt) and can be decorated (traced) without the
// cache noticing.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrStoreUnavailable: the backing database cannot be opened or is busy.
//   - ErrKeyTooLarge: the key exceeds the limit a backend reports via KeyLimiter.
package storage
