// Package sqlite provides the durable key/value store behind the cache,
// backed by SQLite.
//
// Values live in a single `data` table keyed by the cache key. Batched writes
// run in one transaction, so a failed batch leaves no partial state.
package sqlite
