// Package cache implements a bounded, write-back LRU cache in front of a
// durable key/value store.
//
// A map indexes nodes of a doubly-linked list that orders entries from most to
// least recently used. Writes only touch memory and mark the key dirty; the
// store is written when a dirty entry is evicted, when Flush is called, or
// when the cache is closed. Entries reloaded from the store on a miss start
// clean, so evicting them costs no write.
//
// A Cache is owned by a single caller and is not safe for concurrent use.
// Wrap it in a mutex if it must be shared.
package cache
