// Package storagetest provides an in-memory storage.Store that records calls
// and can inject failures.
package storagetest

import (
	"context"
	"errors"

	"github.com/louisbranch/datastore/internal/storage"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected storage failure")

// Call records one write issued against the store.
type Call struct {
	Op      string // "save" or "save_batch"
	Entries []storage.Entry
}

// Store is an in-memory storage.Store for tests. It is not safe for
// concurrent use.
type Store struct {
	Data  map[string]string
	Calls []Call
	Loads []string

	FailLoad      bool
	FailSave      bool
	FailSaveBatch bool
	Closed        bool

	// MaxKey is reported through MaxKeyBytes; zero means unlimited.
	MaxKey int
}

// New returns an empty store.
func New() *Store {
	return &Store{Data: make(map[string]string)}
}

// Load returns the stored value.
func (s *Store) Load(_ context.Context, key string) (string, bool, error) {
	s.Loads = append(s.Loads, key)
	if s.FailLoad {
		return "", false, ErrInjected
	}
	value, ok := s.Data[key]
	return value, ok, nil
}

// Save records and applies one write.
func (s *Store) Save(_ context.Context, key, value string) error {
	s.Calls = append(s.Calls, Call{Op: "save", Entries: []storage.Entry{{Key: key, Value: value}}})
	if s.FailSave {
		return ErrInjected
	}
	s.Data[key] = value
	return nil
}

// SaveBatch records and applies a batch. A failing batch applies nothing.
func (s *Store) SaveBatch(_ context.Context, entries []storage.Entry) error {
	s.Calls = append(s.Calls, Call{Op: "save_batch", Entries: append([]storage.Entry(nil), entries...)})
	if s.FailSaveBatch {
		return ErrInjected
	}
	for _, entry := range entries {
		s.Data[entry.Key] = entry.Value
	}
	return nil
}

// MaxKeyBytes reports MaxKey.
func (s *Store) MaxKeyBytes() int {
	return s.MaxKey
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.Closed = true
	return nil
}

// Saves returns every value written for key, in order, across Save and
// SaveBatch calls.
func (s *Store) Saves(key string) []string {
	var values []string
	for _, call := range s.Calls {
		for _, entry := range call.Entries {
			if entry.Key == key {
				values = append(values, entry.Value)
			}
		}
	}
	return values
}

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.KeyLimiter = (*Store)(nil)
)
