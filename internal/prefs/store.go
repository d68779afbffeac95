// Package prefs persists small per-client records: the selected product ids
// and the layout-direction preference.
package prefs

import (
	"context"
	"errors"
)

// Common errors for preference store construction.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Store is a string key/value store. Writers do not coordinate: the last
// write to a key wins.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent, which is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Scoped returns a Store that prefixes every key with scope, so several
// clients can share one backing store.
func Scoped(s Store, scope string) Store {
	if scope == "" {
		return s
	}
	return &scopedStore{inner: s, prefix: scope + ":"}
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op; the shared store is owned by whoever created it.
func (s *scopedStore) Close() error { return nil }
