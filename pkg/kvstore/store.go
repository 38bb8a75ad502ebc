package kvstore

import (
	"context"
	"errors"
)

// Store is the persistent key-value store the storefront stores mirror
// their state into. It plays the role browser local storage plays for a
// web client: string keys, string values, last writer wins.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key.
	// ok is false (with a nil error) when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

var (
	// ErrQuotaExceeded is returned by Set when the value does not fit.
	ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

	// ErrClosed is returned when operations are attempted on a closed store.
	ErrClosed = errors.New("kvstore: store is closed")
)

// Noop is the store used where no persistent storage exists.
// Reads find nothing and writes are discarded.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error         { return nil }
func (Noop) Remove(context.Context, string) error              { return nil }

// OrNoop returns s, or Noop when s is nil.
func OrNoop(s Store) Store {
	if s == nil {
		return Noop{}
	}
	return s
}
