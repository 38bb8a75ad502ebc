// Package pref binds a typed value to one key of a key-value store.
//
// A Pref owns the encoding of its value and the distinction between "no
// value stored", "stored value unreadable" and "storage failed", which is
// what the storefront stores need to decide whether to discard a corrupted
// entry:
//
//	lang := pref.New(kv, "language", pref.String[i18n.Language]())
//	v, err := lang.Load(ctx)
//	switch {
//	case errors.Is(err, pref.ErrNotFound):
//	    // nothing stored
//	case errors.As(err, new(*pref.DecodeError)):
//	    lang.Remove(ctx)
//	}
package pref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/terpenos/storefront/pkg/kvstore"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("pref: not found")

// DecodeError is returned by Load when the stored value cannot be decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pref %q: decode: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Codec converts a value to and from its stored string form.
type Codec[T any] interface {
	Encode(T) (string, error)
	Decode(string) (T, error)
}

// CodecFuncs adapts a pair of functions to the Codec interface.
type CodecFuncs[T any] struct {
	EncodeFunc func(T) (string, error)
	DecodeFunc func(string) (T, error)
}

func (c CodecFuncs[T]) Encode(v T) (string, error)   { return c.EncodeFunc(v) }
func (c CodecFuncs[T]) Decode(raw string) (T, error) { return c.DecodeFunc(raw) }

// JSON returns a codec storing values as JSON documents.
func JSON[T any]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: func(v T) (string, error) {
			raw, err := json.Marshal(v)
			return string(raw), err
		},
		DecodeFunc: func(raw string) (T, error) {
			var v T
			err := json.Unmarshal([]byte(raw), &v)
			return v, err
		},
	}
}

// String returns a codec storing string-like values verbatim.
func String[T ~string]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: func(v T) (string, error) { return string(v), nil },
		DecodeFunc: func(raw string) (T, error) { return T(raw), nil },
	}
}

// Pref is a typed value persisted under a single key.
type Pref[T any] struct {
	kv    kvstore.Store
	key   string
	codec Codec[T]

	mu      sync.RWMutex
	savedAt time.Time
}

// New creates a preference bound to key in kv.
// A nil kv behaves like kvstore.Noop.
func New[T any](kv kvstore.Store, key string, codec Codec[T]) *Pref[T] {
	return &Pref[T]{
		kv:    kvstore.OrNoop(kv),
		key:   key,
		codec: codec,
	}
}

// Key returns the preference key.
func (p *Pref[T]) Key() string {
	return p.key
}

// Load reads and decodes the stored value.
// It returns ErrNotFound when nothing is stored, a *DecodeError when the
// stored value is unreadable, and the store's error otherwise.
func (p *Pref[T]) Load(ctx context.Context) (T, error) {
	var zero T

	raw, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return zero, err
	}
	if !ok || raw == "" {
		return zero, ErrNotFound
	}

	v, err := p.codec.Decode(raw)
	if err != nil {
		return zero, &DecodeError{Key: p.key, Err: err}
	}
	return v, nil
}

// Save encodes and writes v.
func (p *Pref[T]) Save(ctx context.Context, v T) error {
	raw, err := p.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("pref %q: encode: %w", p.key, err)
	}
	if err := p.kv.Set(ctx, p.key, raw); err != nil {
		return err
	}

	p.mu.Lock()
	p.savedAt = time.Now()
	p.mu.Unlock()
	return nil
}

// Remove deletes the stored value.
func (p *Pref[T]) Remove(ctx context.Context) error {
	return p.kv.Remove(ctx, p.key)
}

// SavedAt returns when the value was last written successfully through
// this Pref, or the zero time.
func (p *Pref[T]) SavedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.savedAt
}
