package kvstore

import "context"

// PrefixedStore namespaces every key of an underlying store.
// The storefront uses one per visitor so a shared backend behaves like
// one browser's local storage per visitor.
type PrefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed returns a view of inner where every key is prefixed with prefix.
func Prefixed(inner Store, prefix string) *PrefixedStore {
	return &PrefixedStore{inner: OrNoop(inner), prefix: prefix}
}

// Get returns the value stored under prefix+key.
func (p *PrefixedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

// Set stores value under prefix+key.
func (p *PrefixedStore) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

// Remove deletes prefix+key.
func (p *PrefixedStore) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

// Prefix returns the key prefix.
func (p *PrefixedStore) Prefix() string {
	return p.prefix
}
