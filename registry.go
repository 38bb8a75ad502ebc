package storefront

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/kvstore"
)

// Registry defaults.
const (
	DefaultMaxVisitors = 10000
	DefaultIdleTimeout = 30 * time.Minute
)

// VisitorPrefix returns the key prefix of a visitor's storage namespace.
func VisitorPrefix(visitorID string) string {
	return "visitor:" + visitorID + ":"
}

type visitor struct {
	app      *App
	lastSeen atomic.Int64 // unix nanoseconds
}

// Registry holds one App per visitor on a shared key-value backend. Each
// visitor's keys live under VisitorPrefix, so the backend behaves like a
// separate local storage per visitor.
//
// Loaded Apps are a cache of the backend. Eviction only drops the
// in-memory App; the next LoadOrCreate reads the visitor back.
type Registry struct {
	backend kvstore.Store
	opts    options
	now     func() time.Time

	apps  sync.Map // map[string]*visitor
	count atomic.Int64

	// mu serializes App creation so a visitor is loaded once.
	mu     sync.Mutex
	closed bool
}

// NewRegistry creates a registry over backend. opts apply to every App;
// WithVisitorLimits bounds how many stay loaded.
func NewRegistry(backend kvstore.Store, opts ...Option) *Registry {
	return &Registry{
		backend: kvstore.OrNoop(backend),
		opts:    buildOptions(opts),
		now:     time.Now,
	}
}

// Get returns the loaded App of visitorID and marks it as used.
func (r *Registry) Get(visitorID string) (*App, bool) {
	v, ok := r.apps.Load(visitorID)
	if !ok {
		return nil, false
	}
	vis := v.(*visitor)
	vis.lastSeen.Store(r.now().UnixNano())
	return vis.app, true
}

// LoadOrCreate returns the App of visitorID, loading it from the backend
// on first use. opts are applied after the registry's options and only
// when the App is created.
func (r *Registry) LoadOrCreate(ctx context.Context, visitorID string, opts ...Option) (*App, error) {
	if visitorID == "" {
		return nil, errors.New("E180")
	}
	if app, ok := r.Get(visitorID); ok {
		return app, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, kvstore.ErrClosed
	}
	if app, ok := r.Get(visitorID); ok {
		return app, nil
	}

	o := r.opts
	for _, opt := range opts {
		opt(&o)
	}
	app, err := newApp(ctx, kvstore.Prefixed(r.backend, VisitorPrefix(visitorID)), o)
	if err != nil {
		return nil, err
	}

	if limit := r.opts.maxVisitors; limit > 0 {
		for r.count.Load() >= int64(limit) && r.evictLeastRecent() {
		}
	}

	vis := &visitor{app: app}
	vis.lastSeen.Store(r.now().UnixNano())
	r.apps.Store(visitorID, vis)
	r.count.Add(1)
	if r.opts.metrics != nil {
		r.opts.metrics.VisitorOpened()
	}
	r.opts.logger.Debug("visitor loaded", "visitor", visitorID)
	return app, nil
}

// evictLeastRecent evicts the least recently used App without watchers.
// It reports false when there is none.
func (r *Registry) evictLeastRecent() bool {
	var (
		oldestID   string
		oldestSeen int64
		found      bool
	)
	r.apps.Range(func(k, v any) bool {
		vis := v.(*visitor)
		if vis.app.watched() {
			return true
		}
		if seen := vis.lastSeen.Load(); !found || seen < oldestSeen {
			oldestID, oldestSeen, found = k.(string), seen, true
		}
		return true
	})
	if !found {
		return false
	}
	r.Evict(oldestID)
	r.opts.logger.Debug("evicted visitor", "visitor", oldestID, "reason", "limit")
	return true
}

// Evict closes and forgets the App of visitorID. Its stored state stays in
// the backend and is reloaded by the next LoadOrCreate.
func (r *Registry) Evict(visitorID string) {
	v, ok := r.apps.LoadAndDelete(visitorID)
	if !ok {
		return
	}
	r.release(v.(*visitor))
}

func (r *Registry) release(vis *visitor) {
	r.count.Add(-1)
	vis.app.Close()
	if r.opts.metrics != nil {
		r.opts.metrics.VisitorClosed()
	}
}

// EvictIdle evicts every App unused for longer than maxIdle that has no
// live watchers, and returns how many were evicted.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()
	evicted := 0
	r.apps.Range(func(k, v any) bool {
		vis := v.(*visitor)
		if vis.lastSeen.Load() >= cutoff || vis.app.watched() {
			return true
		}
		if r.apps.CompareAndDelete(k, v) {
			r.release(vis)
			evicted++
		}
		return true
	})
	if evicted > 0 {
		r.opts.logger.Debug("evicted idle visitors", "count", evicted, "remaining", r.Len())
	}
	return evicted
}

// Run evicts idle visitors periodically until ctx is done. It returns
// immediately when no idle timeout is configured.
func (r *Registry) Run(ctx context.Context) error {
	idle := r.opts.idleTimeout
	if idle <= 0 {
		return nil
	}
	interval := idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.EvictIdle(idle)
		}
	}
}

// Len returns the number of loaded visitors.
func (r *Registry) Len() int {
	return int(r.count.Load())
}

// Close closes every App. LoadOrCreate fails afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.apps.Range(func(k, _ any) bool {
		r.Evict(k.(string))
		return true
	})
	return nil
}
