package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/terpenos/storefront/pkg/catalog"
	"github.com/terpenos/storefront/pkg/kvstore"
	"github.com/terpenos/storefront/pkg/pref"
	"github.com/terpenos/storefront/pkg/reactive"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "terpenos-cart"

// Mutation names passed to an Observer.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpUpdate = "update"
	OpClear  = "clear"
)

// Observer is called after every mutation with the mutation name.
type Observer func(op string)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithObserver registers a hook run after each mutation.
func WithObserver(fn Observer) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// Store owns a shopping cart and mirrors it to a key-value store.
//
// The cart is held in a reactive signal; every mutation publishes a freshly
// computed Cart and, once Init has run, writes it to storage. Storage
// failures are logged and never undo the in-memory change.
//
// Store is safe for concurrent use. Mutations are applied in call order and
// subscribers run while the mutation lock is held, so a subscriber must not
// mutate the same Store synchronously.
type Store struct {
	key      string
	logger   *slog.Logger
	observer Observer

	mu          sync.Mutex
	initialized bool
	saved       *pref.Pref[Cart]
	cart        *reactive.Signal[Cart]
}

// New creates a cart store backed by kv. A nil kv disables persistence.
func New(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		key:    DefaultKey,
		logger: slog.Default().With("component", "cart"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.saved = pref.New(kv, s.key, pref.CodecFuncs[Cart]{
		EncodeFunc: Encode,
		DecodeFunc: s.decode,
	})
	s.cart = reactive.NewSignal(Empty()).WithEquals(func(a, b Cart) bool {
		return a.Equal(b)
	})
	return s
}

func (s *Store) decode(raw string) (Cart, error) {
	c, skipped, err := DecodeItems(raw)
	for _, sk := range skipped {
		s.logger.Warn("skipping stored cart item", "key", s.key, "index", sk.Index, "error", sk.Err)
	}
	return c, err
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Init loads the persisted cart. It runs once; later calls return
// immediately.
//
// A stored value that is not a valid cart is deleted from storage; a valid
// cart with unusable items loads the rest and keeps the stored value. A read
// failure is logged and the cart starts empty. Saving is enabled on every
// path, so Init only fails when ctx is already done.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	defer func() { s.initialized = true }()

	loaded, err := s.saved.Load(ctx)
	var decodeErr *pref.DecodeError
	switch {
	case err == nil:
		s.cart.Set(loaded)
	case errors.Is(err, pref.ErrNotFound):
	case errors.As(err, &decodeErr):
		s.logger.Warn("discarding corrupted cart", "key", s.key, "error", decodeErr.Err)
		if err := s.saved.Remove(ctx); err != nil {
			s.logger.Error("remove corrupted cart", "key", s.key, "error", err)
		}
	default:
		s.logger.Error("load cart", "key", s.key, "error", err)
	}
	return nil
}

// Initialized reports whether Init has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// AddToCart adds quantity units of p. An existing item for p.ID has its
// quantity increased; otherwise a new item is appended.
//
// The quantity is applied as given to an existing item, and the item is
// removed if the result is not positive. A non-positive quantity for a
// product not in the cart is a no-op: it does not append an item with that
// quantity, so every item keeps a positive quantity.
func (s *Store) AddToCart(ctx context.Context, p catalog.Product, quantity int) {
	s.mutate(ctx, OpAdd, func(items []Item) []Item {
		for i := range items {
			if items[i].Product.ID != p.ID {
				continue
			}
			items[i].Quantity += quantity
			if items[i].Quantity <= 0 {
				return append(items[:i], items[i+1:]...)
			}
			return items
		}
		if quantity <= 0 {
			return items
		}
		return append(items, Item{Product: p, Quantity: quantity})
	})
}

// Add adds a single unit of p.
func (s *Store) Add(ctx context.Context, p catalog.Product) {
	s.AddToCart(ctx, p, 1)
}

// RemoveFromCart removes the item for productID, if any.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mutate(ctx, OpRemove, func(items []Item) []Item {
		return without(items, productID)
	})
}

// UpdateQuantity sets the quantity of an existing item. A quantity of zero
// or less removes it. Unknown IDs are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}
	s.mutate(ctx, OpUpdate, func(items []Item) []Item {
		for i := range items {
			if items[i].Product.ID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, OpClear, func([]Item) []Item {
		return nil
	})
}

// GetItemQuantity returns the quantity held for productID, or 0.
func (s *Store) GetItemQuantity(productID string) int {
	it, _ := s.cart.Get().Find(productID)
	return it.Quantity
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() Cart {
	return s.cart.Get().Clone()
}

// Signal exposes the cart signal. Values read from it are shared and must
// not be modified; use Cart for a private copy.
func (s *Store) Signal() *reactive.Signal[Cart] {
	return s.cart
}

// Subscribe calls fn with the new cart after every change.
func (s *Store) Subscribe(fn func(Cart)) (unsubscribe func()) {
	return s.cart.Subscribe(fn)
}

func (s *Store) mutate(ctx context.Context, op string, fn func([]Item) []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Compute(fn(s.cart.Get().Clone().Items))
	s.cart.Set(next)

	if s.initialized {
		// Saved even if ctx is cancelled; the change is already published.
		if err := s.saved.Save(context.WithoutCancel(ctx), next); err != nil {
			s.logger.Error("save cart", "key", s.key, "op", op, "error", err)
		}
	}
	if s.observer != nil {
		s.observer(op)
	}
}

func without(items []Item, productID string) []Item {
	out := items[:0]
	for _, it := range items {
		if it.Product.ID != productID {
			out = append(out, it)
		}
	}
	return out
}
