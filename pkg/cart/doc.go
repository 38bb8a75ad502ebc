// Package cart implements the storefront shopping cart.
//
// A Store holds an ordered list of line items keyed by product ID and keeps
// the derived total and item count in step with it. The cart is persisted
// as JSON under a fixed key:
//
//	{"items":[{"product":{"id":"p1","price":9.99},"quantity":3}],"total":29.97,"itemCount":3}
//
// Usage:
//
//	store := cart.New(kv, cart.WithLogger(logger))
//	store.Init(ctx)
//	store.AddToCart(ctx, product, 2)
//	unsubscribe := store.Subscribe(func(c cart.Cart) { render(c) })
//	defer unsubscribe()
package cart
