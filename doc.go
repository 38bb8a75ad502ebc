// Package storefront ties the cart and language stores of one visitor
// together.
//
// An App is the explicit application context: it is created at the root
// with New, handed to whatever renders the storefront, and closed on
// teardown. Servers that hold many visitors keep their Apps in a Registry,
// which gives each visitor its own namespace on a shared key-value backend.
//
//	registry := storefront.NewRegistry(redisStore, storefront.WithLogger(logger))
//	app, err := registry.LoadOrCreate(ctx, visitorID)
//	app.Cart().AddToCart(ctx, product, 1)
//	title := app.Language().T(i18n.CartTitle)
package storefront
