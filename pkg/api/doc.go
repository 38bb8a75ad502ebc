// Package api serves the storefront over HTTP.
//
// Visitors are identified by a cookie holding a random UUID; each one gets
// its own App from a storefront.Registry. All responses are JSON and carry
// the visitor's document language as Content-Language.
//
//	GET    /api/products                  catalog, optional ?category=
//	GET    /api/products/{id}
//	GET    /api/cart
//	DELETE /api/cart                      clear
//	POST   /api/cart/items                {"productId":"…","quantity":2}
//	PATCH  /api/cart/items/{id}           {"quantity":3}, 0 removes
//	DELETE /api/cart/items/{id}
//	GET    /api/cart/items/{id}/quantity
//	GET    /api/language
//	PUT    /api/language                  {"language":"fr"}
//	GET    /api/i18n                      every string in the active language
//	GET    /api/i18n/{key}
//	GET    /api/live                      websocket of cart and language changes and toasts
//	GET    /metrics
//	GET    /healthz
package api
