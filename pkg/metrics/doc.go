// Package metrics exposes storefront counters in the Prometheus format.
//
// The hooks match the observer signatures of the stores so they can be
// passed in directly:
//
//	m := metrics.New(metrics.WithNamespace("shop"))
//	store := cart.New(kv, cart.WithObserver(m.CartMutation))
//	kv = kvstore.Instrument(kv, "redis", kvstore.WithFailureHook(m.StorageFailure))
//	http.Handle("/metrics", m.Handler())
package metrics
