// Package reactive provides the observable value container used by the
// storefront stores to publish state changes to view code.
//
// A store owns a Signal and commits every new state to it; views subscribe
// and re-render from the latest committed value:
//
//	cart := reactive.NewSignal(0)
//	stop := cart.Subscribe(func(n int) {
//	    fmt.Println("items:", n)
//	})
//	defer stop()
//
//	cart.Set(3) // prints "items: 3"
//	cart.Set(3) // unchanged, no notification
//
// Subscribers run synchronously on the goroutine that committed the change.
package reactive
