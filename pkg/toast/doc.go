// Package toast provides feedback notifications for storefront visitors.
//
// The JSON API answers with the new cart state, so there is nowhere in the
// response for a transient "added to cart" message. Instead each visitor
// owns a Notifier, and live connections listen on it and forward toasts
// as {"type":"toast"} messages.
//
// # Server-Side Usage
//
//	app.Toasts().Success(app.Language().T(i18n.CartAddedToast))
//
// # Client-Side Handler
//
//	ws.addEventListener("message", (e) => {
//	    const msg = JSON.parse(e.data);
//	    if (msg.type === "toast") {
//	        showToast(msg.toast.level, msg.toast.message);
//	    }
//	});
package toast
