package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/pkg/cart"
	"github.com/terpenos/storefront/pkg/i18n"
	"github.com/terpenos/storefront/pkg/toast"
)

const writeWait = 10 * time.Second

// LiveMessage is pushed to live clients after every change and for every
// toast. Exactly one of Cart, Language and Toast is set, matching Type.
type LiveMessage struct {
	Type     string        `json:"type"`
	Cart     *cart.Cart    `json:"cart,omitempty"`
	Language i18n.Language `json:"language,omitempty"`
	Toast    *toast.Toast  `json:"toast,omitempty"`
}

// handleLive upgrades to a websocket that first sends the current cart and
// language, then the latest state after each change. Bursts of changes may
// be coalesced; the last message of a burst is always the latest state.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	app := storefront.FromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("live upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if m := s.config.Metrics; m != nil {
		m.LiveOpened()
		defer m.LiveClosed()
	}

	// Subscribers run under the store lock, so they only flag the change.
	cartChanged := make(chan struct{}, 1)
	langChanged := make(chan struct{}, 1)
	unsubscribe := app.Watch(
		func(cart.Cart) { signal(cartChanged) },
		func(i18n.Language) { signal(langChanged) },
	)
	defer unsubscribe()

	toasts, stopToasts := app.Toasts().Listen(8)
	defer stopToasts()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return s.liveWriter(ctx, conn, app, cartChanged, langChanged, toasts)
	})
	g.Go(func() error {
		return s.liveReader(conn)
	})

	if err := g.Wait(); err != nil && !isExpectedClose(err) {
		s.logger.Warn("live connection closed", "error", err)
	}
}

func (s *Server) liveWriter(ctx context.Context, conn *websocket.Conn, app *storefront.App, cartChanged, langChanged <-chan struct{}, toasts <-chan toast.Toast) error {
	// Unblock the reader when the writer stops first.
	defer conn.Close()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	if err := writeCart(conn, app); err != nil {
		return err
	}
	if err := writeLanguage(conn, app); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-cartChanged:
			if err := writeCart(conn, app); err != nil {
				return err
			}
		case <-langChanged:
			if err := writeLanguage(conn, app); err != nil {
				return err
			}
		case t, ok := <-toasts:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(LiveMessage{Type: "toast", Toast: &t}); err != nil {
				return err
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return err
			}
		}
	}
}

// liveReader discards client messages and returns when the connection
// closes or pongs stop arriving.
func (s *Server) liveReader(conn *websocket.Conn) error {
	timeout := 2 * s.config.PingInterval
	conn.SetReadLimit(4 << 10)
	conn.SetReadDeadline(time.Now().Add(timeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func writeCart(conn *websocket.Conn, app *storefront.App) error {
	c := app.Cart().Cart()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(LiveMessage{Type: "cart", Cart: &c})
}

func writeLanguage(conn *websocket.Conn, app *storefront.App) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(LiveMessage{Type: "language", Language: app.Language().Language()})
}

func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}
