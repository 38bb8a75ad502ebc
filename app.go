package storefront

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terpenos/storefront/pkg/cart"
	"github.com/terpenos/storefront/pkg/i18n"
	"github.com/terpenos/storefront/pkg/kvstore"
	"github.com/terpenos/storefront/pkg/metrics"
	"github.com/terpenos/storefront/pkg/toast"
)

// Option configures an App.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	table       i18n.Table
	locale      i18n.LocaleSource
	document    i18n.Document
	cartKey     string
	languageKey string
	metrics     *metrics.Metrics

	// Registry only.
	maxVisitors int
	idleTimeout time.Duration
}

// WithLogger sets the base logger. Each store logs with its own
// "component" attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTranslations sets the translation table.
func WithTranslations(t i18n.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithLocale sets the locale used for language detection.
func WithLocale(src i18n.LocaleSource) Option {
	return func(o *options) {
		o.locale = src
	}
}

// WithDocument sets an extra document notified of language changes.
func WithDocument(doc i18n.Document) Option {
	return func(o *options) {
		o.document = doc
	}
}

// WithStorageKeys overrides the cart and language storage keys. Empty
// values keep the defaults.
func WithStorageKeys(cartKey, languageKey string) Option {
	return func(o *options) {
		o.cartKey = cartKey
		o.languageKey = languageKey
	}
}

// WithMetrics records store activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithVisitorLimits bounds the Apps a Registry keeps loaded: at most
// maxVisitors (least recently used go first) and none idle for longer than
// idleTimeout. Zero disables a limit. Apps with live watchers are never
// evicted. New ignores this option.
func WithVisitorLimits(maxVisitors int, idleTimeout time.Duration) Option {
	return func(o *options) {
		o.maxVisitors = maxVisitors
		o.idleTimeout = idleTimeout
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:      slog.Default(),
		maxVisitors: DefaultMaxVisitors,
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// App is the state of one storefront visitor: a cart and a display
// language, both persisted to the same key-value store.
//
// Construct it once at the root of a request or program with New, pass it
// down explicitly (or through WithApp), and Close it when done.
type App struct {
	cart     *cart.Store
	language *i18n.Store
	toasts   *toast.Notifier

	mu      sync.RWMutex
	docLang i18n.Language

	closeOnce sync.Once
	nextWatch int
	watchers  map[int]func()
}

// New builds an App on kv and loads both stores. A nil kv gives an App
// that keeps state in memory only.
func New(ctx context.Context, kv kvstore.Store, opts ...Option) (*App, error) {
	return newApp(ctx, kvstore.OrNoop(kv), buildOptions(opts))
}

func newApp(ctx context.Context, kv kvstore.Store, o options) (*App, error) {
	app := &App{toasts: toast.NewNotifier()}

	cartOpts := []cart.Option{
		cart.WithLogger(o.logger.With("component", "cart")),
		cart.WithKey(o.cartKey),
	}
	langOpts := []i18n.Option{
		i18n.WithLogger(o.logger.With("component", "i18n")),
		i18n.WithKey(o.languageKey),
		i18n.WithLocale(o.locale),
		i18n.WithDocument(i18n.DocumentFunc(func(lang i18n.Language) {
			app.setDocumentLanguage(lang)
			if o.document != nil {
				o.document.SetLang(lang)
			}
		})),
	}
	if o.table != nil {
		langOpts = append(langOpts, i18n.WithTable(o.table))
	}
	if o.metrics != nil {
		cartOpts = append(cartOpts, cart.WithObserver(o.metrics.CartMutation))
		langOpts = append(langOpts, i18n.WithObserver(o.metrics.LanguageChange))
	}

	app.cart = cart.New(kv, cartOpts...)
	app.language = i18n.NewStore(kv, langOpts...)

	if err := app.cart.Init(ctx); err != nil {
		return nil, err
	}
	if err := app.language.Init(ctx); err != nil {
		return nil, err
	}
	app.docLang = app.language.Language()
	return app, nil
}

// Cart returns the visitor's cart store.
func (a *App) Cart() *cart.Store {
	return a.cart
}

// Language returns the visitor's language store.
func (a *App) Language() *i18n.Store {
	return a.language
}

// Toasts returns the visitor's toast notifier.
func (a *App) Toasts() *toast.Notifier {
	return a.toasts
}

// DocumentLanguage returns the language attribute of the hosting document.
func (a *App) DocumentLanguage() i18n.Language {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.docLang
}

func (a *App) setDocumentLanguage(lang i18n.Language) {
	a.mu.Lock()
	a.docLang = lang
	a.mu.Unlock()
}

// Watch subscribes fn to both stores and returns a function removing both
// subscriptions. Subscriptions still open at Close are removed then.
func (a *App) Watch(onCart func(cart.Cart), onLanguage func(i18n.Language)) (unsubscribe func()) {
	var unsubs []func()
	if onCart != nil {
		unsubs = append(unsubs, a.cart.Subscribe(onCart))
	}
	if onLanguage != nil {
		unsubs = append(unsubs, a.language.Subscribe(onLanguage))
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.watchers == nil {
		a.watchers = make(map[int]func())
	}
	id := a.nextWatch
	a.nextWatch++

	var once sync.Once
	remove := func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
		})
	}
	a.watchers[id] = remove

	return func() {
		a.mu.Lock()
		delete(a.watchers, id)
		a.mu.Unlock()
		remove()
	}
}

// watched reports whether any Watch subscription is open.
func (a *App) watched() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.watchers) > 0
}

// Close removes every subscription made through Watch. The stores remain
// readable. Calling Close more than once is harmless.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		watchers := a.watchers
		a.watchers = nil
		a.mu.Unlock()

		for _, remove := range watchers {
			remove()
		}
	})
	return nil
}

type contextKey struct{}

// WithApp returns a copy of ctx carrying app.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, contextKey{}, app)
}

// FromContext returns the App carried by ctx, or nil.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(contextKey{}).(*App)
	return app
}
