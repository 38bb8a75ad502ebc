package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terpenos/storefront/pkg/i18n"
)

// Config configures the storefront metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "storefront").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the registry metrics are registered with and served from.
	// Default: a new registry.
	Registry *prometheus.Registry
}

// Option configures Metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the request duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "storefront",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics holds the storefront's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	cartMutations   *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec
	languageChanges *prometheus.CounterVec
	activeVisitors  prometheus.Gauge
	liveConnections prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New creates and registers the storefront metrics.
//
// Metrics collected:
//   - storefront_cart_mutations_total: cart mutations by operation
//   - storefront_storage_errors_total: key-value store failures by backend and operation
//   - storefront_language_changes_total: language switches by target language
//   - storefront_active_visitors: visitors with a live App
//   - storefront_live_connections: open live-update websockets
//   - storefront_http_request_duration_seconds: API latency by route, method and status
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		cartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cart_mutations_total",
			Help:        "Total number of cart mutations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "storage_errors_total",
			Help:        "Total number of key-value store failures",
			ConstLabels: config.ConstLabels,
		}, []string{"backend", "op"}),

		languageChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "language_changes_total",
			Help:        "Total number of display language changes",
			ConstLabels: config.ConstLabels,
		}, []string{"language"}),

		activeVisitors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_visitors",
			Help:        "Number of visitors with loaded state",
			ConstLabels: config.ConstLabels,
		}),

		liveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_connections",
			Help:        "Number of open live-update WebSocket connections",
			ConstLabels: config.ConstLabels,
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "API request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route", "method", "status"}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CartMutation counts a cart mutation. It has the cart.Observer signature.
func (m *Metrics) CartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// StorageFailure counts a failed key-value operation. It has the
// kvstore.FailureHook signature.
func (m *Metrics) StorageFailure(backend, op string, err error) {
	m.storageErrors.WithLabelValues(backend, op).Inc()
}

// LanguageChange counts a switch to lang.
func (m *Metrics) LanguageChange(lang i18n.Language) {
	m.languageChanges.WithLabelValues(string(lang)).Inc()
}

// VisitorOpened and VisitorClosed track the number of loaded visitors.
func (m *Metrics) VisitorOpened() { m.activeVisitors.Inc() }
func (m *Metrics) VisitorClosed() { m.activeVisitors.Dec() }

// LiveOpened and LiveClosed track open live-update connections.
func (m *Metrics) LiveOpened() { m.liveConnections.Inc() }
func (m *Metrics) LiveClosed() { m.liveConnections.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request durations labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the live endpoint upgrade to a websocket through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
