package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/catalog"
	"github.com/terpenos/storefront/pkg/metrics"
)

// Config configures the HTTP API.
type Config struct {
	// CookieName is the visitor cookie (default: "sf_visitor").
	CookieName string

	// CookieMaxAge is the visitor cookie lifetime (default: one year).
	CookieMaxAge time.Duration

	// SecureCookie marks the visitor cookie Secure.
	SecureCookie bool

	// PingInterval is how often the live feed pings the client
	// (default: 30s). The connection is dropped after two missed pongs.
	PingInterval time.Duration

	// CheckOrigin validates websocket origins. Default: same origin only.
	CheckOrigin func(r *http.Request) bool

	// Metrics, when set, records request durations and live connections
	// and is served on /metrics.
	Metrics *metrics.Metrics

	// Logger is the request logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default API configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:   "sf_visitor",
		CookieMaxAge: 365 * 24 * time.Hour,
		PingInterval: 30 * time.Second,
	}
}

// Server serves the storefront JSON API for the visitors of a Registry.
type Server struct {
	registry *storefront.Registry
	catalog  *catalog.Catalog
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates an API server.
func New(registry *storefront.Registry, products *catalog.Catalog, config Config) *Server {
	defaults := DefaultConfig()
	if config.CookieName == "" {
		config.CookieName = defaults.CookieName
	}
	if config.CookieMaxAge <= 0 {
		config.CookieMaxAge = defaults.CookieMaxAge
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		registry: registry,
		catalog:  products,
		config:   config,
		logger:   logger.With("component", "api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.config.Metrics != nil {
		r.Use(s.config.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.config.Metrics.Handler())
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/products/{id}", s.handleProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.visitor)

			r.Get("/cart", s.handleGetCart)
			r.Delete("/cart", s.handleClearCart)
			r.Post("/cart/items", s.handleAddItem)
			r.Patch("/cart/items/{id}", s.handleUpdateItem)
			r.Delete("/cart/items/{id}", s.handleRemoveItem)
			r.Get("/cart/items/{id}/quantity", s.handleItemQuantity)

			r.Get("/language", s.handleGetLanguage)
			r.Put("/language", s.handleSetLanguage)
			r.Get("/i18n", s.handleDictionary)
			r.Get("/i18n/{key}", s.handleTranslate)

			r.Get("/live", s.handleLive)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err *errors.Error) {
	var body errorBody
	body.Error.Code = err.Code
	body.Error.Message = err.Message
	body.Error.Detail = err.Detail
	writeJSON(w, r, status, body)
}

// writeJSON writes v with the visitor's document language as
// Content-Language.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if app := storefront.FromContext(r.Context()); app != nil {
		w.Header().Set("Content-Language", string(app.DocumentLanguage()))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) *errors.Error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("E161").WithDetail(err.Error())
	}
	return nil
}
