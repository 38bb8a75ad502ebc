package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.CartMutation("add")
	m.CartMutation("add")
	m.CartMutation("clear")
	m.StorageFailure("redis", "set", errors.New("down"))
	m.LanguageChange("fr")

	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("add")); got != 2 {
		t.Errorf("cart add mutations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("clear")); got != 1 {
		t.Errorf("cart clear mutations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storageErrors.WithLabelValues("redis", "set")); got != 1 {
		t.Errorf("storage errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.languageChanges.WithLabelValues("fr")); got != 1 {
		t.Errorf("language changes = %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()

	m.VisitorOpened()
	m.VisitorOpened()
	m.VisitorClosed()
	m.LiveOpened()

	if got := testutil.ToFloat64(m.activeVisitors); got != 1 {
		t.Errorf("active visitors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.liveConnections); got != 1 {
		t.Errorf("live connections = %v, want 1", got)
	}
}

func TestOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(
		WithRegistry(reg),
		WithNamespace("shop"),
		WithSubsystem("web"),
		WithConstLabels(prometheus.Labels{"region": "eu"}),
	)
	m.CartMutation("add")

	if m.Registry() != reg {
		t.Fatal("Registry() is not the configured registry")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "shop_web_cart_mutations_total" {
			found = true
			if labels := f.GetMetric()[0].GetLabel(); len(labels) != 2 {
				t.Errorf("labels = %v, want op and region", labels)
			}
		}
	}
	if !found {
		t.Error("shop_web_cart_mutations_total not registered")
	}
}

func TestSeparateInstances(t *testing.T) {
	// Each New uses its own registry, so repeated construction must not
	// panic with duplicate registration.
	New().CartMutation("add")
	New().CartMutation("add")
}

func TestHandler(t *testing.T) {
	m := New()
	m.LanguageChange("es")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `storefront_language_changes_total{language="es"} 1`) {
		t.Errorf("exposition missing language counter:\n%s", body)
	}
}

func TestMiddleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cart/items/p1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cart/items/p2", nil))

	if got := testutil.CollectAndCount(m.requestDuration); got != 1 {
		t.Errorf("series = %d, want 1 (route pattern, not path)", got)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "storefront_http_request_duration_seconds" {
			continue
		}
		h := f.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 2 {
			t.Errorf("sample count = %d, want 2", h.GetSampleCount())
		}
		return
	}
	t.Error("request duration histogram not gathered")
}
