package i18n

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terpenos/storefront/pkg/kvstore"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("storage disabled") }
func (brokenStore) Remove(context.Context, string) error      { return nil }

func newStore(t *testing.T, kv kvstore.Store, opts ...Option) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewStore(kv, append([]Option{WithLogger(logger)}, opts...)...)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, &buf
}

func TestInitDetection(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		locale LocaleSource
		want   Language
	}{
		{"nothing", "", nil, "en"},
		{"stored wins", "es", StaticLocale("fr-FR"), "es"},
		{"locale primary subtag", "", StaticLocale("fr-FR"), "fr"},
		{"unsupported locale", "", StaticLocale("xx-YY"), "en"},
		{"unsupported stored falls through", "de", StaticLocale("fr-CA"), "fr"},
		{"bare locale", "", StaticLocale("es"), "es"},
		{"locale error", "", func() (string, error) { return "", errors.New("no navigator") }, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := kvstore.NewMemoryStore()
			if tt.stored != "" {
				kv.Set(context.Background(), DefaultKey, tt.stored)
			}
			s, _ := newStore(t, kv, WithLocale(tt.locale))
			if got := s.Language(); got != tt.want {
				t.Errorf("Language() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitStorageFailureFallsThrough(t *testing.T) {
	s, logs := newStore(t, brokenStore{}, WithLocale(StaticLocale("fr-FR")))

	if got := s.Language(); got != "fr" {
		t.Errorf("Language() = %q, want fr", got)
	}
	if !strings.Contains(logs.String(), "read language preference") {
		t.Errorf("storage failure not logged: %s", logs)
	}
}

func TestInitDoesNotPersistDetection(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	newStore(t, kv, WithLocale(StaticLocale("fr-FR")))

	if _, ok, _ := kv.Get(context.Background(), DefaultKey); ok {
		t.Error("detected language was written to storage")
	}
}

func TestInitOnce(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s, _ := newStore(t, kv)

	kv.Set(ctx, DefaultKey, "fr")
	s.Init(ctx)
	if got := s.Language(); got != DefaultLanguage {
		t.Errorf("second Init changed language to %q", got)
	}
}

func TestSetLanguage(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()

	var docLang Language
	var changes []Language
	s, _ := newStore(t, kv,
		WithDocument(DocumentFunc(func(l Language) { docLang = l })),
		WithObserver(func(l Language) { changes = append(changes, l) }),
	)

	s.SetLanguage(ctx, "fr")

	if got := s.Language(); got != "fr" {
		t.Errorf("Language() = %q, want fr", got)
	}
	if v, _, _ := kv.Get(ctx, DefaultKey); v != "fr" {
		t.Errorf("stored = %q, want fr", v)
	}
	if docLang != "fr" {
		t.Errorf("document lang = %q, want fr", docLang)
	}
	if diff := cmp.Diff([]Language{"fr"}, changes); diff != "" {
		t.Errorf("observer mismatch (-want +got):\n%s", diff)
	}

	reloaded, _ := newStore(t, kv)
	if got := reloaded.Language(); got != "fr" {
		t.Errorf("reloaded Language() = %q, want fr", got)
	}
}

func TestSetLanguageStorageFailure(t *testing.T) {
	s, logs := newStore(t, brokenStore{})
	s.SetLanguage(context.Background(), "es")

	if got := s.Language(); got != "es" {
		t.Errorf("Language() = %q, want es", got)
	}
	if !strings.Contains(logs.String(), "save language") {
		t.Errorf("write failure not logged: %s", logs)
	}
}

func TestTranslate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, nil)

	if got := s.T(CartTitle); got != "Your cart" {
		t.Errorf("en cart.title = %q", got)
	}

	s.SetLanguage(ctx, "fr")
	if got := s.Translate(CartTitle); got != "Votre panier" {
		t.Errorf("fr cart.title = %q", got)
	}
	if got := s.Translate(ProductNotFound); got != "Product not found" {
		t.Errorf("fr product.notFound = %q, want English fallback", got)
	}
	if got := s.Translate("checkout.shipping"); got != "checkout.shipping" {
		t.Errorf("unknown key = %q, want the key", got)
	}

	// An unsupported language still translates through the fallbacks.
	s.SetLanguage(ctx, "xx")
	if got := s.Translate(CartTitle); got != "Your cart" {
		t.Errorf("xx cart.title = %q", got)
	}
}

func TestCustomTable(t *testing.T) {
	table := Table{"en": {"hi": "Hi"}, "pt": {"hi": "Olá"}}
	s, _ := newStore(t, nil, WithTable(table), WithLocale(StaticLocale("pt-BR")))

	if got := s.T("hi"); got != "Olá" {
		t.Errorf("T(hi) = %q", got)
	}
	if diff := cmp.Diff([]Language{"en", "pt"}, s.Supported()); diff != "" {
		t.Errorf("Supported mismatch (-want +got):\n%s", diff)
	}
	if !s.IsSupported("pt") || s.IsSupported("fr") {
		t.Error("IsSupported disagrees with the table")
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, nil)

	var seen []Language
	unsubscribe := s.Subscribe(func(l Language) { seen = append(seen, l) })
	s.SetLanguage(ctx, "es")
	s.SetLanguage(ctx, "es")
	s.SetLanguage(ctx, "fr")
	unsubscribe()
	s.SetLanguage(ctx, "en")

	if diff := cmp.Diff([]Language{"es", "fr"}, seen); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")

	got, err := EnvLocale()()
	if err != nil {
		t.Fatalf("EnvLocale: %v", err)
	}
	if got != "fr-FR" {
		t.Errorf("EnvLocale = %q, want fr-FR", got)
	}

	t.Setenv("LANG", "C")
	if _, err := EnvLocale()(); err == nil {
		t.Error("expected error for the C locale")
	}
}
