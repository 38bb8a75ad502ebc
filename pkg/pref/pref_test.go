package pref

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/terpenos/storefront/pkg/kvstore"
)

type settings struct {
	Theme  string `json:"theme"`
	Volume int    `json:"volume"`
}

// TestPrefJSON tests saving and loading a JSON value.
func TestPrefJSON(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	p := New(kv, "settings", JSON[settings]())

	if p.Key() != "settings" {
		t.Errorf("Key: got %v, want settings", p.Key())
	}

	if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before Save: got %v, want ErrNotFound", err)
	}

	if err := p.Save(ctx, settings{Theme: "dark", Volume: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.SavedAt().IsZero() {
		t.Error("SavedAt should be set after Save")
	}

	raw, _, _ := kv.Get(ctx, "settings")
	if raw != `{"theme":"dark","volume":7}` {
		t.Errorf("stored = %s", raw)
	}

	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != (settings{Theme: "dark", Volume: 7}) {
		t.Errorf("Load: got %+v", got)
	}
}

// TestPrefString tests the verbatim codec.
func TestPrefString(t *testing.T) {
	type lang string

	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	p := New(kv, "language", String[lang]())

	if err := p.Save(ctx, "fr"); err != nil {
		t.Fatal(err)
	}
	if raw, _, _ := kv.Get(ctx, "language"); raw != "fr" {
		t.Errorf("stored = %q, want raw fr", raw)
	}
	if got, _ := p.Load(ctx); got != "fr" {
		t.Errorf("Load: got %q", got)
	}
}

// TestPrefDecodeError tests that unreadable values are reported distinctly.
func TestPrefDecodeError(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	kv.Set(ctx, "settings", "[1,2,3]")
	p := New(kv, "settings", JSON[settings]())

	_, err := p.Load(ctx)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Load: got %v, want *DecodeError", err)
	}
	if de.Key != "settings" {
		t.Errorf("DecodeError.Key = %q", de.Key)
	}

	if err := p.Remove(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Remove: got %v", err)
	}
}

// TestPrefStoreErrors tests that storage failures pass through untouched.
func TestPrefStoreErrors(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore(kvstore.WithQuota(3))
	p := New(kv, "n", CodecFuncs[int]{
		EncodeFunc: func(v int) (string, error) { return strconv.Itoa(v), nil },
		DecodeFunc: strconv.Atoi,
	})

	if err := p.Save(ctx, 123456); !errors.Is(err, kvstore.ErrQuotaExceeded) {
		t.Errorf("Save: got %v, want ErrQuotaExceeded", err)
	}
	if !p.SavedAt().IsZero() {
		t.Error("SavedAt set by a failed Save")
	}

	kv.Close()
	if _, err := p.Load(ctx); !errors.Is(err, kvstore.ErrClosed) {
		t.Errorf("Load: got %v, want ErrClosed", err)
	}
}

// TestPrefNilStore tests the off-device default.
func TestPrefNilStore(t *testing.T) {
	p := New[string](nil, "language", String[string]())

	if err := p.Save(context.Background(), "es"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := p.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: got %v, want ErrNotFound", err)
	}
}
