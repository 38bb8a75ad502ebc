package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terpenos/storefront/internal/errors"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	if diff := cmp.Diff([]Language{"en", "es", "fr"}, table.Languages()); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
	for _, k := range Keys() {
		if _, ok := table.Lookup(DefaultLanguage, k); !ok {
			t.Errorf("default language is missing %q", k)
		}
	}
}

func TestTableMissing(t *testing.T) {
	missing := DefaultTable().Missing()

	want := map[Language][]Key{
		"es": {CartAddedToast, FooterTerms},
		"fr": {ProductNotFound},
	}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
}

func TestTableResolve(t *testing.T) {
	table := Table{
		"en": {"greeting": "Hello", "bye": "Bye", "blank": "Blank"},
		"fr": {"greeting": "Bonjour", "blank": ""},
	}

	tests := []struct {
		lang Language
		key  Key
		want string
	}{
		{"fr", "greeting", "Bonjour"},
		{"fr", "bye", "Bye"},
		{"fr", "blank", "Blank"},
		{"fr", "unknown.key", "unknown.key"},
		{"en", "bye", "Bye"},
		{"de", "greeting", "Hello"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"/"+string(tt.key), func(t *testing.T) {
			if got := table.Resolve(tt.lang, tt.key); got != tt.want {
				t.Errorf("Resolve(%s, %s) = %q, want %q", tt.lang, tt.key, got, tt.want)
			}
		})
	}
}

func TestParseTableInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not a map", "- en\n- fr\n"},
		{"strings not a map", "en: hello\n"},
		{"broken yaml", "en: {cart.title: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.data))
			if !errors.HasCode(err, "E140") {
				t.Errorf("ParseTable error = %v, want E140", err)
			}
		})
	}
}

func TestLoadTableJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.json")
	data := `{"en":{"cart.title":"Basket"},"de":{"cart.title":"Warenkorb"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := table.Resolve("de", CartTitle); got != "Warenkorb" {
		t.Errorf("de cart.title = %q", got)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.HasCode(err, "E140") {
		t.Errorf("LoadTable error = %v, want E140", err)
	}
}

func TestOverlay(t *testing.T) {
	base := Table{"en": {"a": "A", "b": "B"}}
	extra := Table{"en": {"b": "B2"}, "de": {"a": "Ä"}}

	got := base.Overlay(extra)
	want := Table{"en": {"a": "A", "b": "B2"}, "de": {"a": "Ä"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Overlay mismatch (-want +got):\n%s", diff)
	}
	if base["en"]["b"] != "B" {
		t.Error("Overlay modified its receiver")
	}
}

func TestDictionary(t *testing.T) {
	dict := DefaultTable().Dictionary("fr")

	if got := dict[CartTitle]; got != "Votre panier" {
		t.Errorf("cart.title = %q", got)
	}
	if got := dict[ProductNotFound]; got != "Product not found" {
		t.Errorf("product.notFound = %q, want English fallback", got)
	}
	if len(dict) != len(Keys()) {
		t.Errorf("len(Dictionary) = %d, want %d", len(dict), len(Keys()))
	}
}

func TestPrimarySubtag(t *testing.T) {
	tests := map[string]Language{
		"fr-FR":      "fr",
		"en":         "en",
		"zh-Hant-TW": "zh",
		"":           "",
		" es-419 ":   "es",
	}
	for in, want := range tests {
		if got := PrimarySubtag(in); got != want {
			t.Errorf("PrimarySubtag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAcceptLanguage(t *testing.T) {
	tests := map[string]string{
		"fr-CH, fr;q=0.9, en;q=0.8": "fr-CH",
		"es;q=0.7":                  "es",
		"*":                         "",
		"":                          "",
	}
	for in, want := range tests {
		if got := AcceptLanguage(in); got != want {
			t.Errorf("AcceptLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
