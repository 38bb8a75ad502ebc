package i18n

import (
	_ "embed"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/terpenos/storefront/internal/errors"
)

//go:embed translations.yaml
var defaultTranslations []byte

// Table maps each supported language to its translated strings.
// A Table is read-only once built; methods never modify it.
type Table map[Language]map[Key]string

// DefaultTable returns the translations shipped with the storefront.
func DefaultTable() Table {
	t, err := ParseTable(defaultTranslations)
	if err != nil {
		panic("i18n: embedded translations: " + err.Error())
	}
	return t
}

// ParseTable parses a YAML (or JSON) document of the form
//
//	en:
//	  cart.title: Your cart
//	fr:
//	  cart.title: Votre panier
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	if len(t) == 0 {
		return nil, errors.New("E140").WithDetail("the table defines no languages")
	}
	for lang := range t {
		if lang == "" {
			return nil, errors.New("E140").WithDetail("empty language code")
		}
		if t[lang] == nil {
			t[lang] = map[Key]string{}
		}
	}
	return t, nil
}

// LoadTable reads a translation table from a YAML or JSON file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E140").
			WithDetail("cannot read " + path).
			Wrap(err)
	}
	return ParseTable(data)
}

// Overlay returns a new table holding t's strings replaced or extended by
// those in other. Neither input is modified.
func (t Table) Overlay(other Table) Table {
	out := make(Table, len(t)+len(other))
	for _, src := range []Table{t, other} {
		for lang, strs := range src {
			dst, ok := out[lang]
			if !ok {
				dst = make(map[Key]string, len(strs))
				out[lang] = dst
			}
			for k, v := range strs {
				dst[k] = v
			}
		}
	}
	return out
}

// Languages returns the supported languages, sorted.
func (t Table) Languages() []Language {
	out := make([]Language, 0, len(t))
	for lang := range t {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether lang is a supported language.
func (t Table) Has(lang Language) bool {
	_, ok := t[lang]
	return ok
}

// Lookup returns the string for key in lang. Empty strings count as
// missing.
func (t Table) Lookup(lang Language, key Key) (string, bool) {
	s := t[lang][key]
	return s, s != ""
}

// Resolve translates key for lang, falling back to the default language
// and then to the key itself.
func (t Table) Resolve(lang Language, key Key) string {
	if s, ok := t.Lookup(lang, key); ok {
		return s
	}
	if s, ok := t.Lookup(DefaultLanguage, key); ok {
		return s
	}
	return string(key)
}

// Dictionary returns every known key resolved for lang.
func (t Table) Dictionary(lang Language) map[Key]string {
	out := make(map[Key]string, len(allKeys))
	for _, k := range allKeys {
		out[k] = t.Resolve(lang, k)
	}
	for _, l := range []Language{DefaultLanguage, lang} {
		for k := range t[l] {
			out[k] = t.Resolve(lang, k)
		}
	}
	return out
}

// Missing reports, per language, the UI keys with no string of their own.
// Languages with nothing missing are omitted.
func (t Table) Missing() map[Language][]Key {
	out := make(map[Language][]Key)
	for lang := range t {
		for _, k := range allKeys {
			if _, ok := t.Lookup(lang, k); !ok {
				out[lang] = append(out[lang], k)
			}
		}
	}
	return out
}
