package i18n

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/terpenos/storefront/pkg/kvstore"
	"github.com/terpenos/storefront/pkg/pref"
	"github.com/terpenos/storefront/pkg/reactive"
)

// DefaultKey is the storage key of the language preference.
const DefaultKey = "language"

// LocaleSource reports the user's locale, such as "fr-FR".
type LocaleSource func() (string, error)

// StaticLocale returns a LocaleSource that always reports locale.
func StaticLocale(locale string) LocaleSource {
	return func() (string, error) { return locale, nil }
}

// EnvLocale reads the POSIX locale variables (LC_ALL, LC_MESSAGES, LANG)
// and converts a value like "fr_FR.UTF-8" to "fr-FR".
func EnvLocale() LocaleSource {
	return func() (string, error) {
		for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
			v := os.Getenv(name)
			if v == "" || v == "C" || v == "POSIX" {
				continue
			}
			v, _, _ = strings.Cut(v, ".")
			v, _, _ = strings.Cut(v, "@")
			return strings.ReplaceAll(v, "_", "-"), nil
		}
		return "", errors.New("i18n: no locale in environment")
	}
}

// Document receives the active language whenever it is changed.
type Document interface {
	SetLang(Language)
}

// DocumentFunc adapts a function to the Document interface.
type DocumentFunc func(Language)

func (f DocumentFunc) SetLang(lang Language) { f(lang) }

type noopDocument struct{}

func (noopDocument) SetLang(Language) {}

// Option configures a Store.
type Option func(*Store)

// WithTable sets the translation table. Default: DefaultTable().
func WithTable(t Table) Option {
	return func(s *Store) {
		if len(t) > 0 {
			s.table = t
		}
	}
}

// WithLocale sets where Init looks for the user's locale when no
// preference is stored.
func WithLocale(src LocaleSource) Option {
	return func(s *Store) {
		s.locale = src
	}
}

// WithDocument sets the document whose language attribute follows
// SetLanguage.
func WithDocument(doc Document) Option {
	return func(s *Store) {
		if doc != nil {
			s.doc = doc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithObserver registers a hook run after every SetLanguage.
func WithObserver(fn func(Language)) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// Store holds the active display language and translates keys for it.
type Store struct {
	key      string
	table    Table
	locale   LocaleSource
	doc      Document
	logger   *slog.Logger
	observer func(Language)

	mu          sync.Mutex
	initialized bool
	saved       *pref.Pref[Language]
	lang        *reactive.Signal[Language]
}

// NewStore creates a language store backed by kv. A nil kv disables
// persistence. The store starts in DefaultLanguage until Init runs.
func NewStore(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		key:    DefaultKey,
		doc:    noopDocument{},
		logger: slog.Default().With("component", "i18n"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == nil {
		s.table = DefaultTable()
	}
	s.saved = pref.New(kv, s.key, pref.String[Language]())
	s.lang = reactive.NewSignal(DefaultLanguage)
	return s
}

// Init picks the starting language: a stored supported preference, else
// the primary subtag of the locale if supported, else DefaultLanguage.
// A failing step is logged and the next one is tried. Init runs once and
// only fails when ctx is already done.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true

	if lang, ok := s.storedPreference(ctx); ok {
		s.lang.Set(lang)
		return nil
	}
	if lang, ok := s.localePreference(); ok {
		s.lang.Set(lang)
	}
	return nil
}

func (s *Store) storedPreference(ctx context.Context) (Language, bool) {
	lang, err := s.saved.Load(ctx)
	switch {
	case errors.Is(err, pref.ErrNotFound):
		return "", false
	case err != nil:
		s.logger.Warn("read language preference", "key", s.key, "error", err)
		return "", false
	case !s.table.Has(lang):
		s.logger.Debug("ignoring unsupported stored language", "key", s.key, "language", lang)
		return "", false
	}
	return lang, true
}

func (s *Store) localePreference() (Language, bool) {
	if s.locale == nil {
		return "", false
	}
	locale, err := s.locale()
	if err != nil {
		s.logger.Debug("detect locale", "error", err)
		return "", false
	}
	lang := PrimarySubtag(locale)
	return lang, s.table.Has(lang)
}

// Language returns the active language.
func (s *Store) Language() Language {
	return s.lang.Get()
}

// SetLanguage makes lang active, stores it and updates the document
// language. lang is not checked against the table; callers pass a
// supported language. A storage failure is logged.
func (s *Store) SetLanguage(ctx context.Context, lang Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lang.Set(lang)
	if err := s.saved.Save(ctx, lang); err != nil {
		s.logger.Error("save language", "key", s.key, "language", lang, "error", err)
	}
	s.doc.SetLang(lang)
	if s.observer != nil {
		s.observer(lang)
	}
}

// Translate returns the string for key in the active language, falling
// back to DefaultLanguage and then to the key itself.
func (s *Store) Translate(key Key) string {
	return s.table.Resolve(s.lang.Get(), key)
}

// T is shorthand for Translate.
func (s *Store) T(key Key) string {
	return s.Translate(key)
}

// Dictionary returns every key resolved for the active language.
func (s *Store) Dictionary() map[Key]string {
	return s.table.Dictionary(s.lang.Get())
}

// Supported returns the languages of the table, sorted.
func (s *Store) Supported() []Language {
	return s.table.Languages()
}

// IsSupported reports whether code names a language of the table.
func (s *Store) IsSupported(code string) bool {
	return s.table.Has(Language(code))
}

// Signal exposes the active language signal.
func (s *Store) Signal() *reactive.Signal[Language] {
	return s.lang
}

// Subscribe calls fn with the new language after every change.
func (s *Store) Subscribe(fn func(Language)) (unsubscribe func()) {
	return s.lang.Subscribe(fn)
}
