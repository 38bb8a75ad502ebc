package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/i18n"
)

// visitor resolves the visitor cookie to an App and stores it in the
// request context. A missing or malformed cookie starts a new visitor.
func (s *Server) visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(s.config.CookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.config.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(s.config.CookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.config.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		locale := i18n.AcceptLanguage(r.Header.Get("Accept-Language"))
		app, err := s.registry.LoadOrCreate(r.Context(), id, storefront.WithLocale(i18n.StaticLocale(locale)))
		if err != nil {
			s.logger.Error("load visitor", "visitor", id, "error", err)
			writeError(w, r, http.StatusServiceUnavailable, errors.New("E121").Wrap(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(storefront.WithApp(r.Context(), app)))
	})
}
