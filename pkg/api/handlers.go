package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/catalog"
	"github.com/terpenos/storefront/pkg/i18n"
)

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := s.catalog.Products()
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := products[:0]
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"products":   products,
		"categories": s.catalog.Categories(),
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.catalog.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.New("E160"))
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	app := storefront.FromContext(r.Context())
	writeJSON(w, r, http.StatusOK, app.Cart().Cart())
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	app := storefront.FromContext(r.Context())
	app.Cart().ClearCart(r.Context())
	writeJSON(w, r, http.StatusOK, app.Cart().Cart())
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	p, ok := s.lookup(req.ProductID)
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.New("E160").WithDetail("unknown product "+req.ProductID))
		return
	}

	app := storefront.FromContext(r.Context())
	if req.Quantity == nil {
		app.Cart().Add(r.Context(), p)
	} else {
		app.Cart().AddToCart(r.Context(), p, *req.Quantity)
	}
	if req.Quantity == nil || *req.Quantity > 0 {
		app.Toasts().Success(app.Language().T(i18n.CartAddedToast))
	}
	writeJSON(w, r, http.StatusOK, app.Cart().Cart())
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("E161").WithDetail("quantity is required"))
		return
	}

	app := storefront.FromContext(r.Context())
	app.Cart().UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	writeJSON(w, r, http.StatusOK, app.Cart().Cart())
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	app := storefront.FromContext(r.Context())
	app.Cart().RemoveFromCart(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, r, http.StatusOK, app.Cart().Cart())
}

func (s *Server) handleItemQuantity(w http.ResponseWriter, r *http.Request) {
	app := storefront.FromContext(r.Context())
	id := chi.URLParam(r, "id")
	writeJSON(w, r, http.StatusOK, map[string]any{
		"productId": id,
		"quantity":  app.Cart().GetItemQuantity(id),
	})
}

type languageResponse struct {
	Language  i18n.Language   `json:"language"`
	Supported []i18n.Language `json:"supported"`
}

func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := storefront.FromContext(r.Context()).Language()
	writeJSON(w, r, http.StatusOK, languageResponse{
		Language:  lang.Language(),
		Supported: lang.Supported(),
	})
}

type setLanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req setLanguageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	lang := storefront.FromContext(r.Context()).Language()
	if !lang.IsSupported(req.Language) {
		writeError(w, r, http.StatusBadRequest, errors.New("E141").WithDetail("unsupported language "+req.Language))
		return
	}
	lang.SetLanguage(r.Context(), i18n.Language(req.Language))
	writeJSON(w, r, http.StatusOK, languageResponse{
		Language:  lang.Language(),
		Supported: lang.Supported(),
	})
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	lang := storefront.FromContext(r.Context()).Language()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"language": lang.Language(),
		"strings":  lang.Dictionary(),
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	lang := storefront.FromContext(r.Context()).Language()
	key := i18n.Key(chi.URLParam(r, "key"))
	writeJSON(w, r, http.StatusOK, map[string]string{
		"key":   string(key),
		"value": lang.Translate(key),
	})
}

func (s *Server) lookup(id string) (catalog.Product, bool) {
	if id == "" {
		return catalog.Product{}, false
	}
	return s.catalog.Lookup(id)
}
