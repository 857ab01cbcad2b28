package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/its27-backend/api/validators"
	"github.com/angelmondragon/its27-backend/internal/catalog"
	product "github.com/angelmondragon/its27-backend/internal/products"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/money"
	"github.com/angelmondragon/its27-backend/pkg/whatsapp"
)

const (
	defaultFeaturedLimit = 4
	maxFeaturedLimit     = 24
	maxSearchLength      = 100
)

type catalogListResponse struct {
	Items    []product.ProductDTO `json:"items"`
	Total    int                  `json:"total"`
	Fallback bool                 `json:"fallback"`
}

type catalogItemResponse struct {
	Item         product.ProductDTO `json:"item"`
	WhatsAppLink string             `json:"whatsapp_link"`
}

func listResponse(items []models.CatalogItem, fallback bool) catalogListResponse {
	res := catalogListResponse{Items: make([]product.ProductDTO, 0, len(items)), Fallback: fallback}
	for i := range items {
		res.Items = append(res.Items, product.NewProductDTO(&items[i]))
	}
	res.Total = len(res.Items)
	return res
}

// CatalogList serves the shop listing with ?q=, ?category= and ?sort=.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "catalog")
	}
	return endpointFunc(logg, http.StatusOK, func(w http.ResponseWriter, r *http.Request) (any, error) {
		q := r.URL.Query()
		sortKey, err := enums.ParseSortKey(strings.TrimSpace(q.Get("sort")))
		if err != nil {
			return nil, pkgerrors.Validation("invalid sort", pkgerrors.FieldErrors{"sort": "must be featured, price-asc or price-desc"})
		}
		res := svc.Browse(r.Context(), catalog.Filter{
			Search:   validators.SanitizeString(q.Get("q"), maxSearchLength),
			Category: validators.SanitizeString(q.Get("category"), maxSearchLength),
			Sort:     sortKey,
		})
		if res.Fallback {
			w.Header().Set("X-Catalog-Fallback", "true")
		}
		return listResponse(res.Items, res.Fallback), nil
	})
}

// CatalogFeatured serves the home page highlights.
func CatalogFeatured(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "catalog")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultFeaturedLimit, 1, maxFeaturedLimit)
		if err != nil {
			return nil, err
		}
		res := svc.ListItems(r.Context())
		return listResponse(catalog.Featured(res.Items, limit), res.Fallback), nil
	})
}

func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "catalog")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"categories": catalog.Categories(svc.ListItems(r.Context()).Items)}, nil
	})
}

// CatalogItem serves a product page with its "buy now" WhatsApp link.
func CatalogItem(svc catalog.Service, store config.StoreConfig, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "catalog")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Hola, me interesa %s (%s).", item.Name, money.Format(item.Price))
		return catalogItemResponse{
			Item:         product.NewProductDTO(item),
			WhatsAppLink: whatsapp.Link(store.WhatsAppPhone, msg),
		}, nil
	})
}
