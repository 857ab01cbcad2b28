package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/internal/catalog"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

type stubCatalog struct {
	items    []models.CatalogItem
	fallback bool
	lastSeen catalog.Filter
}

func (s *stubCatalog) ListItems(context.Context) catalog.Result {
	return catalog.Result{Items: s.items, Fallback: s.fallback}
}

func (s *stubCatalog) Browse(_ context.Context, f catalog.Filter) catalog.Result {
	s.lastSeen = f
	return catalog.Result{Items: catalog.Apply(s.items, f), Fallback: s.fallback}
}

func (s *stubCatalog) GetItem(_ context.Context, id int64) (*models.CatalogItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

func sampleItems() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: 1, Name: "Anillo Luna", Category: "Anillos", Price: 15000, ImageID: 1},
		{ID: 2, Name: "Collar Sol", Category: "Collares", Price: 25000, ImageID: 2, IsFeatured: true},
		{ID: 3, Name: "Anillo Estrella", Category: "Anillos", Price: 9000, ImageID: 3, IsFeatured: true},
	}
}

func TestCatalogListAppliesFilter(t *testing.T) {
	svc := &stubCatalog{items: sampleItems(), fallback: true}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=anillo&category=Anillos&sort=price-asc", nil)
	resp := serve(CatalogList(svc, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastSeen.Sort != enums.SortPriceAsc || svc.lastSeen.Category != "Anillos" {
		t.Fatalf("unexpected filter %+v", svc.lastSeen)
	}
	if resp.Header().Get("X-Catalog-Fallback") != "true" {
		t.Fatalf("fallback header missing")
	}

	var body catalogListResponse
	decodeData(t, resp.Body, &body)
	if body.Total != 2 || body.Items[0].ID != 3 || body.Items[1].ID != 1 {
		t.Fatalf("unexpected items %+v", body.Items)
	}
	if body.Items[0].MainImage == "" {
		t.Fatalf("main image not rendered")
	}
}

func TestCatalogListRejectsUnknownSort(t *testing.T) {
	resp := serve(CatalogList(&stubCatalog{}, nil), httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=newest", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCatalogFeaturedAndCategories(t *testing.T) {
	svc := &stubCatalog{items: sampleItems()}

	resp := serve(CatalogFeatured(svc, nil), httptest.NewRequest(http.MethodGet, "/api/v1/products/featured?limit=1", nil))
	var featured catalogListResponse
	decodeData(t, resp.Body, &featured)
	if featured.Total != 1 || featured.Items[0].ID != 2 {
		t.Fatalf("unexpected featured %+v", featured.Items)
	}

	resp = serve(CatalogCategories(svc, nil), httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	var cats struct {
		Categories []string `json:"categories"`
	}
	decodeData(t, resp.Body, &cats)
	if strings.Join(cats.Categories, ",") != "Anillos,Collares" {
		t.Fatalf("unexpected categories %v", cats.Categories)
	}
}

func TestCatalogItemIncludesWhatsAppLink(t *testing.T) {
	store := config.StoreConfig{WhatsAppPhone: "+506 8674 2604"}
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/products/2", nil), "id", "2")
	resp := serve(CatalogItem(&stubCatalog{items: sampleItems()}, store, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body catalogItemResponse
	decodeData(t, resp.Body, &body)
	if body.Item.Name != "Collar Sol" {
		t.Fatalf("unexpected item %+v", body.Item)
	}
	if !strings.HasPrefix(body.WhatsAppLink, "https://wa.me/50686742604?text=") {
		t.Fatalf("unexpected link %s", body.WhatsAppLink)
	}
}

func TestCatalogItemNotFound(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodGet, "/api/v1/products/99", nil), "id", "99")
	resp := serve(CatalogItem(&stubCatalog{}, config.StoreConfig{}, nil), req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
