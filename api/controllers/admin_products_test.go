package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/internal/media"
	product "github.com/angelmondragon/its27-backend/internal/products"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

type stubProducts struct {
	created  product.CreateProductInput
	updated  product.UpdateProductInput
	files    map[string]string
	order    []string
	promoted int
	removed  int
}

func (s *stubProducts) Get(_ context.Context, id int64) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id}, nil
}

func (s *stubProducts) Create(_ context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.created = input
	return &product.ProductDTO{ID: 9, Name: input.Name, Price: input.Price}, nil
}

func (s *stubProducts) Update(_ context.Context, id int64, input product.UpdateProductInput) (*product.ProductDTO, error) {
	s.updated = input
	return &product.ProductDTO{ID: id}, nil
}

func (s *stubProducts) Delete(_ context.Context, _ int64, confirmed bool) error {
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation required")
	}
	return nil
}

func (s *stubProducts) AttachImages(_ context.Context, id int64, files []media.File) (*product.AttachResult, error) {
	s.files = map[string]string{}
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		s.files[f.Name] = string(data)
	}
	return &product.AttachResult{
		Product: product.ProductDTO{ID: id, Images: []string{"https://cdn.test/a.jpg"}},
		Failed:  []product.FailedImage{{Name: "notes.txt", Reason: "unsupported file type"}},
	}, nil
}

func (s *stubProducts) ReorderImages(_ context.Context, id int64, urls []string) (*product.ProductDTO, error) {
	s.order = urls
	return &product.ProductDTO{ID: id, Images: urls}, nil
}

func (s *stubProducts) PromoteImage(_ context.Context, id int64, index int) (*product.ProductDTO, error) {
	s.promoted = index
	return &product.ProductDTO{ID: id}, nil
}

func (s *stubProducts) RemoveImage(_ context.Context, id int64, index int) (*product.ProductDTO, error) {
	s.removed = index
	return &product.ProductDTO{ID: id}, nil
}

func TestAdminCreateProduct(t *testing.T) {
	svc := &stubProducts{}
	body := `{"name":"Pulsera Marea","category":"Pulseras","price":18000,"is_featured":true}`
	resp := serve(AdminCreateProduct(svc, nil), httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.created.Name != "Pulsera Marea" || svc.created.Price != 18000 || !svc.created.IsFeatured {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestAdminUpdateProductKeepsOmittedFields(t *testing.T) {
	svc := &stubProducts{}
	req := withParams(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"price":20000}`)), "id", "9")
	resp := serve(AdminUpdateProduct(svc, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updated.Price == nil || *svc.updated.Price != 20000 {
		t.Fatalf("price not forwarded %+v", svc.updated)
	}
	if svc.updated.Name != nil || svc.updated.IsFeatured != nil {
		t.Fatalf("omitted fields should stay nil %+v", svc.updated)
	}
}

func TestAdminDeleteProductConfirmation(t *testing.T) {
	svc := &stubProducts{}
	resp := serve(AdminDeleteProduct(svc, nil), withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "9"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	resp = serve(AdminDeleteProduct(svc, nil), withParams(httptest.NewRequest(http.MethodDelete, "/?confirm=true", nil), "id", "9"))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
}

func TestAdminAttachProductImagesMultipart(t *testing.T) {
	svc := &stubProducts{}
	req := multipartRequest(t, "/api/admin/v1/products/9/images", "images", map[string][]byte{
		"anillo.jpg": []byte("jpeg"),
		"notes.txt":  []byte("text"),
	})
	req = withParams(req, "id", "9")
	resp := serve(AdminAttachProductImages(svc, UploadLimits{MaxFiles: 5, MaxBytes: 1 << 20}, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	names := make([]string, 0, len(svc.files))
	for name := range svc.files {
		names = append(names, name)
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "anillo.jpg,notes.txt" || svc.files["anillo.jpg"] != "jpeg" {
		t.Fatalf("unexpected files %v", svc.files)
	}

	var result product.AttachResult
	decodeData(t, resp.Body, &result)
	if len(result.Failed) != 1 || result.Failed[0].Name != "notes.txt" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAdminProductImageOrdering(t *testing.T) {
	svc := &stubProducts{}

	req := withParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"images":["b","a"]}`)), "id", "9")
	serve(AdminReorderProductImages(svc, nil), req)
	if strings.Join(svc.order, ",") != "b,a" {
		t.Fatalf("unexpected order %v", svc.order)
	}

	serve(AdminPromoteProductImage(svc, nil), withParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", "9", "index", "2"))
	if svc.promoted != 2 {
		t.Fatalf("unexpected promote index %d", svc.promoted)
	}

	serve(AdminRemoveProductImage(svc, nil), withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "9", "index", "0"))
	if svc.removed != 0 {
		t.Fatalf("unexpected remove index %d", svc.removed)
	}

	resp := serve(AdminRemoveProductImage(svc, nil), withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "9", "index", "-1"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
