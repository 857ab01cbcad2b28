package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

type stubCartService struct {
	cart    *cart.Cart
	addQty  int
	cleared bool
}

func newStubCartService() *stubCartService {
	return &stubCartService{cart: cart.New()}
}

func (s *stubCartService) Get(context.Context, string) (*cart.Cart, error) { return s.cart, nil }

func (s *stubCartService) Add(_ context.Context, _ string, itemID int64, qty int) (*cart.Cart, error) {
	s.addQty = qty
	if err := s.cart.AddItem(cart.Snapshot{ID: itemID, Name: "Anillo", Price: 1000}, qty); err != nil {
		return nil, err
	}
	return s.cart, nil
}

func (s *stubCartService) Remove(_ context.Context, _ string, itemID int64) (*cart.Cart, error) {
	s.cart.RemoveItem(itemID)
	return s.cart, nil
}

func (s *stubCartService) Clear(context.Context, string) error {
	s.cleared = true
	s.cart.Clear()
	return nil
}

func (s *stubCartService) Summary(_ context.Context, cartID string) (cart.Summary, error) {
	return cart.Summarize(cartID, s.cart), nil
}

func TestCartAddDefaultsQtyToOne(t *testing.T) {
	svc := newStubCartService()
	req := withCart(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":7}`)))
	resp := serve(CartAddItem(svc, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.addQty != 1 {
		t.Fatalf("expected qty 1 got %d", svc.addQty)
	}
	var summary cart.Summary
	decodeData(t, resp.Body, &summary)
	if summary.CartID != testCartID || summary.Count != 1 || summary.Total != 1000 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestCartAddRejectsZeroQty(t *testing.T) {
	req := withCart(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":7,"qty":0}`)))
	resp := serve(CartAddItem(newStubCartService(), nil), req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestCartRequiresCartID(t *testing.T) {
	resp := serve(CartGet(newStubCartService(), nil), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	svc := newStubCartService()
	_, _ = svc.Add(context.Background(), testCartID, 1, 2)
	_, _ = svc.Add(context.Background(), testCartID, 2, 1)

	req := withParams(withCart(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/1", nil)), "id", "1")
	resp := serve(CartRemoveItem(svc, nil), req)
	var summary cart.Summary
	decodeData(t, resp.Body, &summary)
	if len(summary.Lines) != 1 || summary.Lines[0].Item.ID != 2 {
		t.Fatalf("unexpected lines %+v", summary.Lines)
	}

	resp = serve(CartClear(svc, nil), withCart(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)))
	decodeData(t, resp.Body, &summary)
	if !svc.cleared || summary.Count != 0 || summary.Total != 0 {
		t.Fatalf("cart not cleared: %+v", summary)
	}
}
