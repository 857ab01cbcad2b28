package controllers

import (
	"net/http"

	"github.com/angelmondragon/its27-backend/api/middleware"
	"github.com/angelmondragon/its27-backend/api/validators"
	"github.com/angelmondragon/its27-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Qty       *int  `json:"qty,omitempty"`
}

// cartEndpoint resolves the shopper's cart id before running fn.
func cartEndpoint(svc cart.Service, logg *logger.Logger, fn func(r *http.Request, cartID string) (any, error)) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "cart")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		cartID, err := requireCartID(r)
		if err != nil {
			return nil, err
		}
		return fn(r, cartID)
	})
}

func requireCartID(r *http.Request) (string, error) {
	if id := middleware.CartIDFromContext(r.Context()); id != "" {
		return id, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "cart id missing")
}

// CartGet returns the cart with line and cart totals.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartEndpoint(svc, logg, func(r *http.Request, cartID string) (any, error) {
		return svc.Summary(r.Context(), cartID)
	})
}

// CartAddItem adds qty units of an item, one when qty is omitted.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartEndpoint(svc, logg, func(r *http.Request, cartID string) (any, error) {
		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		qty := 1
		if req.Qty != nil {
			qty = *req.Qty
		}
		c, err := svc.Add(r.Context(), cartID, req.ProductID, qty)
		if err != nil {
			return nil, err
		}
		return cart.Summarize(cartID, c), nil
	})
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartEndpoint(svc, logg, func(r *http.Request, cartID string) (any, error) {
		itemID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		c, err := svc.Remove(r.Context(), cartID, itemID)
		if err != nil {
			return nil, err
		}
		return cart.Summarize(cartID, c), nil
	})
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartEndpoint(svc, logg, func(r *http.Request, cartID string) (any, error) {
		if err := svc.Clear(r.Context(), cartID); err != nil {
			return nil, err
		}
		return cart.Summarize(cartID, cart.New()), nil
	})
}
