package controllers

import (
	"net/http"

	"github.com/angelmondragon/its27-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/its27-backend/internal/checkout"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// placeOrderRequest carries no validate tags; the checkout service owns the
// form rules and their messages.
type placeOrderRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	Canton        string `json:"canton"`
	District      string `json:"district"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

func (p placeOrderRequest) toInput() checkoutsvc.PlaceOrderInput {
	return checkoutsvc.PlaceOrderInput{
		Form: checkoutsvc.ShippingForm{
			Name:     p.Name,
			Phone:    p.Phone,
			Province: p.Province,
			Canton:   p.Canton,
			District: p.District,
			Address:  p.Address,
		},
		PaymentMethod: p.PaymentMethod,
	}
}

func checkoutEndpoint(svc checkoutsvc.Service, logg *logger.Logger, status int, fn func(r *http.Request, cartID string) (any, error)) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "checkout")
	}
	return endpointFunc(logg, status, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		cartID, err := requireCartID(r)
		if err != nil {
			return nil, err
		}
		return fn(r, cartID)
	})
}

// CheckoutStatus returns the cart's current attempt and quote.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutEndpoint(svc, logg, http.StatusOK, func(r *http.Request, cartID string) (any, error) {
		return svc.Status(r.Context(), cartID)
	})
}

func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutEndpoint(svc, logg, http.StatusOK, func(r *http.Request, cartID string) (any, error) {
		return svc.Quote(r.Context(), cartID)
	})
}

// CheckoutPlaceOrder turns the cart into an order.
func CheckoutPlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return checkoutEndpoint(svc, logg, http.StatusCreated, func(r *http.Request, cartID string) (any, error) {
		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.PlaceOrder(r.Context(), cartID, req.toInput())
	})
}
