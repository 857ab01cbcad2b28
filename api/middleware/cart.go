package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// CartIDHeader carries the anonymous shopper's cart token.
const CartIDHeader = "X-Cart-Id"

// CartID resolves the shopper cart token from the request. A missing or
// malformed token is replaced by a fresh one, which is echoed back in the
// response header so the client can keep it.
func CartID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := strings.TrimSpace(r.Header.Get(CartIDHeader))
			if !cart.ValidCartID(cartID) {
				cartID = cart.NewCartID()
			}
			w.Header().Set(CartIDHeader, cartID)

			ctx := WithCartID(r.Context(), cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
