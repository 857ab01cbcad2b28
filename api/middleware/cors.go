package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173", // vite dev server
}

// CORS returns middleware that applies the API's allowed origin policy for the
// storefront and back-office SPAs.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", CartIDHeader, IdempotencyKeyHeader, "X-Requested-With", requestIDHeader},
		ExposedHeaders:   []string{CartIDHeader, requestIDHeader, ReplayedHeader, "X-ITS27-Token", "X-Catalog-Fallback"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
