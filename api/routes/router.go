package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/its27-backend/api/controllers"
	"github.com/angelmondragon/its27-backend/api/middleware"
	"github.com/angelmondragon/its27-backend/internal/auth"
	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/angelmondragon/its27-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/its27-backend/internal/checkout"
	"github.com/angelmondragon/its27-backend/internal/media"
	"github.com/angelmondragon/its27-backend/internal/messages"
	"github.com/angelmondragon/its27-backend/internal/orders"
	product "github.com/angelmondragon/its27-backend/internal/products"
	"github.com/angelmondragon/its27-backend/internal/settings"
	"github.com/angelmondragon/its27-backend/pkg/auth/session"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/metrics"
)

// Cache is the Redis surface used by the rate limit and idempotency
// middleware.
type Cache interface {
	middleware.IdempotencyStore
	middleware.RateCounter
}

type logoUploader interface {
	Upload(ctx context.Context, file media.File) (*settings.Setting, error)
}

// Params collects everything the HTTP surface is wired to.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics

	Health   []controllers.Dependency
	Cache    Cache
	Sessions session.AccessSessionChecker

	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Settings settings.Service
	Logo     logoUploader
	Messages messages.Service
	Orders   orders.Service
	Products product.Service
	Auth     auth.Service
	Register auth.RegisterService
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTP),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.RateLimitPolicy{
		Name:       "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		IPLimit:    cfg.AuthRateLimit.LoginIPLimit,
		EmailLimit: cfg.AuthRateLimit.LoginEmailLimit,
	}
	contactPolicy := middleware.RateLimitPolicy{
		Name:    "contact",
		Window:  cfg.AuthRateLimit.ContactWindow,
		IPLimit: cfg.AuthRateLimit.ContactIPLimit,
	}
	uploads := controllers.UploadLimits{
		MaxFiles: cfg.Media.MaxBatchFiles,
		MaxBytes: cfg.Media.MaxUploadBytes(),
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Health...))
	})
	if p.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartID(logg))
		r.Use(middleware.Idempotency(p.Cache, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(p.Catalog, logg))
			r.Get("/featured", controllers.CatalogFeatured(p.Catalog, logg))
			r.Get("/{id}", controllers.CatalogItem(p.Catalog, cfg.Store, logg))
		})
		r.Get("/categories", controllers.CatalogCategories(p.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.Cart, logg))
			r.Delete("/", controllers.CartClear(p.Cart, logg))
			r.Post("/items", controllers.CartAddItem(p.Cart, logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(p.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutStatus(p.Checkout, logg))
			r.Post("/", controllers.CheckoutPlaceOrder(p.Checkout, logg))
			r.Get("/quote", controllers.CheckoutQuote(p.Checkout, logg))
		})

		r.Route("/settings/{key}", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(p.Settings, logg))
			r.Get("/events", controllers.SettingsEvents(p.Settings, logg))
		})

		r.With(middleware.RateLimit(contactPolicy, p.Cache, logg)).Post("/contact", controllers.ContactCreate(p.Messages, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !cfg.App.IsProd() || cfg.FeatureFlags.AllowAdminSetup {
				r.Post("/register", controllers.AuthRegister(p.Register, logg))
			}
			r.With(middleware.RateLimit(loginPolicy, p.Cache, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
				r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
				r.Get("/session", controllers.AuthSession(p.Auth, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.Idempotency(p.Cache, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateProduct(p.Products, logg))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", controllers.AdminProductGet(p.Products, logg))
					r.Patch("/", controllers.AdminUpdateProduct(p.Products, logg))
					r.Delete("/", controllers.AdminDeleteProduct(p.Products, logg))
					r.Post("/images", controllers.AdminAttachProductImages(p.Products, uploads, logg))
					r.Put("/images/order", controllers.AdminReorderProductImages(p.Products, logg))
					r.Post("/images/{index}/promote", controllers.AdminPromoteProductImage(p.Products, logg))
					r.Delete("/images/{index}", controllers.AdminRemoveProductImage(p.Products, logg))
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Post("/logo/upload", controllers.AdminLogoUpload(p.Logo, uploads.MaxBytes, logg))
				r.Put("/{key}", controllers.AdminSettingsPut(p.Settings, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(p.Orders, logg))
				r.Get("/{id}", controllers.AdminOrderDetail(p.Orders, logg))
				r.Patch("/{id}/status", controllers.AdminOrderUpdateStatus(p.Orders, logg))
				r.Delete("/{id}", controllers.AdminOrderDelete(p.Orders, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", controllers.AdminMessagesList(p.Messages, logg))
				r.Post("/{id}/read", controllers.AdminMessageRead(p.Messages, logg))
				r.Delete("/{id}", controllers.AdminMessageDelete(p.Messages, logg))
			})
		})
	})

	return r
}
