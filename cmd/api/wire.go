package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/its27-backend/api/controllers"
	"github.com/angelmondragon/its27-backend/internal/auth"
	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/angelmondragon/its27-backend/internal/catalog"
	"github.com/angelmondragon/its27-backend/internal/checkout"
	"github.com/angelmondragon/its27-backend/internal/media"
	"github.com/angelmondragon/its27-backend/internal/messages"
	"github.com/angelmondragon/its27-backend/internal/notifications"
	"github.com/angelmondragon/its27-backend/internal/orders"
	product "github.com/angelmondragon/its27-backend/internal/products"
	"github.com/angelmondragon/its27-backend/internal/settings"
	"github.com/angelmondragon/its27-backend/pkg/auth/session"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db"
	"github.com/angelmondragon/its27-backend/pkg/emailjs"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/metrics"
	"github.com/angelmondragon/its27-backend/pkg/migrate"
	"github.com/angelmondragon/its27-backend/pkg/pubsub"
	"github.com/angelmondragon/its27-backend/pkg/redis"
	"github.com/angelmondragon/its27-backend/pkg/storage/gcs"
	"github.com/prometheus/client_golang/prometheus"
)

// infra holds the external connections; everything in it is registered with
// the closers passed to connect.
type infra struct {
	db     *db.Client
	redis  *redis.Client
	gcs    *gcs.Client
	pubsub *pubsub.Client // nil unless realtime Pub/Sub is enabled
	health []controllers.Dependency
}

func connect(ctx context.Context, cfg *config.Config, instance string, logg *logger.Logger, res *closers) (*infra, error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	res.add("database", dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	res.add("redis", redisClient)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	res.add("gcs", gcsClient)

	in := &infra{
		db:    dbClient,
		redis: redisClient,
		gcs:   gcsClient,
		health: []controllers.Dependency{
			{Name: "database", Pinger: dbClient},
			{Name: "redis", Pinger: redisClient},
			{Name: "gcs", Pinger: gcsClient},
		},
	}

	if cfg.FeatureFlags.RealtimePubSub {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, instance, logg)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		res.add("pubsub", psClient)
		in.pubsub = psClient
		in.health = append(in.health, controllers.Dependency{Name: "pubsub", Pinger: psClient})
	}
	return in, nil
}

type services struct {
	httpMetrics *metrics.HTTPMetrics
	sessions    *session.Manager
	catalog     catalog.Service
	cart        cart.Service
	checkout    checkout.Service
	settings    settings.Service
	logo        *media.LogoUploader
	messages    messages.Service
	orders      orders.Service
	products    product.Service
	auth        auth.Service
	register    auth.RegisterService
}

func buildServices(ctx context.Context, cfg *config.Config, in *infra, registry *prometheus.Registry, logg *logger.Logger) (*services, error) {
	out := &services{httpMetrics: metrics.NewHTTPMetrics(registry)}
	var err error

	if out.sessions, err = session.NewManager(in.redis, cfg.JWT); err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	out.sessions.OnChange(func(ctx context.Context, evt session.Event) {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"event":     string(evt.Type),
			"access_id": evt.AccessID,
			"user_id":   evt.UserID.String(),
		}), "admin session changed")
	})

	if out.settings, err = buildSettings(ctx, in, logg); err != nil {
		return nil, err
	}

	catalogRepo := catalog.NewRepository(in.db.DB())
	if out.catalog, err = catalog.NewService(catalogRepo, logg); err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}

	cartStore, err := cart.NewRedisStore(in.redis, cfg.Store.CartTTL)
	if err != nil {
		return nil, fmt.Errorf("cart store: %w", err)
	}
	if out.cart, err = cart.NewService(cartStore, out.catalog); err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	ordersRepo := orders.NewRepository(in.db.DB())
	if out.orders, err = orders.NewService(ordersRepo, logg); err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	notifier, err := orderNotifier(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	attempts, err := checkout.NewRedisAttemptStore(in.redis, cfg.Store.CartTTL)
	if err != nil {
		return nil, fmt.Errorf("checkout attempts: %w", err)
	}
	locker, err := checkout.NewRedisLocker(in.redis, cfg.Store.CheckoutLockTTL)
	if err != nil {
		return nil, fmt.Errorf("checkout locker: %w", err)
	}
	out.checkout, err = checkout.NewService(checkout.Deps{
		Carts:    cartStore,
		Attempts: attempts,
		Locker:   locker,
		Orders:   ordersRepo,
		Notifier: notifier,
		Codes:    checkout.NewOrderCodeGenerator(cfg.Store.OrderCodePrefix),
		Pricing:  checkout.NewPricing(cfg.Store),
		Store:    cfg.Store,
		Metrics:  metrics.NewCheckoutMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}

	if out.messages, err = messages.NewService(messages.NewRepository(in.db.DB()), logg); err != nil {
		return nil, fmt.Errorf("messages service: %w", err)
	}

	mediaService, err := media.NewService(in.gcs, cfg.Media, metrics.NewMediaMetrics(registry), logg)
	if err != nil {
		return nil, fmt.Errorf("media service: %w", err)
	}
	if out.logo, err = media.NewLogoUploader(mediaService, out.settings, cfg.GCS.BrandPrefix); err != nil {
		return nil, fmt.Errorf("logo uploader: %w", err)
	}
	if out.products, err = product.NewService(catalogRepo, mediaService, cfg.GCS.ProductPrefix, logg); err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}

	adminRepo := auth.NewRepository(in.db.DB())
	out.auth, err = auth.NewService(auth.ServiceParams{
		Admins:   adminRepo,
		Sessions: out.sessions,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	if out.register, err = auth.NewRegisterService(adminRepo, cfg.Password); err != nil {
		return nil, fmt.Errorf("register service: %w", err)
	}
	return out, nil
}

// buildSettings picks the Pub/Sub fan-out when a client is connected and the
// in-process broadcaster otherwise, and starts delivering changes.
func buildSettings(ctx context.Context, in *infra, logg *logger.Logger) (settings.Service, error) {
	repo := settings.NewRepository(in.db.DB())

	if in.pubsub == nil {
		local := settings.NewLocalBroadcaster()
		svc, err := settings.NewService(repo, local, logg)
		if err != nil {
			return nil, fmt.Errorf("settings service: %w", err)
		}
		local.Listen(svc.HandleChange)
		return svc, nil
	}

	remote, err := settings.NewPubSubBroadcaster(in.pubsub.SettingsPublisher(), in.pubsub.SettingsSubscription(), logg)
	if err != nil {
		return nil, fmt.Errorf("settings broadcaster: %w", err)
	}
	svc, err := settings.NewService(repo, remote, logg)
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}
	go func() {
		if err := remote.Run(ctx, svc.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "settings receiver stopped", err)
		}
	}()
	return svc, nil
}

func orderNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger) (checkout.Notifier, error) {
	if !cfg.FeatureFlags.OrderEmails || !cfg.EmailJS.Enabled() {
		logg.Warn(ctx, "order emails disabled, logging placed orders instead")
		return notifications.NewLogNotifier(logg), nil
	}
	client, err := emailjs.NewClient(cfg.EmailJS)
	if err != nil {
		return nil, fmt.Errorf("emailjs client: %w", err)
	}
	n, err := notifications.NewOrderNotifier(client, cfg.EmailJS.TemplateID, logg)
	if err != nil {
		return nil, fmt.Errorf("order notifier: %w", err)
	}
	return n, nil
}
