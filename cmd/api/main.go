package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/its27-backend/api/routes"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/env"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api", Format: env.Get("ITS27_LOG_FORMAT", "json")})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api exited", err)
		stop()
		os.Exit(1)
	}
}

// closers releases resources in reverse order of acquisition.
type closers []namedCloser

type namedCloser struct {
	name string
	io.Closer
}

func (c *closers) add(name string, closer io.Closer) {
	*c = append(*c, namedCloser{name: name, Closer: closer})
}

func (c closers) closeAll() error {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		if cerr := c[i].Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("closing %s: %w", c[i].name, cerr))
		}
	}
	return err
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	instance := instanceName()
	ctx = logg.WithField(ctx, "instance", instance)

	var res closers
	defer func() {
		err = multierr.Append(err, res.closeAll())
	}()
	// background receivers stop before their clients close
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	infra, err := connect(ctx, cfg, instance, logg, &res)
	if err != nil {
		return err
	}
	svcs, err := buildServices(ctx, cfg, infra, registry, logg)
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Registry: registry,
			HTTP:     svcs.httpMetrics,
			Health:   infra.health,
			Cache:    infra.redis,
			Sessions: svcs.sessions,
			Catalog:  svcs.catalog,
			Cart:     svcs.cart,
			Checkout: svcs.checkout,
			Settings: svcs.settings,
			Logo:     svcs.logo,
			Messages: svcs.messages,
			Orders:   svcs.orders,
			Products: svcs.products,
			Auth:     svcs.auth,
			Register: svcs.register,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// instanceName identifies this process in logs and names its Pub/Sub
// subscription.
func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return env.Get("DYNO", host)
}
