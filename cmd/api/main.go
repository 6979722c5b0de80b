package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitlshop/storefront-backend/api/routes"
	"github.com/capitlshop/storefront-backend/internal/auth"
	"github.com/capitlshop/storefront-backend/internal/cart"
	"github.com/capitlshop/storefront-backend/internal/catalog"
	"github.com/capitlshop/storefront-backend/internal/checkout"
	"github.com/capitlshop/storefront-backend/internal/notifications"
	"github.com/capitlshop/storefront-backend/pkg/config"
	"github.com/capitlshop/storefront-backend/pkg/db"
	"github.com/capitlshop/storefront-backend/pkg/logger"
	"github.com/capitlshop/storefront-backend/pkg/metrics"
	"github.com/capitlshop/storefront-backend/pkg/migrate"
	"github.com/capitlshop/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	productLookup, err := catalog.NewLookup(catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product lookup", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	emitter, err := notifications.NewEmitter(notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications emitter", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.NewRepository(gormDB), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cartManager, err := cart.NewManager(func(shopperID string) cart.Persistence {
		return cart.NewRedisPersistence(redisClient, shopperID, cfg.Cart.PersistTTL)
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartManager, productLookup, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	defer cartService.Close()

	checkoutManager, err := checkout.NewManager(func(ctx context.Context, shopperID string) (checkout.CartStore, error) {
		return cartManager.StoreFor(ctx, shopperID)
	}, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout manager", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:               cfg,
			Logger:               logg,
			Metrics:              httpMetrics,
			MetricsHandle:        promhttp.Handler(),
			DBPinger:             dbClient,
			CachePinger:          redisClient,
			AuthService:          authService,
			CatalogService:       catalogService,
			CartService:          cartService,
			CheckoutManager:      checkoutManager,
			NotificationsService: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
