package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/vendorverse-backend/api/routes"
	"github.com/angelmondragon/vendorverse-backend/internal/auth"
	"github.com/angelmondragon/vendorverse-backend/internal/cart"
	"github.com/angelmondragon/vendorverse-backend/internal/catalog"
	"github.com/angelmondragon/vendorverse-backend/internal/checkout"
	"github.com/angelmondragon/vendorverse-backend/internal/onboarding"
	"github.com/angelmondragon/vendorverse-backend/internal/products"
	"github.com/angelmondragon/vendorverse-backend/internal/stores"
	"github.com/angelmondragon/vendorverse-backend/internal/suppliers"
	"github.com/angelmondragon/vendorverse-backend/internal/users"
	"github.com/angelmondragon/vendorverse-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorverse-backend/pkg/changefeed"
	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/db"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/metrics"
	"github.com/angelmondragon/vendorverse-backend/pkg/migrate"
	"github.com/angelmondragon/vendorverse-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	feed, closeFeed, err := newChangeFeed(cfg, redisClient)
	requireResource(ctx, logg, "change feed", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)
	syncMetrics := metrics.NewCatalogSyncMetrics(reg)

	storeService, err := stores.NewService(stores.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "store service", err)

	profileService, err := suppliers.NewService(suppliers.NewRepository(dbClient.DB()), storeService)
	requireResource(ctx, logg, "supplier profile service", err)

	gate, err := onboarding.NewGate(storeService, profileService)
	requireResource(ctx, logg, "onboarding gate", err)

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, gate, feed, logg)
	requireResource(ctx, logg, "product service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	catalogSync, err := catalog.NewSync(productRepo, feed, catalog.OptionsFromConfig(cfg.Catalog, syncMetrics), logg)
	requireResource(ctx, logg, "catalog sync", err)
	requireResource(ctx, logg, "catalog sync start", catalogSync.Start(ctx))

	views := catalog.NewViews(catalogSync, cfg.Catalog.SearchDebounce, syncMetrics)

	carts := cart.NewRegistry(cart.PolicyFromFlag(cfg.FeatureFlags.CartMergeDuplicates))
	stopCartListener := carts.Listen(authService)
	stopViewListener := authService.OnAuthChange(func(event auth.Event) {
		if event.Type == auth.EventSignedOut {
			views.CloseOwnedBy(event.UserID)
		}
	})

	cartService, err := cart.NewService(carts, catalogSync)
	requireResource(ctx, logg, "cart service", err)

	checkoutService, err := checkout.NewService(catalogSync, cartService, cfg.Checkout.ClearCartOnConfirm, logg)
	requireResource(ctx, logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	// No WriteTimeout: catalog streams stay open and lift their own deadline.
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Gatherer:    reg,
			HTTPMetrics: httpMetrics,
			Auth:        authService,
			Catalog:     catalogSync,
			Views:       views,
			Cart:        cartService,
			Checkout:    checkoutService,
			Onboarding:  gate,
			Products:    productService,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopCartListener()
	stopViewListener()

	// Views end their streams first so Shutdown is not held by open SSE
	// connections.
	views.CloseAll()
	shutdownErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		catalogSync.Close(),
		closeFeed(),
		redisClient.Close(),
		dbClient.Close(),
	)
	if shutdownErr != nil {
		logg.Error(serverCtx, "errors during shutdown", shutdownErr)
		os.Exit(1)
	}
	logg.Info(serverCtx, "api server stopped")
}

// newChangeFeed picks the product change transport. The memory feed only
// reaches views in this process.
func newChangeFeed(cfg *config.Config, client *redis.Client) (changefeed.Feed, func() error, error) {
	if cfg.FeatureFlags.UseMemoryChangeFeed() {
		feed := changefeed.NewMemoryFeed()
		return feed, feed.Close, nil
	}
	feed, err := changefeed.NewRedisFeed(client)
	if err != nil {
		return nil, nil, err
	}
	return feed, func() error { return nil }, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
