package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trendora/trendora-backend/api/routes"
	"github.com/trendora/trendora-backend/internal/auth"
	"github.com/trendora/trendora-backend/internal/banners"
	"github.com/trendora/trendora-backend/internal/cart"
	"github.com/trendora/trendora-backend/internal/categories"
	checkoutsvc "github.com/trendora/trendora-backend/internal/checkout"
	"github.com/trendora/trendora-backend/internal/contact"
	"github.com/trendora/trendora-backend/internal/orders"
	"github.com/trendora/trendora-backend/internal/products"
	"github.com/trendora/trendora-backend/internal/reports"
	"github.com/trendora/trendora-backend/internal/settings"
	"github.com/trendora/trendora-backend/internal/users"
	"github.com/trendora/trendora-backend/internal/wishlist"
	"github.com/trendora/trendora-backend/pkg/auth/session"
	"github.com/trendora/trendora-backend/pkg/config"
	"github.com/trendora/trendora-backend/pkg/db"
	"github.com/trendora/trendora-backend/pkg/kvcache"
	"github.com/trendora/trendora-backend/pkg/logger"
	"github.com/trendora/trendora-backend/pkg/metrics"
	"github.com/trendora/trendora-backend/pkg/migrate"
	"github.com/trendora/trendora-backend/pkg/redis"
	"github.com/trendora/trendora-backend/pkg/steadfast"
)

const shutdownGrace = 15 * time.Second

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cache := kvcache.New(redisClient, logg, kvcache.Options{TTL: 10 * time.Minute})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	categoriesRepo := categories.NewRepository(gormDB)
	cartsRepo := cart.NewRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)
	bannersRepo := banners.NewRepository(gormDB)
	contactRepo := contact.NewRepository(gormDB)
	reportsRepo := reports.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordCfg:    cfg.Password,
	})
	exitOnError(logg, "auth service", err)

	usersService, err := users.NewService(users.ServiceParams{
		Repo:        usersRepo,
		PasswordCfg: cfg.Password,
	})
	exitOnError(logg, "users service", err)

	productsService, err := products.NewService(products.ServiceParams{Repo: productsRepo})
	exitOnError(logg, "products service", err)

	categoriesService, err := categories.NewService(categories.ServiceParams{Repo: categoriesRepo})
	exitOnError(logg, "categories service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cartsRepo,
		Catalog: productsRepo,
		Flags:   cache,
	})
	exitOnError(logg, "cart service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:    wishlistRepo,
		Catalog: productsRepo,
	})
	exitOnError(logg, "wishlist service", err)

	settingsService, err := settings.NewService(settings.ServiceParams{
		Repo:  settingsRepo,
		Cache: cache,
	})
	exitOnError(logg, "settings service", err)

	ordersParams := orders.ServiceParams{Repo: ordersRepo, Logger: logg}
	if cfg.Steadfast.APIKey != "" && cfg.Steadfast.SecretKey != "" {
		courier, err := steadfast.NewClient(cfg.Steadfast, logg)
		exitOnError(logg, "steadfast client", err)
		ordersParams.Courier = courier
	} else {
		logg.Warn(context.Background(), "steadfast credentials absent, courier booking disabled")
	}
	ordersService, err := orders.NewService(ordersParams)
	exitOnError(logg, "orders service", err)

	checkoutStore := checkoutsvc.NewStore(gormDB, cartsRepo, productsRepo, ordersRepo)
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:  cartsRepo,
		Store:  checkoutStore,
		Rates:  settingsService,
		Logger: logg,
	})
	exitOnError(logg, "checkout service", err)

	bannersService, err := banners.NewService(banners.ServiceParams{Repo: bannersRepo})
	exitOnError(logg, "banners service", err)

	contactService, err := contact.NewService(contact.ServiceParams{Repo: contactRepo})
	exitOnError(logg, "contact service", err)

	reportsService, err := reports.NewService(reports.ServiceParams{Repo: reportsRepo})
	exitOnError(logg, "reports service", err)

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		DB:             dbClient,
		Redis:          redisClient,
		SessionChecker: sessionManager,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:           authService,
		Users:          usersService,
		Products:       productsService,
		Categories:     categoriesService,
		Cart:           cartService,
		Wishlist:       wishlistService,
		Checkout:       checkoutService,
		Orders:         ordersService,
		Settings:       settingsService,
		Banners:        bannersService,
		Contact:        contactService,
		Reports:        reportsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
