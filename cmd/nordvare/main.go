package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nordvare/nordvare/internal/app"
	"github.com/nordvare/nordvare/internal/auth"
	"github.com/nordvare/nordvare/internal/cart"
	"github.com/nordvare/nordvare/internal/catalog/categories"
	"github.com/nordvare/nordvare/internal/catalog/products"
	"github.com/nordvare/nordvare/internal/contact"
	"github.com/nordvare/nordvare/internal/dashboard"
	"github.com/nordvare/nordvare/internal/observability"
	"github.com/nordvare/nordvare/internal/orders"
	"github.com/nordvare/nordvare/internal/pages"
	"github.com/nordvare/nordvare/internal/platform/cache"
	"github.com/nordvare/nordvare/internal/platform/db"
	"github.com/nordvare/nordvare/internal/shared"
	"github.com/nordvare/nordvare/internal/storage"
	"github.com/nordvare/nordvare/internal/translate"
	"github.com/nordvare/nordvare/internal/users"
	"github.com/nordvare/nordvare/internal/visibility"
	"github.com/nordvare/nordvare/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "nordvare_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)
	authMw := auth.Middleware{Logger: logger}

	auditLogger := shared.NewAuditLogger(dbpool)

	visibilityRepo := visibility.NewRepository(dbpool)
	visibilityService := visibility.NewService(visibilityRepo, logger)
	visibilityService.WithAudit(auditLogger)
	visibilityHandler := visibility.NewHandler(logger, visibilityService)

	categoriesService := categories.NewService(categories.NewRepository(dbpool))
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	productsService := products.NewService(products.NewRepository(dbpool), visibilityService)
	productsHandler := products.NewHandler(logger, productsService)

	cartStore := cart.NewStore(redisClient)
	cartHandler := cart.NewHandler(logger, cartStore, productsService, cfg.IsProduction())

	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	ordersService := orders.NewService(orders.NewRepository(dbpool), cartStore, mailClient, idempotencyStore, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersService.WithAudit(auditLogger)
	usersHandler := users.NewHandler(logger, usersService)
	pagesHandler := pages.NewHandler(logger, pages.NewService(pages.NewRepository(dbpool)))
	contactHandler := contact.NewHandler(logger, mailClient, cfg.ShopEmail)
	dashboardHandler := dashboard.NewHandler(logger, dashboard.NewService(dbpool))

	uploadHandler := storage.NewHandler(logger, storage.NewClient(cfg.StorageURL))
	translateHandler := translate.NewHandler(logger, translate.NewClient(cfg.TranslateURL))

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthMw:            authMw,
		AuthHandler:       authHandler,
		ProductsHandler:   productsHandler,
		CategoriesHandler: categoriesHandler,
		CartHandler:       cartHandler,
		OrdersHandler:     ordersHandler,
		VisibilityHandler: visibilityHandler,
		UsersHandler:      usersHandler,
		PagesHandler:      pagesHandler,
		ContactHandler:    contactHandler,
		DashboardHandler:  dashboardHandler,
		UploadHandler:     uploadHandler,
		TranslateHandler:  translateHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
