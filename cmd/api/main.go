package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/cache"
	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/database"
	"github.com/GTDGit/bakery_api/internal/events"
	"github.com/GTDGit/bakery_api/internal/handler"
	"github.com/GTDGit/bakery_api/internal/middleware"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/sse"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/worker"
)

// main is the application entrypoint for the bakery storefront and back-office API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting bakery api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	settingsCache := cache.NewSettingsCache(redisClient, cfg.Store.SettingsCacheTTL)
	viewCounter := cache.NewViewCounter(redisClient)

	// 3c. Event publisher; disabled without brokers
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			log.Warn().Err(err).Msg("kafka unavailable - domain events will not be published")
		} else {
			publisher = kp
			log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka publisher ready")
		}
	}
	defer publisher.Close()

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	customRequestRepo := repository.NewCustomRequestRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	pincodeRepo := repository.NewPincodeRequestRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)

	// 5. Initialize services
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)
	jwtManager := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	settingsSvc, err := service.NewSettingsService(settingsRepo, settingsCache, cfg.Store)
	if err != nil {
		log.Error().Err(err).Msg("invalid store defaults")
		fmt.Fprintf(os.Stderr, "invalid store defaults: %v\n", err)
		os.Exit(1)
	}
	fanoutSvc := service.NewFanoutService(outboxRepo, notificationRepo, publisher)
	productSvc := service.NewProductService(productRepo, viewCounter, settingsSvc)
	importSvc := service.NewImportService(productRepo, fanoutSvc, settingsSvc, notifier, cfg.Import)
	orderSvc := service.NewOrderService(orderRepo, productRepo, promoRepo, notificationRepo, settingsSvc, publisher, notifier)
	customRequestSvc := service.NewCustomRequestService(customRequestRepo, notifier)
	promoSvc := service.NewPromoService(promoRepo)
	userSvc := service.NewUserService(userRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	pincodeSvc := service.NewPincodeService(pincodeRepo)
	newsletterSvc := service.NewNewsletterService(newsletterRepo)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, jwtManager)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := adminAuthSvc.EnsureAdmin(bootCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Error().Err(err).Msg("admin bootstrap failed")
	}
	imageStorage, err := service.NewImageStorage(bootCtx, cfg.S3)
	bootCancel()
	if err != nil {
		log.Error().Err(err).Msg("S3 initialization failed")
		fmt.Fprintf(os.Stderr, "S3 initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:            handler.NewHealthHandler(db, redisClient),
		Product:           handler.NewProductHandler(productSvc),
		ProductManagement: handler.NewProductManagementHandler(productSvc),
		Import:            handler.NewImportHandler(importSvc, cfg.Import.MaxFileBytes),
		Upload:            handler.NewUploadHandler(imageStorage),
		Order:             handler.NewOrderHandler(orderSvc),
		AdminOrder:        handler.NewAdminOrderHandler(orderSvc),
		CustomRequest:     handler.NewCustomRequestHandler(customRequestSvc),
		Promo:             handler.NewPromoHandler(promoSvc),
		Settings:          handler.NewSettingsHandler(settingsSvc),
		Me:                handler.NewMeHandler(userSvc, notificationSvc),
		Community:         handler.NewCommunityHandler(pincodeSvc, newsletterSvc, userSvc),
		SSE:               handler.NewSSEHandler(hub),
	}

	// 7. Initialize middleware
	authLimiter := middleware.NewInvalidAuthRateLimiter()
	handlers.Auth = handler.NewAuthHandler(adminAuthSvc, authLimiter)
	jwtMw := middleware.NewJWTMiddleware(jwtManager, authLimiter)
	publicLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.PublicPerMinute, cfg.RateLimit.PublicBurst)

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	setupRoutes(router, handlers, jwtMw, publicLimiter)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewFanoutWorker(fanoutSvc, cfg.Worker.FanoutInterval, cfg.Worker.FanoutBatchSize).Start(ctx)
	go worker.NewViewFlushWorker(viewCounter, productRepo, cfg.Worker.ViewFlushInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health            *handler.HealthHandler
	Product           *handler.ProductHandler
	ProductManagement *handler.ProductManagementHandler
	Import            *handler.ImportHandler
	Upload            *handler.UploadHandler
	Order             *handler.OrderHandler
	AdminOrder        *handler.AdminOrderHandler
	CustomRequest     *handler.CustomRequestHandler
	Promo             *handler.PromoHandler
	Settings          *handler.SettingsHandler
	Me                *handler.MeHandler
	Community         *handler.CommunityHandler
	Auth              *handler.AuthHandler
	SSE               *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, publicLimiter *middleware.IPRateLimiter) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Storefront routes (public)
	v1 := router.Group("/v1")
	v1.Use(middleware.OptionalUser())
	{
		v1.GET("/health", handlers.Health.GetHealth)
		v1.GET("/settings", handlers.Settings.Get)

		v1.GET("/products", handlers.Product.GetProducts)
		v1.GET("/products/categories", handlers.Product.GetCategories)
		v1.GET("/products/:id", handlers.Product.GetProduct)
		v1.GET("/delivery/check", handlers.Product.CheckDelivery)

		v1.POST("/orders/quote", handlers.Order.Quote)
		v1.GET("/orders/:ref", handlers.Order.Track)
		v1.POST("/promo/validate", handlers.Promo.Validate)

		// Public writes are throttled per IP
		writes := v1.Group("")
		writes.Use(publicLimiter.Handle())
		{
			writes.POST("/orders", handlers.Order.Submit)
			writes.POST("/custom-requests", handlers.CustomRequest.Submit)
			writes.POST("/pincode-requests", handlers.Community.RequestPincode)
			writes.POST("/newsletter", handlers.Community.Subscribe)
		}
	}

	// Customer routes (identity from X-User-Id)
	me := router.Group("/v1/me")
	me.Use(middleware.RequireUser())
	{
		me.PUT("/profile", handlers.Me.SaveProfile)
		me.GET("/orders", handlers.Order.ListMine)
		me.GET("/notifications", handlers.Me.Notifications)
		me.POST("/notifications/read-all", handlers.Me.MarkAllRead)
		me.POST("/notifications/:id/read", handlers.Me.MarkRead)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Product Management
		admin.GET("/products", handlers.ProductManagement.ListProducts)
		admin.POST("/products", handlers.ProductManagement.CreateProduct)
		admin.POST("/products/bulk-delete", handlers.ProductManagement.BulkDelete)
		admin.POST("/products/import", handlers.Import.ImportProducts)
		admin.GET("/products/import/template", handlers.Import.DownloadTemplate)
		admin.GET("/products/:id", handlers.ProductManagement.GetProduct)
		admin.PUT("/products/:id", handlers.ProductManagement.UpdateProduct)
		admin.DELETE("/products/:id", handlers.ProductManagement.DeleteProduct)
		admin.POST("/products/:id/duplicate", handlers.ProductManagement.DuplicateProduct)
		admin.POST("/products/:id/featured", handlers.ProductManagement.ToggleFeatured)
		admin.POST("/uploads/images", handlers.Upload.UploadImage)

		// Order Management
		admin.GET("/orders", handlers.AdminOrder.ListOrders)
		admin.GET("/orders/stats", handlers.AdminOrder.Stats)
		admin.GET("/orders/:id", handlers.AdminOrder.GetOrder)
		admin.PUT("/orders/:id/status", handlers.AdminOrder.UpdateStatus)
		admin.PUT("/orders/:id/tracking", handlers.AdminOrder.UpdateTracking)

		// Custom cake requests
		admin.GET("/custom-requests", handlers.CustomRequest.List)
		admin.GET("/custom-requests/:id", handlers.CustomRequest.Get)
		admin.PUT("/custom-requests/:id", handlers.CustomRequest.Review)

		// Promo codes
		admin.GET("/promo-codes", handlers.Promo.List)
		admin.POST("/promo-codes", handlers.Promo.Create)
		admin.DELETE("/promo-codes/:code", handlers.Promo.Deactivate)

		// Store settings
		admin.GET("/settings", handlers.Settings.Get)
		admin.PUT("/settings", handlers.Settings.Update)

		// Customers and community
		admin.GET("/users", handlers.Community.ListUsers)
		admin.GET("/pincode-requests", handlers.Community.ListPincodeRequests)
		admin.GET("/pincode-requests/demand", handlers.Community.PincodeDemand)
		admin.GET("/newsletter", handlers.Community.ListSubscribers)

		// Live back-office notifications
		admin.GET("/sse", handlers.SSE.Stream)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
