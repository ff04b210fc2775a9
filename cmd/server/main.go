package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	hrapp "github.com/shopdesk/backend/internal/application/hr"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	messagingapp "github.com/shopdesk/backend/internal/application/messaging"
	"github.com/shopdesk/backend/internal/application/notification"
	partnerapp "github.com/shopdesk/backend/internal/application/partner"
	printingapp "github.com/shopdesk/backend/internal/application/printing"
	reportapp "github.com/shopdesk/backend/internal/application/report"
	tradeapp "github.com/shopdesk/backend/internal/application/trade"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/email"
	"github.com/shopdesk/backend/internal/infrastructure/event"
	"github.com/shopdesk/backend/internal/infrastructure/export"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ShopDesk API
//	@version		1.0
//	@description	Retail point-of-sale and back-office API

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry first so the bridged logger reaches the collector
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, zapcore.InfoLevel)
	metrics := telemetry.NewMetrics()

	log.Info("Starting ShopDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database with GORM logging through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.SlowQuery))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbInst, err := telemetry.NewDBInstrumentation(providers.Meter("shopdesk/db"), cfg.Telemetry.SlowQuery, log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := dbInst.Register(db.DB, providers.TracingEnabled() && cfg.Telemetry.DBTraceEnabled); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Redis is optional; without it tokens, presence and idempotency keys
	// live in process memory
	stores := newStores(ctx, cfg, log)
	defer stores.close(log)

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	departmentRepo := persistence.NewGormDepartmentRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	requestRepo := persistence.NewGormPurchaseRequestRepository(db.DB)
	mpesaRepo := persistence.NewGormMpesaRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)

	// Documents: templates, headless Chrome, archive, mail, spreadsheets
	loc := cfg.Location()
	templates, err := printing.NewTemplateEngine(cfg.App.Currency, loc)
	if err != nil {
		log.Fatal("Failed to load document templates", zap.Error(err))
	}
	pdfRenderer := printing.NewChromedpRenderer(cfg.Chrome, log)
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	archive, err := storage.NewArchive(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document archive", zap.Error(err))
	}
	documents := printingapp.NewDocumentService(templates, pdfRenderer, printing.StoreInfo{
		Name:    cfg.Sales.StoreName,
		Address: cfg.Sales.StoreAddress,
		Phone:   cfg.Sales.StorePhone,
	}, log)
	mailer := email.NewSender(cfg.SMTP, log)
	notifier := notification.NewService(mailer, documents, archive, metrics, log)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(notification.NewPurchaseRequestHandler(notifier, requestRepo, saleRepo))

	// Application services
	authService := identityapp.NewAuthService(userRepo, stores.jwt, stores.blacklist, log)
	userService := identityapp.NewUserService(userRepo, stores.presence, notifier, stores.blacklist,
		identityapp.UserServiceConfig{
			OnlineThreshold: cfg.Messaging.OnlineThreshold,
			SessionTTL:      cfg.JWT.RefreshTokenExpiration,
		}, log)
	departmentService := identityapp.NewDepartmentService(departmentRepo, userRepo, log)
	employeeService := hrapp.NewEmployeeService(txScope, userRepo, employeeRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	productService := catalogapp.NewProductService(txScope, productRepo, categoryRepo, supplierRepo, movementRepo,
		eventBus, templates, metrics, catalogapp.ProductServiceConfig{
			StoreName: cfg.Sales.StoreName,
		}, log)
	supplierService := partnerapp.NewSupplierService(txScope, supplierRepo, metrics, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	cartService := partnerapp.NewCartService(customerRepo, cartRepo, wishlistRepo, productRepo, log)
	saleService := tradeapp.NewSaleService(txScope, saleRepo, userRepo, customerRepo, documents,
		eventBus, metrics, log)
	requestService := tradeapp.NewPurchaseRequestService(txScope, requestRepo, customerRepo,
		eventBus, metrics, log)
	mpesaService := tradeapp.NewMpesaService(mpesaRepo, saleRepo, metrics, log)
	messageService := messagingapp.NewService(messageRepo, userRepo, stores.presence,
		messagingapp.Config{OnlineThreshold: cfg.Messaging.OnlineThreshold}, metrics, log)
	reportService := reportapp.NewReportService(reportapp.Repositories{
		Sales:            saleRepo,
		PurchaseRequests: requestRepo,
		Products:         productRepo,
		Categories:       categoryRepo,
		Suppliers:        supplierRepo,
		Employees:        employeeRepo,
		Users:            userRepo,
		Messages:         messageRepo,
	}, loc, log)
	exportService := reportapp.NewExportService(reportService, documents,
		export.NewExcelExporter(loc), archive, metrics, log)

	// HTTP handlers
	handlers := router.Handlers{
		Auth:            handler.NewAuthHandler(authService),
		User:            handler.NewUserHandler(userService),
		Department:      handler.NewDepartmentHandler(departmentService),
		Employee:        handler.NewEmployeeHandler(employeeService),
		Category:        handler.NewCategoryHandler(categoryService),
		Product:         handler.NewProductHandler(productService),
		Supplier:        handler.NewSupplierHandler(supplierService),
		Customer:        handler.NewCustomerHandler(customerService),
		Cart:            handler.NewCartHandler(cartService),
		Sale:            handler.NewSaleHandler(saleService),
		PurchaseRequest: handler.NewPurchaseRequestHandler(requestService),
		Mpesa:           handler.NewMpesaHandler(mpesaService, cfg.Mpesa),
		Message:         handler.NewMessageHandler(messageService),
		Report:          handler.NewReportHandler(reportService, exportService),
		System:          handler.NewSystemHandler(cfg.App.Name, version, stores.healthChecks(db)),
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Request ID first so every log line and error body carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.TracingEnabled(),
	}))
	engine.Use(middleware.HTTPMetrics(metrics, "/health", "/metrics"))
	engine.Use(middleware.Secure(cfg.IsProduction()))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		global := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, global)
		engine.Use(middleware.RateLimit(global))
	}
	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	callbackLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	limiters = append(limiters, authLimiter, callbackLimiter)
	defer func() {
		for _, l := range limiters {
			l.Stop()
		}
	}()

	router.Mount(engine, handlers, router.Guards{
		Authenticate: []gin.HandlerFunc{
			middleware.JWTAuth(middleware.JWTMiddlewareConfig{
				JWTService:     stores.jwt,
				TokenBlacklist: stores.blacklist,
				Logger:         log,
			}),
			middleware.SpanAttributes(),
			middleware.Presence(userService),
		},
		AuthLimit:     middleware.RateLimit(authLimiter),
		CallbackLimit: middleware.RateLimit(callbackLimiter),
		Idempotent:    middleware.Idempotency(stores.idempotency, cfg.HTTP.IdempotencyTTL, log),
		Logger:        log,
	}, metrics.Handler())

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// stateStores holds the state shared between requests: token revocation,
// presence and idempotency keys. Redis backs all three when configured.
type stateStores struct {
	jwt         *auth.JWTService
	redis       *redis.Client
	blacklist   auth.TokenBlacklist
	presence    identity.PresenceStore
	idempotency shared.IdempotencyStore
	closers     []func() error
}

func newStores(ctx context.Context, cfg *config.Config, log *zap.Logger) *stateStores {
	s := &stateStores{jwt: auth.NewJWTService(cfg.JWT)}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		s.redis = client
		s.blacklist = auth.NewRedisTokenBlacklist(client)
		s.presence = cache.NewRedisPresenceStore(client, cfg.Messaging.PresenceTTL)
		s.idempotency = cache.NewRedisIdempotencyStore(client)
		s.closers = append(s.closers, client.Close)
		return s
	}

	log.Warn("Redis not configured, using in-memory session and presence stores")
	s.blacklist = auth.NewInMemoryTokenBlacklist()
	s.presence = cache.NewInMemoryPresenceStore()
	keys := cache.NewInMemoryIdempotencyStore()
	s.idempotency = keys
	s.closers = append(s.closers, keys.Close)
	return s
}

func (s *stateStores) healthChecks(db *persistence.Database) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if s.redis != nil {
		client := s.redis
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

func (s *stateStores) close(log *zap.Logger) {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}
}
