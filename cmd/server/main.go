package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accessapp "github.com/nilmarket/backend/internal/application/access"
	billingapp "github.com/nilmarket/backend/internal/application/billing"
	bundleapp "github.com/nilmarket/backend/internal/application/bundle"
	campaignapp "github.com/nilmarket/backend/internal/application/campaign"
	eventapp "github.com/nilmarket/backend/internal/application/event"
	identityapp "github.com/nilmarket/backend/internal/application/identity"
	matchingapp "github.com/nilmarket/backend/internal/application/matching"
	profileapp "github.com/nilmarket/backend/internal/application/profile"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/infrastructure/auth"
	billinginfra "github.com/nilmarket/backend/internal/infrastructure/billing"
	"github.com/nilmarket/backend/internal/infrastructure/cache"
	"github.com/nilmarket/backend/internal/infrastructure/config"
	"github.com/nilmarket/backend/internal/infrastructure/event"
	"github.com/nilmarket/backend/internal/infrastructure/logger"
	"github.com/nilmarket/backend/internal/infrastructure/matchapi"
	"github.com/nilmarket/backend/internal/infrastructure/messaging"
	"github.com/nilmarket/backend/internal/infrastructure/persistence"
	tenantscope "github.com/nilmarket/backend/internal/infrastructure/persistence/tenant"
	"github.com/nilmarket/backend/internal/infrastructure/scheduler"
	"github.com/nilmarket/backend/internal/infrastructure/storage"
	"github.com/nilmarket/backend/internal/infrastructure/telemetry"
	"github.com/nilmarket/backend/internal/interfaces/http/handler"
	"github.com/nilmarket/backend/internal/interfaces/http/middleware"
	"github.com/nilmarket/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/nilmarket/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			NIL Marketplace API
//	@version		1.0
//	@description	Multi-tenant NIL sponsorship marketplace backend: athlete and business profiles, campaign wizard, bundles and offers, athlete matching, and subscription billing.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/nilmarket/backend
//	@contact.email	support@nilmarket.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting NIL Marketplace Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Second line of defense against cross-tenant reads; repositories still
	// filter tenant_id explicitly
	tenantscope.EnableAutoTenantFilter(db.DB, false)

	// OpenTelemetry providers; no-op when telemetry is disabled
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Business metrics with periodic bundle and offer gauge collection
	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:               meterProvider.Meter("nilmarket-backend"),
			Logger:              log,
			MarketplaceProvider: telemetry.NewGormMarketplaceMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(context.Background(), telemetry.NewGormTenantProvider(db.DB), 5*time.Minute)
		defer businessMetrics.Stop()
	}

	// Continuous profiling; no-op when disabled
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiling.Enabled,
		ServerAddress:       cfg.Profiling.ServerAddress,
		ApplicationName:     cfg.Profiling.ApplicationName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Shared Redis client for usage metering, match result caching and idempotency
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	// Initialize repositories
	athleteRepo := persistence.NewGormAthleteProfileRepository(db.DB)
	businessRepo := persistence.NewGormBusinessProfileRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	bundleRepo := persistence.NewGormBundleRepository(db.DB)
	matchRunRepo := persistence.NewGormMatchRunRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	planFeatureRepo := persistence.NewGormPlanFeatureRepository(db.DB)
	quotaRepo := persistence.NewUsageQuotaRepository(db.DB)
	usageRecordRepo := persistence.NewUsageRecordRepository(db.DB)
	usageHistoryRepo := persistence.NewUsageHistoryRepository(db.DB)
	usageMeterRepo := persistence.NewUsageMeterRepository(db.DB, redisClient)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that need transactional event publishing
	athleteRepo.SetOutboxEventSaver(outboxPublisher)
	businessRepo.SetOutboxEventSaver(outboxPublisher)
	campaignRepo.SetOutboxEventSaver(outboxPublisher)
	bundleRepo.SetOutboxEventSaver(outboxPublisher)
	matchRunRepo.SetOutboxEventSaver(outboxPublisher)
	subscriptionRepo.SetOutboxEventSaver(outboxPublisher)

	// Object storage for media kits; falls back to the in-memory stub when no bucket is configured
	var objectStorage profileapp.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("No storage bucket configured, using stub object storage")
	}

	// Stripe billing gateway
	stripeConfig := &billinginfra.StripeConfig{
		SecretKey:              cfg.Stripe.SecretKey,
		PublishableKey:         cfg.Stripe.PublishableKey,
		WebhookSecret:          cfg.Stripe.WebhookSecret,
		IsTestMode:             cfg.Stripe.IsTestMode,
		DefaultCurrency:        cfg.Stripe.DefaultCurrency,
		SuccessURL:             cfg.Stripe.SuccessURL,
		CancelURL:              cfg.Stripe.CancelURL,
		BillingPortalReturnURL: cfg.Stripe.BillingPortalReturnURL,
		PriceIDs:               cfg.Stripe.PriceIDs,
	}
	stripeAdapter, err := billinginfra.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
	}

	// Initialize application services
	athleteService := profileapp.NewAthleteService(athleteRepo, tenantRepo, objectStorage, log)
	businessService := profileapp.NewBusinessService(businessRepo, tenantRepo, objectStorage, log)
	campaignService := campaignapp.NewCampaignService(campaignRepo, businessRepo, tenantRepo, log)
	bundleService := bundleapp.NewBundleService(bundleRepo, campaignRepo, businessRepo, athleteRepo, tenantRepo, log)
	matchService := matchingapp.NewMatchService(matchRunRepo, campaignRepo, businessRepo, athleteRepo, tenantRepo, log)
	accessService := accessapp.NewAccessService(athleteRepo, businessRepo, tenantRepo, log)
	subscriptionService := billingapp.NewSubscriptionService(stripeAdapter, stripeConfig, subscriptionRepo, tenantRepo, log)

	// Identity services (auth, user, role, tenant)
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewRedisTokenBlacklistWithClient(redisClient)
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	authService.SetTokenBlacklist(tokenBlacklist)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, userRepo, log)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	// External matching API client; nil means the local scorer handles all runs
	if matchClient := matchapi.NewClient(cfg.Matching); matchClient != nil {
		matchService.SetClient(matchClient)
		log.Info("Matching API client initialized", zap.String("base_url", cfg.Matching.BaseURL))
	} else {
		log.Info("No matching API configured, match runs use the local scorer")
	}
	matchService.SetCache(cache.NewRedisMatchResultCache(redisClient), cfg.Matching.CacheTTL)

	// Bundle creation idempotency keys live in Redis
	bundleService.SetIdempotencyStore(cache.NewRedisIdempotencyStoreWithClient(redisClient, "bundle:idempotency:"))

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Subscription lifecycle -> tenant plan sync
	planSyncHandler := identityapp.NewSubscriptionPlanSyncHandler(tenantService, log)
	eventBus.Subscribe(planSyncHandler)

	// Bundle dispatch requested -> RabbitMQ dispatch queue
	if cfg.Messaging.URL != "" {
		dispatchPublisher, err := messaging.NewDispatchPublisher(cfg.Messaging, log)
		if err != nil {
			log.Fatal("Failed to initialize dispatch publisher", zap.Error(err))
		}
		defer func() {
			if err := dispatchPublisher.Close(); err != nil {
				log.Error("Error closing dispatch publisher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(dispatchPublisher)
		log.Info("Dispatch publisher registered",
			zap.String("exchange", cfg.Messaging.Exchange),
			zap.Strings("events", dispatchPublisher.EventTypes()),
		)
	} else {
		log.Warn("No messaging URL configured, bundle dispatch events stay on the in-process bus")
	}

	log.Info("Event handlers registered",
		zap.Strings("plan_sync_events", planSyncHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_events table and publishes them to the event bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Inject event bus into services that publish events
	athleteService.SetEventPublisher(eventBus)
	businessService.SetEventPublisher(eventBus)
	campaignService.SetEventPublisher(eventBus)
	bundleService.SetEventPublisher(eventBus)
	matchService.SetEventPublisher(eventBus)
	subscriptionService.SetEventPublisher(eventBus)

	// Quota enforcement with Redis-backed usage meters
	quotaPublisher := event.NewBusQuotaEventPublisher(eventBus)
	quotaService := billingapp.NewQuotaService(
		quotaRepo, usageRecordRepo, usageMeterRepo, tenantRepo,
		quotaPublisher, log, billingapp.DefaultQuotaServiceConfig(),
	)
	campaignService.SetQuotaChecker(quotaService)
	bundleService.SetQuotaChecker(quotaService)
	matchService.SetQuotaChecker(quotaService)

	if businessMetrics != nil {
		campaignService.SetBusinessMetrics(businessMetrics)
		bundleService.SetBusinessMetrics(businessMetrics)
		matchService.SetBusinessMetrics(businessMetrics)
	}

	// Stripe webhook processing keeps subscriptions in sync with Stripe
	stripeWebhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config:           stripeConfig,
		TenantRepo:       tenantRepo,
		SubscriptionRepo: subscriptionRepo,
		EventBus:         eventBus,
		Logger:           log,
	})
	stripeWebhookService.SetIdempotencyStore(cache.NewRedisIdempotencyStoreWithClient(redisClient, "stripe:webhook:"))

	// Offer expiry scheduler (if enabled)
	if cfg.OfferExpiry.Enabled {
		expiryConfig := scheduler.DefaultOfferExpirySchedulerConfig()
		if cfg.OfferExpiry.CheckInterval > 0 {
			expiryConfig.CheckInterval = cfg.OfferExpiry.CheckInterval
		}
		if cfg.OfferExpiry.BatchSize > 0 {
			expiryConfig.BatchSize = cfg.OfferExpiry.BatchSize
		}
		offerExpiryScheduler := scheduler.NewOfferExpiryScheduler(bundleService, log, expiryConfig)
		if err := offerExpiryScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start offer expiry scheduler", zap.Error(err))
		}
		defer func() {
			if err := offerExpiryScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping offer expiry scheduler", zap.Error(err))
			}
		}()
		log.Info("Offer expiry scheduler started",
			zap.Duration("check_interval", expiryConfig.CheckInterval),
			zap.Int("batch_size", expiryConfig.BatchSize),
		)
	}

	// Daily usage snapshot scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		resourceCounter := persistence.NewGormResourceCounter(db.DB)
		snapshotService := billingapp.NewUsageSnapshotService(
			usageHistoryRepo, tenantRepo, resourceCounter, log,
			billingapp.DefaultUsageSnapshotServiceConfig(),
		)
		snapshotScheduler := scheduler.NewUsageSnapshotScheduler(
			snapshotService, log, scheduler.DefaultUsageSnapshotSchedulerConfig(),
		)
		if err := snapshotScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start usage snapshot scheduler", zap.Error(err))
		}
		defer func() {
			if err := snapshotScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping usage snapshot scheduler", zap.Error(err))
			}
		}()
		log.Info("Usage snapshot scheduler started")

		usageReportLogRepo := persistence.NewUsageReportLogRepository(db.DB)
		usageReportingService := billingapp.NewUsageReportingService(
			stripeAdapter, usageRecordRepo, usageReportLogRepo, subscriptionRepo, log,
			billingapp.DefaultUsageReportingConfig(),
		)
		usageReportingScheduler := scheduler.NewUsageReportingScheduler(
			usageReportingService, log, scheduler.DefaultUsageReportingSchedulerConfig(),
		)
		if err := usageReportingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start usage reporting scheduler", zap.Error(err))
		}
		defer func() {
			if err := usageReportingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping usage reporting scheduler", zap.Error(err))
			}
		}()
		log.Info("Usage reporting scheduler started")
	}

	// Initialize HTTP handlers
	athleteHandler := handler.NewAthleteProfileHandler(athleteService)
	businessHandler := handler.NewBusinessProfileHandler(businessService)
	campaignHandler := handler.NewCampaignHandler(campaignService)
	bundleHandler := handler.NewBundleHandler(bundleService)
	matchHandler := handler.NewMatchHandler(matchService)
	accessHandler := handler.NewAccessHandler(accessService, roleRepo)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	usageHandler := handler.NewUsageHandler(quotaService)
	stripeWebhookHandler := handler.NewStripeWebhookHandler(stripeWebhookService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	planFeatureHandler := handler.NewPlanFeatureHandler(tenantRepo, planFeatureRepo)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. Tracing/Metrics - OpenTelemetry instrumentation
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("nilmarket-backend"), cfg.Telemetry.Enabled))

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Pyroscope labels per request (controller, route, method, tenant)
	if cfg.Profiling.Enabled {
		engine.Use(middleware.Profiling())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint; gated by IP whitelist and optional auth
	// The default JWT config skips /swagger, so the guard gets its own instance
	// with no skip lists
	swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	}))
	engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stripe webhook endpoint (no authentication; verified by signature)
	stripeGroup := engine.Group("/api/v1/billing/stripe")
	stripeGroup.POST("/webhook", stripeWebhookHandler.HandleStripeWebhook)

	// Route access decisions work for both anonymous and authenticated callers,
	// so claims are extracted when present instead of being required
	accessGroup := engine.Group("/api/v1/access")
	accessGroup.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	accessGroup.POST("/route-decision", accessHandler.Decide)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/billing/stripe/webhook",
			"/api/v1/access",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant context from JWT claims (header fallback for service callers)
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths, jwtConfig.SkipPaths...)
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Data scope filters derived from role assignments
	dataScopeConfig := middleware.DefaultDataScopeConfig(roleRepo)
	dataScopeConfig.Logger = log
	r.Use(middleware.DataScopeMiddlewareWithConfig(dataScopeConfig))

	// Async API usage metering with batched writes
	usageTrackerConfig := middleware.DefaultUsageTrackerConfig()
	usageTrackerConfig.MeterProvider = meterProvider
	usageTrackerConfig.Logger = log
	usageTracker, err := middleware.NewUsageTracker(usageTrackerConfig, usageRecordRepo)
	if err != nil {
		log.Fatal("Failed to initialize usage tracker", zap.Error(err))
	}
	usageTracker.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := usageTracker.Stop(stopCtx); err != nil {
			log.Error("Error stopping usage tracker", zap.Error(err))
		}
	}()
	r.Use(middleware.TrackAPIUsage(usageTracker))

	// Route gates backed by the access decision table
	gateConfig := middleware.AccessGateConfig{
		Decider:  accessService,
		RoleRepo: roleRepo,
		Logger:   log,
	}
	businessGate := middleware.AccessGate(gateConfig, accessapp.DecideRequest{RequiredRoles: []string{"business"}})
	athleteGate := middleware.AccessGate(gateConfig, accessapp.DecideRequest{RequiredRoles: []string{"athlete"}})

	// Plan feature gate; scored matching is a paid-plan feature
	featureConfig := middleware.FeatureMiddlewareConfig{
		FeatureChecker:     planFeatureRepo,
		TenantPlanProvider: persistence.NewTenantPlanLookup(tenantRepo),
		Logger:             log,
	}
	proMatchingGate := middleware.RequireFeatureWithConfig(identity.FeatureProMatching, featureConfig)

	// Athlete profile routes
	athleteRoutes := router.NewDomainGroup("athlete-profiles", "/athlete-profiles")
	athleteRoutes.POST("", athleteHandler.Create)
	athleteRoutes.GET("", athleteHandler.List)
	athleteRoutes.GET("/me", athleteHandler.GetMine)
	athleteRoutes.PUT("/me/basics", athleteHandler.UpdateBasics)
	athleteRoutes.PUT("/me/bio", athleteHandler.UpdateBio)
	athleteRoutes.PUT("/me/content-tags", athleteHandler.SetContentTags)
	athleteRoutes.PUT("/me/social-accounts", athleteHandler.SetSocialAccounts)
	athleteRoutes.PUT("/me/compensation-floor", athleteHandler.SetCompensationFloor)
	athleteRoutes.POST("/me/submit", athleteHandler.Submit)
	athleteRoutes.POST("/me/media", athleteHandler.CreateMediaAsset)
	athleteRoutes.POST("/me/media/:assetId/confirm", athleteHandler.ConfirmMediaAsset)
	athleteRoutes.DELETE("/me/media/:assetId", athleteHandler.RemoveMediaAsset)
	athleteRoutes.GET("/:id", athleteHandler.Get)
	athleteRoutes.POST("/:id/approve", athleteHandler.Approve)
	athleteRoutes.POST("/:id/reject", athleteHandler.Reject)
	athleteRoutes.POST("/:id/suspend", athleteHandler.Suspend)
	athleteRoutes.POST("/:id/reinstate", athleteHandler.Reinstate)

	// Business profile routes
	businessRoutes := router.NewDomainGroup("business-profiles", "/business-profiles")
	businessRoutes.POST("", businessHandler.Create)
	businessRoutes.GET("", businessHandler.List)
	businessRoutes.GET("/me", businessHandler.GetMine)
	businessRoutes.PUT("/me/company", businessHandler.UpdateCompany)
	businessRoutes.PUT("/me/bio", businessHandler.UpdateBio)
	businessRoutes.PUT("/me/targeting", businessHandler.SetTargeting)
	businessRoutes.PUT("/me/campaign-goals", businessHandler.SetCampaignGoals)
	businessRoutes.PUT("/me/budget", businessHandler.SetBudgetBand)
	businessRoutes.POST("/me/submit", businessHandler.Submit)
	businessRoutes.POST("/me/media", businessHandler.CreateMediaAsset)
	businessRoutes.POST("/me/media/:assetId/confirm", businessHandler.ConfirmMediaAsset)
	businessRoutes.DELETE("/me/media/:assetId", businessHandler.RemoveMediaAsset)
	businessRoutes.GET("/:id", businessHandler.Get)
	businessRoutes.POST("/:id/approve", businessHandler.Approve)
	businessRoutes.POST("/:id/reject", businessHandler.Reject)
	businessRoutes.POST("/:id/suspend", businessHandler.Suspend)
	businessRoutes.POST("/:id/reinstate", businessHandler.Reinstate)

	// Campaign routes (wizard steps plus lifecycle); campaigns belong to businesses
	campaignRoutes := router.NewDomainGroup("campaigns", "/campaigns")
	campaignRoutes.Use(businessGate)
	campaignRoutes.POST("", campaignHandler.Create)
	campaignRoutes.GET("", campaignHandler.List)
	campaignRoutes.GET("/mine", campaignHandler.ListMine)
	campaignRoutes.GET("/:id", campaignHandler.Get)
	campaignRoutes.PUT("/:id/basics", campaignHandler.SaveBasics)
	campaignRoutes.PUT("/:id/audience", campaignHandler.SaveAudience)
	campaignRoutes.PUT("/:id/budget", campaignHandler.SaveBudget)
	campaignRoutes.POST("/:id/publish", campaignHandler.Publish)
	campaignRoutes.POST("/:id/pause", campaignHandler.Pause)
	campaignRoutes.POST("/:id/resume", campaignHandler.Resume)
	campaignRoutes.POST("/:id/complete", campaignHandler.Complete)
	campaignRoutes.POST("/:id/cancel", campaignHandler.Cancel)
	campaignRoutes.DELETE("/:id", campaignHandler.DeleteDraft)
	// Match runs scoped to a campaign
	campaignRoutes.GET("/:id/matches", matchHandler.ListByCampaign)
	campaignRoutes.GET("/:id/matches/latest", matchHandler.GetLatest)

	// Bundle routes
	bundleRoutes := router.NewDomainGroup("bundles", "/bundles")
	bundleRoutes.POST("", middleware.TrackBundleCreation(usageTracker), bundleHandler.Create)
	bundleRoutes.GET("", bundleHandler.List)
	bundleRoutes.GET("/pending-review", bundleHandler.ListPendingReview)
	bundleRoutes.GET("/:id", bundleHandler.Get)
	bundleRoutes.POST("/:id/submit", bundleHandler.Submit)
	bundleRoutes.POST("/:id/approve", bundleHandler.Approve)
	bundleRoutes.POST("/:id/reject", bundleHandler.Reject)

	// Offer routes; accept/decline are athlete actions, withdraw is the business side
	offerRoutes := router.NewDomainGroup("offers", "/offers")
	offerRoutes.GET("/mine", athleteGate, bundleHandler.ListMyOffers)
	offerRoutes.POST("/:id/accept", athleteGate, bundleHandler.AcceptOffer)
	offerRoutes.POST("/:id/decline", athleteGate, bundleHandler.DeclineOffer)
	offerRoutes.POST("/:id/withdraw", businessGate, bundleHandler.WithdrawOffer)

	// Matching routes
	matchRoutes := router.NewDomainGroup("matching", "/matches")
	matchRoutes.Use(businessGate)
	matchRoutes.POST("/run", proMatchingGate, middleware.TrackMatchRun(usageTracker), matchHandler.Run)
	matchRoutes.GET("/:id", matchHandler.Get)

	// Billing routes (plans, subscription lifecycle, quotas, usage)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/plans", subscriptionHandler.ListPlans)
	billingRoutes.POST("/subscription", subscriptionHandler.Subscribe)
	billingRoutes.GET("/subscription", subscriptionHandler.GetCurrent)
	billingRoutes.PUT("/subscription/plan", subscriptionHandler.ChangePlan)
	billingRoutes.POST("/subscription/cancel", subscriptionHandler.Cancel)
	billingRoutes.POST("/subscription/reactivate", subscriptionHandler.Reactivate)
	billingRoutes.GET("/quotas", usageHandler.GetQuotaStatus)
	billingRoutes.GET("/usage", usageHandler.GetUsageSummary)

	// Plan feature administration
	planRoutes := router.NewDomainGroup("plan-features", "/admin")
	planRoutes.Use(middleware.RequireResource("plan"))
	planRoutes.GET("/plans", planFeatureHandler.ListPlans)
	planRoutes.GET("/plans/:plan/features", planFeatureHandler.GetPlanFeatures)
	planRoutes.PUT("/plans/:plan/features", planFeatureHandler.UpdatePlanFeatures)

	// Feature visibility for the calling tenant
	tenantFeatureRoutes := router.NewDomainGroup("tenant-features", "/tenants")
	tenantFeatureRoutes.GET("/current/features", planFeatureHandler.GetCurrentTenantFeatures)

	// Identity domain (authentication, users, roles) - public routes
	// Credential endpoints get a tighter rate limit than the global one
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)

	// Identity domain - protected routes
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(middleware.RoutePermissionMiddleware(middleware.RoutePermissionConfig{
		Routes: []middleware.RoutePermission{
			{Method: "*", Path: "/api/v1/identity/users*", Permissions: []string{"user:manage"}},
			{Method: "*", Path: "/api/v1/identity/roles*", Permissions: []string{"role:manage"}},
			{Method: "*", Path: "/api/v1/identity/permissions", Permissions: []string{"role:manage"}},
			{Method: "*", Path: "/api/v1/identity/tenants*", Permissions: []string{"tenant:manage"}},
		},
		Logger: log,
	}))

	// Auth routes requiring authentication
	identityRoutes.POST("/auth/logout", authHandler.Logout)
	identityRoutes.GET("/auth/me", authHandler.GetCurrentUser)
	identityRoutes.PUT("/auth/password", authHandler.ChangePassword)

	// User management routes
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/stats/count", userHandler.Count)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)
	identityRoutes.PUT("/users/:id/roles", userHandler.AssignRoles)

	// Role management routes
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/system", roleHandler.GetSystemRoles)
	identityRoutes.GET("/roles/stats/count", roleHandler.Count)
	identityRoutes.GET("/roles/:id", roleHandler.GetByID)
	identityRoutes.GET("/roles/code/:code", roleHandler.GetByCode)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", roleHandler.SetPermissions)

	// Permission management
	identityRoutes.GET("/permissions", roleHandler.GetPermissions)

	// Tenant management routes
	identityRoutes.POST("/tenants", tenantHandler.Create)
	identityRoutes.GET("/tenants", tenantHandler.List)
	identityRoutes.GET("/tenants/stats", tenantHandler.GetStats)
	identityRoutes.GET("/tenants/stats/count", tenantHandler.Count)
	identityRoutes.GET("/tenants/:id", tenantHandler.GetByID)
	identityRoutes.GET("/tenants/code/:code", tenantHandler.GetByCode)
	identityRoutes.PUT("/tenants/:id", tenantHandler.Update)
	identityRoutes.PUT("/tenants/:id/config", tenantHandler.UpdateConfig)
	identityRoutes.PUT("/tenants/:id/plan", tenantHandler.SetPlan)
	identityRoutes.DELETE("/tenants/:id", tenantHandler.Delete)
	identityRoutes.POST("/tenants/:id/activate", tenantHandler.Activate)
	identityRoutes.POST("/tenants/:id/deactivate", tenantHandler.Deactivate)
	identityRoutes.POST("/tenants/:id/suspend", tenantHandler.Suspend)

	// Register all domain groups
	r.Register(athleteRoutes).
		Register(businessRoutes).
		Register(campaignRoutes).
		Register(bundleRoutes).
		Register(offerRoutes).
		Register(matchRoutes).
		Register(billingRoutes).
		Register(planRoutes).
		Register(tenantFeatureRoutes).
		Register(authRoutes).
		Register(identityRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
