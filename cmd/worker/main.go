package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	bundleapp "github.com/nilmarket/backend/internal/application/bundle"
	"github.com/nilmarket/backend/internal/infrastructure/config"
	"github.com/nilmarket/backend/internal/infrastructure/event"
	"github.com/nilmarket/backend/internal/infrastructure/logger"
	"github.com/nilmarket/backend/internal/infrastructure/messaging"
	"github.com/nilmarket/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// The dispatch worker consumes bundle dispatch jobs from RabbitMQ,
// fans out offer notifications, and marks bundles dispatched. It runs
// separately from the API server so a slow fan-out never blocks HTTP
// traffic.
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

	log.Info("Starting dispatch worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("queue", cfg.Messaging.DispatchQueue),
	)

	if cfg.Messaging.URL == "" {
		log.Fatal("No messaging URL configured, dispatch worker has nothing to consume")
	}

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

	// Repositories and bundle service; the worker only needs MarkDispatched
	athleteRepo := persistence.NewGormAthleteProfileRepository(db.DB)
	businessRepo := persistence.NewGormBusinessProfileRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	bundleRepo := persistence.NewGormBundleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)

	// Dispatch confirmations still flow through the outbox so the API
	// server's processor delivers BundleDispatched to its subscribers
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	bundleRepo.SetOutboxEventSaver(event.NewOutboxPublisher(eventSerializer))

	bundleService := bundleapp.NewBundleService(bundleRepo, campaignRepo, businessRepo, athleteRepo, tenantRepo, log)

	consumer := messaging.NewDispatchConsumer(cfg.Messaging, bundleService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info("Shutting down dispatch worker", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Dispatch consumer failed", zap.Error(err))
	}

	log.Info("Dispatch worker exited gracefully")
}
