package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"pharmacy/internal/auth"
	"pharmacy/internal/config"
	"pharmacy/internal/database"
	"pharmacy/internal/handlers"
	"pharmacy/internal/logging"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"
	"pharmacy/pkg/idempotency"
	"pharmacy/pkg/rabbitmq"
	"pharmacy/pkg/shutdown"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("prescription service failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load("prescription")
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "prescription")

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db, &models.Prescription{}); err != nil {
			return err
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- RabbitMQ publisher ---
	mqClient := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
	defer mqClient.Close()
	publisher := rabbitmq.NewPublisher(mqClient, cfg.PublishQueueSize, log)

	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		publisher.Run(publisherCtx)
	}()

	// --- cart_cleared consumer ---
	var dedup handlers.DuplicateChecker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		dedup = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		log.Info("message deduplication enabled", "redis", cfg.RedisAddr)
	}
	cartEvents := handlers.NewCartEventsHandler(log, dedup)
	consumer := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:        cfg.RabbitMQURL,
		Queue:      models.CartClearedQueue,
		RetryDelay: cfg.ConsumerRetryDelay,
	}, cartEvents.HandleCartCleared, log)

	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(ctx)
	}()

	// --- Repositories, services, handlers ---
	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenService(cfg.JWTSecret)
	}
	prescriptionRepo := repositories.NewGORMPrescriptionRepository(db)
	prescriptionService := services.NewPrescriptionService(prescriptionRepo, publisher, log)
	validate := handlers.NewRequestValidator()

	app := handlers.NewApp("prescription-service", log)
	api := app.Group("/api")
	handlers.NewPrescriptionHandler(prescriptionService, validate, tokens, log).RegisterRoutes(api)
	handlers.NewHealthHandler(db, consumer).RegisterRoutes(app)

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.AppPort)
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case <-ctx.Done():
	case err = <-serverErr:
		if err != nil {
			err = fmt.Errorf("server failed: %w", err)
		}
		stop()
	}

	log.Info("shutting down server")
	if shutdownErr := app.ShutdownWithTimeout(cfg.ShutdownTimeout); shutdownErr != nil {
		log.Error("error during fiber shutdown", "err", shutdownErr)
	}
	stopPublisher()
	wg.Wait()
	log.Info("server gracefully stopped")
	return err
}
