package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"pharmacy/internal/config"
	"pharmacy/internal/database"
	"pharmacy/internal/handlers"
	"pharmacy/internal/logging"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"
	"pharmacy/pkg/rabbitmq"
	"pharmacy/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cart service failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load("cart")
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "cart")

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db, &models.Cart{}, &models.CartItem{}); err != nil {
			return err
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- RabbitMQ publisher ---
	// The publisher outlives the HTTP server so events emitted by in-flight requests are flushed.
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

	// --- Repositories, services, handlers ---
	cartRepo := repositories.NewGORMCartRepository(db)
	catalog := repositories.NewStaticCatalog(cfg.Catalog)
	cartService := services.NewCartService(cartRepo, catalog, publisher, log)
	validate := handlers.NewRequestValidator()

	app := handlers.NewApp("cart-service", log)
	api := app.Group("/api")
	handlers.NewCartHandler(cartService, validate).RegisterRoutes(api)
	handlers.NewCatalogHandler(catalog).RegisterRoutes(api)
	handlers.NewHealthHandler(db, mqClient).RegisterRoutes(app)

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
