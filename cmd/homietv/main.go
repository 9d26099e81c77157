package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kophyo6929/homietv/internal/api"
	"github.com/kophyo6929/homietv/internal/config"
	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/scheduler"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/kophyo6929/homietv/internal/services/storage"
	"github.com/kophyo6929/homietv/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting HomieTV")
	logger.WithField("data_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	authService, err := auth.NewService(cfg, db, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	if err := authService.Bootstrap(cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	logger.Info("Auth service initialized")

	mediaStore, err := storage.NewStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}
	logger.Info("Media store initialized")

	// 5. Initialize controllers
	catalogCtrl := controllers.NewCatalogController(db, logger)
	adsCtrl := controllers.NewAdsController(db, logger)
	contentCtrl := controllers.NewContentController(db, mediaStore, catalogCtrl, adsCtrl, logger)
	cleanupCtrl := controllers.NewCleanupController(db, mediaStore, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server, err := api.NewServer(cfg, api.Deps{
		DB:      db,
		Auth:    authService,
		Store:   mediaStore,
		Catalog: catalogCtrl,
		Ads:     adsCtrl,
		Content: contentCtrl,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("HomieTV is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("HomieTV stopped")
	return nil
}
