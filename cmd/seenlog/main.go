package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/seenlogapp/seenlog/internal/api"
	"github.com/seenlogapp/seenlog/internal/config"
	"github.com/seenlogapp/seenlog/internal/controllers"
	"github.com/seenlogapp/seenlog/internal/models"
	"github.com/seenlogapp/seenlog/internal/scheduler"
	"github.com/seenlogapp/seenlog/internal/services/catalog"
	"github.com/seenlogapp/seenlog/internal/utils"
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
	logger.Info("Starting SeenLog")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize catalog client with its metadata cache
	catalogClient := catalog.NewClient(cfg, logger)
	cachedCatalog := catalog.NewCachedCatalog(catalogClient, time.Duration(cfg.CatalogCacheMinutes)*time.Minute)
	logger.Info("Catalog client initialized")

	// 5. Initialize controllers
	datesCtrl := controllers.NewDatesController(db, logger)
	statsCtrl := controllers.NewStatsController(db, time.Duration(cfg.StatsTTLHours)*time.Hour, logger)
	catchUpCtrl := controllers.NewCatchUpController(db, cachedCatalog, cfg.MaxConcurrentFetches, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(statsCtrl, datesCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, statsCtrl, catchUpCtrl, datesCtrl, logger)

	// Start server in goroutine
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

	logger.Info("SeenLog is running")

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

	logger.Info("SeenLog stopped")
	return nil
}
