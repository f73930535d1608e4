package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/nextup/internal/api"
	"github.com/amaumene/nextup/internal/config"
	"github.com/amaumene/nextup/internal/controllers"
	"github.com/amaumene/nextup/internal/models"
	"github.com/amaumene/nextup/internal/scheduler"
	"github.com/amaumene/nextup/internal/services/tmdb"
	"github.com/amaumene/nextup/internal/utils"
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
	logger.Info("Starting nextup")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDB client: %w", err)
	}
	logger.Info("TMDB client initialized")

	// 5. Initialize controllers
	libraryCtrl := controllers.NewLibraryController(db, tmdbClient, logger)
	episodeCtrl := controllers.NewEpisodeController(db, logger)
	scheduleCtrl := controllers.NewScheduleController(db, cfg, logger)
	peopleCtrl := controllers.NewPeopleController(db, tmdbClient, logger)
	importCtrl := controllers.NewImportController(db, libraryCtrl, logger)
	logger.Info("Controllers initialized")

	// One-shot import mode: nextup import <watched-shows.json>
	if len(os.Args) > 2 && os.Args[1] == "import" {
		stats, err := importCtrl.ImportFile(context.Background(), os.Args[2])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		logger.WithField("shows", stats.Shows).Info("Import finished")
		return nil
	}

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(scheduleCtrl, libraryCtrl, cfg.EpisodeRefreshHours, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, libraryCtrl, episodeCtrl, scheduleCtrl, peopleCtrl, logger)

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

	logger.Info("nextup is running")

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

	logger.Info("nextup stopped")
	return nil
}
