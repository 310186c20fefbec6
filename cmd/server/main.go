package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/portfolio-optimizer/internal/clients/yahoo"
	"github.com/aristath/portfolio-optimizer/internal/config"
	"github.com/aristath/portfolio-optimizer/internal/database"
	"github.com/aristath/portfolio-optimizer/internal/modules/marketdata"
	"github.com/aristath/portfolio-optimizer/internal/modules/optimization"
	"github.com/aristath/portfolio-optimizer/internal/scheduler"
	"github.com/aristath/portfolio-optimizer/internal/server"
	"github.com/aristath/portfolio-optimizer/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting portfolio optimizer")

	// Run spec: symbols, window, constraints, search budget
	spec, err := config.LoadSpec(cfg.SpecPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SpecPath).Msg("Failed to load run spec")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Market data: provider + sqlite cache
	yahooClient := yahoo.NewClient(log)
	priceStore := marketdata.NewStore(db.Conn(), log)
	dataService := marketdata.NewService(marketdata.NewYahooProvider(yahooClient), priceStore, log)

	// Optimization service
	runRepo := optimization.NewRunRepository(db.Conn(), log)
	optService := optimization.NewService(dataService, runRepo, log)
	optHandler := optimization.NewHandler(optService, runRepo, spec, log)

	// Scheduler: nightly price refresh
	sched := scheduler.New(log)
	refreshJob := scheduler.NewPriceRefreshJob(dataService, spec.Symbols, spec.Period, log)
	if err := sched.AddJob(cfg.PriceRefreshCron, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Optimizer: optHandler,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
