package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/bootstrap"
	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/store"
	"github.com/feral-file/ff-marketplace-ledger/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrap.InitLogger(cfg.BaseConfig, "sweeper"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(bootstrap.LOG_FLUSH_TIMEOUT)
	logger.InfoCtx(ctx, "Starting Sweeper")

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Re-dispatch through the same backend the API uses
	dispatcher, err := bootstrap.NewDispatcher(ctx, bootstrap.DispatcherConfig{
		Payout:   cfg.Payout,
		Temporal: cfg.Temporal,
		Custody:  cfg.Custody,
	}, dataStore, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create payout dispatcher", zap.Error(err))
	}

	payoutSweeper := sweeper.NewPayoutSweeper(sweeper.PayoutSweeperConfig{
		Interval:   cfg.PayoutSweeper.Interval,
		StaleAfter: cfg.PayoutSweeper.StaleAfter,
		BatchSize:  cfg.PayoutSweeper.BatchSize,
	}, dataStore, dispatcher, clock)

	logger.InfoCtx(ctx, "Initialized payout sweeper",
		zap.String("mode", cfg.Payout.Mode),
		zap.Duration("interval", cfg.PayoutSweeper.Interval),
		zap.Duration("stale_after", cfg.PayoutSweeper.StaleAfter),
		zap.Int("batch_size", cfg.PayoutSweeper.BatchSize),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := payoutSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := payoutSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	dispatcher.Close()

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
