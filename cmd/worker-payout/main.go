package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/bootstrap"
	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
	temporal "github.com/feral-file/ff-marketplace-ledger/internal/providers/temporal"
	"github.com/feral-file/ff-marketplace-ledger/internal/store"
	"github.com/feral-file/ff-marketplace-ledger/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerPayoutConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrap.InitLogger(cfg.BaseConfig, "worker-payout"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(bootstrap.LOG_FLUSH_TIMEOUT)
	logger.InfoCtx(ctx, "Starting Worker Payout")

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Activities run the same processor as the in-process pool
	transferer := bootstrap.NewTransferer(cfg.Custody, adapter.NewJSON(), clock)
	processor := payout.NewProcessor(dataStore, transferer, clock)
	payoutExecutor := workflows.NewExecutor(processor, adapter.NewActivity())

	temporalClient, err := bootstrap.DialTemporal(ctx, cfg.Temporal)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	// Create Temporal worker with logger and Sentry interceptor
	sentryInterceptor := temporal.NewSentryActivityInterceptor()
	temporalWorker := worker.New(temporalClient,
		cfg.Temporal.PayoutTaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors: []interceptor.WorkerInterceptor{
				sentryInterceptor,
			},
		})

	// Create payout worker instance
	payoutWorker := workflows.NewWorkerPayout(payoutExecutor, workflows.WorkerPayoutConfig{
		MaxAttempts:     cfg.Payout.MaxAttempts,
		InitialInterval: cfg.Payout.InitialInterval,
		MaxInterval:     cfg.Payout.MaxInterval,
		TransferTimeout: cfg.Payout.TransferTimeout,
	})

	// Register payout workflow
	temporalWorker.RegisterWorkflow(payoutWorker.SettlePayout)
	logger.InfoCtx(ctx, "Registered payout workflow")

	// Register payout activities
	temporalWorker.RegisterActivity(payoutExecutor.TransferPayout)
	temporalWorker.RegisterActivity(payoutExecutor.MarkPayoutCompleted)
	temporalWorker.RegisterActivity(payoutExecutor.MarkPayoutWithdrawable)
	logger.InfoCtx(ctx, "Registered payout activities")

	// Start the worker
	err = temporalWorker.Start()
	if err != nil {
		logger.FatalCtx(ctx, "Failed to start Temporal worker", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Worker Payout started successfully",
		zap.String("payout_task_queue", cfg.Temporal.PayoutTaskQueue),
		zap.Int("max_attempts", cfg.Payout.MaxAttempts),
	)

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.InfoCtx(ctx, "Shutting down Worker Payout...")

	// Stop the worker
	temporalWorker.Stop()

	logger.InfoCtx(ctx, "Worker Payout stopped")
}
