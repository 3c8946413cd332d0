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
	"github.com/feral-file/ff-marketplace-ledger/internal/api/middleware"
	"github.com/feral-file/ff-marketplace-ledger/internal/api/rest"
	"github.com/feral-file/ff-marketplace-ledger/internal/api/server"
	"github.com/feral-file/ff-marketplace-ledger/internal/bootstrap"
	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/marketplace"
	"github.com/feral-file/ff-marketplace-ledger/internal/messaging"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
	"github.com/feral-file/ff-marketplace-ledger/internal/providers/jetstream"
	"github.com/feral-file/ff-marketplace-ledger/internal/ratelimit"
	"github.com/feral-file/ff-marketplace-ledger/internal/store"
	"github.com/feral-file/ff-marketplace-ledger/internal/uri"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrap.InitLogger(cfg.BaseConfig, "marketplace-api"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(bootstrap.LOG_FLUSH_TIMEOUT)
	logger.InfoCtx(ctx, "Starting Feral File Marketplace API")

	metrics.Init()

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	// Rebuild the in-memory ledger from the database
	if err := dataStore.InitPlatformState(ctx, cfg.Marketplace.PlatformFeeBps); err != nil {
		logger.FatalCtx(ctx, "Failed to initialize platform state", zap.Error(err))
	}
	snapshot, err := dataStore.LoadSnapshot(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load snapshot", zap.Error(err))
	}

	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	dispatcher, err := bootstrap.NewDispatcher(ctx, bootstrap.DispatcherConfig{
		Payout:   cfg.Payout,
		Temporal: cfg.Temporal,
		Custody:  cfg.Custody,
	}, dataStore, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create payout dispatcher", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Initialized payout dispatcher", zap.String("mode", cfg.Payout.Mode))

	// Event notification
	broker := messaging.NewBroker(cfg.Marketplace.EventBufferSize)
	var natsPublisher messaging.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer natsPublisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, events are only streamed in process")
	}
	var notifier messaging.Notifier = broker
	if natsPublisher != nil {
		notifier = messaging.NewFanout(broker, natsPublisher)
	}

	mp, err := marketplace.New(marketplace.Config{
		PlatformOwner:           cfg.Marketplace.PlatformOwner,
		PlatformFeeBps:          cfg.Marketplace.PlatformFeeBps,
		DefaultRoyaltyBps:       cfg.Marketplace.DefaultRoyaltyBps,
		FreezePlatformFeeAtMint: cfg.Marketplace.FreezePlatformFeeAtMint,
	}, clock, dataStore, dispatcher, notifier)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create marketplace", zap.Error(err))
	}
	mp.Restore(snapshot)
	logger.InfoCtx(ctx, "Restored marketplace state",
		zap.Uint64("total_supply", mp.GetTotalSupply()),
		zap.Uint64("platform_fee_bps", mp.GetPlatformInfo().PlatformFeeBps),
	)

	// Rate limiting
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		var redisClient adapter.RedisClient
		if cfg.RateLimit.RedisAddr != "" {
			redisClient = adapter.NewRedisClient(cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		}
		limiter, err = ratelimit.NewLimiter(cfg.RateLimit, redisClient, clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create rate limiter", zap.Error(err))
		}
		defer limiter.Close()
		logger.InfoCtx(ctx, "Rate limiting enabled",
			zap.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("distributed", redisClient != nil),
		)
	}

	// Token URI resolution
	uriResolver := uri.NewResolver(adapter.NewHTTPClient(cfg.URI.Timeout), &uri.Config{
		IPFSGateways:    cfg.URI.IPFSGateways,
		ArweaveGateways: cfg.URI.ArweaveGateways,
	})

	payoutService := payout.NewService(dataStore, dispatcher, clock)
	handler := rest.NewHandler(mp, payoutService, dataStore, broker, uriResolver, dataStore)

	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, handler, limiter)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	dispatcher.Close()

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
