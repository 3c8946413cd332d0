// Package bootstrap wires the dependencies shared by the marketplace binaries
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/custody"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
	temporal "github.com/feral-file/ff-marketplace-ledger/internal/providers/temporal"
	"github.com/feral-file/ff-marketplace-ledger/internal/store"
	"github.com/feral-file/ff-marketplace-ledger/internal/workflows"
)

const LOG_FLUSH_TIMEOUT = 2 * time.Second

// InitLogger initializes the global logger for service. Errors are reported
// to Sentry tagged with the service name.
func InitLogger(cfg config.BaseConfig, service string) error {
	return logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": service,
		},
	})
}

// OpenDatabase connects to Postgres and applies the connection pool settings
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database at %s: %w", cfg.Host, err)
	}
	if err := store.ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// DialTemporal connects to Temporal with the zap logger adapter
func DialTemporal(ctx context.Context, cfg config.TemporalConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal at %s: %w", cfg.HostPort, err)
	}

	logger.InfoCtx(ctx, "Connected to Temporal",
		zap.String("host_port", cfg.HostPort),
		zap.String("namespace", cfg.Namespace),
	)
	return c, nil
}

// NewTransferer returns the custody HTTP client, or a transferer that only
// logs when no custody service is configured
func NewTransferer(cfg config.CustodyConfig, jsonAdapter adapter.JSON, clock adapter.Clock) custody.Transferer {
	if cfg.URL == "" {
		logger.Warn("Custody URL not configured, payouts are only logged")
		return custody.NewLogTransferer()
	}

	logger.Info("Initialized custody client", zap.String("url", cfg.URL))
	return custody.NewHTTPTransferer(custody.Config{
		URL:     cfg.URL,
		Secret:  cfg.Secret,
		Timeout: cfg.Timeout,
	}, adapter.NewHTTPClient(cfg.Timeout), jsonAdapter, clock)
}

// Dispatcher is the payout dispatcher selected by payout.mode together with
// the resources it owns
type Dispatcher struct {
	payout.Dispatcher

	pool     *payout.Pool
	temporal client.Client
}

// DispatcherConfig selects and configures the payout delivery backend
type DispatcherConfig struct {
	Payout   config.PayoutConfig
	Temporal config.TemporalConfig
	Custody  config.CustodyConfig
}

// NewDispatcher starts workflows on Temporal in temporal mode and delivers
// through an in-process worker pool otherwise
func NewDispatcher(ctx context.Context, cfg DispatcherConfig, payoutStore payout.Store, clock adapter.Clock) (*Dispatcher, error) {
	if cfg.Payout.Mode == config.PAYOUT_MODE_TEMPORAL {
		c, err := DialTemporal(ctx, cfg.Temporal)
		if err != nil {
			return nil, err
		}
		return &Dispatcher{
			Dispatcher: workflows.NewDispatcher(payoutStore, c, cfg.Temporal.PayoutTaskQueue),
			temporal:   c,
		}, nil
	}

	transferer := NewTransferer(cfg.Custody, adapter.NewJSON(), clock)
	pool := payout.NewPool(payout.Config{
		PoolSize:        cfg.Payout.PoolSize,
		QueueSize:       cfg.Payout.QueueSize,
		MaxAttempts:     cfg.Payout.MaxAttempts,
		InitialInterval: cfg.Payout.InitialInterval,
		MaxInterval:     cfg.Payout.MaxInterval,
	}, payoutStore, payout.NewProcessor(payoutStore, transferer, clock))
	return &Dispatcher{Dispatcher: pool, pool: pool}, nil
}

// Close waits for in-flight pool deliveries or closes the Temporal client.
// Payouts still queued stay pending and are picked up by the sweeper.
func (d *Dispatcher) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.temporal != nil {
		d.temporal.Close()
	}
}
