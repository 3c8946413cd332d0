package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

const (
	DEFAULT_SWEEP_INTERVAL = time.Minute
	DEFAULT_STALE_AFTER    = 5 * time.Minute
	DEFAULT_BATCH_SIZE     = 100
)

// PayoutSweeperConfig holds configuration for the payout sweeper
type PayoutSweeperConfig struct {
	Interval   time.Duration // Time to sleep between sweep cycles
	StaleAfter time.Duration // Pending payouts untouched for this long are re-enqueued
	BatchSize  int           // Payouts re-enqueued per cycle
}

// payoutSweeper re-enqueues pending payouts that were committed but never
// delivered, e.g. when the API stopped between commit and dispatch
type payoutSweeper struct {
	config     PayoutSweeperConfig
	store      payout.Store
	dispatcher payout.Dispatcher
	clock      adapter.Clock
	running    atomic.Bool
	stopChan   chan struct{}
	stoppedCh  chan struct{}
}

// NewPayoutSweeper creates a new payout sweeper
func NewPayoutSweeper(config PayoutSweeperConfig, store payout.Store, dispatcher payout.Dispatcher, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_SWEEP_INTERVAL
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = DEFAULT_STALE_AFTER
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DEFAULT_BATCH_SIZE
	}
	return &payoutSweeper{
		config:     config,
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
		stopChan:   make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *payoutSweeper) Name() string {
	return "payout-sweeper"
}

// Start runs a sweep cycle every interval until the context is canceled or Stop is called
func (s *payoutSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting payout sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("stale_after", s.config.StaleAfter),
		zap.Int("batch_size", s.config.BatchSize),
	)

	for {
		if err := s.runSweepCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Payout sweeper stopped")
			return nil
		}
	}
}

// Stop signals the main loop and waits for the running cycle to finish
func (s *payoutSweeper) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	select {
	case <-s.stoppedCh:
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Payout sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle re-enqueues one batch of stale pending payouts
func (s *payoutSweeper) runSweepCycle(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.config.StaleAfter)
	stale, err := s.store.ListPayouts(ctx, domain.PayoutFilter{
		Status:        domain.PayoutStatusPending,
		UpdatedBefore: cutoff,
		Limit:         s.config.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list stale payouts: %w", err)
	}
	if len(stale) == 0 {
		logger.DebugCtx(ctx, "No stale payouts")
		return nil
	}

	logger.InfoCtx(ctx, "Re-enqueueing stale payouts",
		zap.Int("count", len(stale)),
		zap.Time("updated_before", cutoff))

	if err := s.dispatcher.Enqueue(ctx, stale...); err != nil {
		return fmt.Errorf("failed to re-enqueue stale payouts: %w", err)
	}
	return nil
}

// sleep waits for duration; false means the sweeper must exit
func (s *payoutSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
