package payout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

// ErrQueueFull is returned by Enqueue when the worker pool rejects a payout
var ErrQueueFull = errors.New("payout queue is full")

// Pool delivers payouts on a bounded worker pool, retrying each payout with
// exponential backoff and parking it as withdrawable once attempts run out
type Pool struct {
	config    Config
	store     Store
	processor *Processor
	pool      pond.Pool
	inflight  sync.Map // payout id -> struct{}
	closed    atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates and starts a worker pool dispatcher
func NewPool(config Config, store Store, processor *Processor) *Pool {
	config.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config:    config,
		store:     store,
		processor: processor,
		pool: pond.NewPool(
			config.PoolSize,
			pond.WithQueueSize(config.QueueSize),
			pond.WithContext(ctx),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue saves the payouts and schedules every pending one that is not
// already being delivered. Rejected payouts stay pending for the sweeper.
func (d *Pool) Enqueue(ctx context.Context, payouts ...domain.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	if d.closed.Load() {
		return fmt.Errorf("payout pool is closed")
	}
	if err := d.store.SavePayouts(ctx, payouts...); err != nil {
		return fmt.Errorf("failed to save payouts: %w", err)
	}

	var errs []error
	for _, p := range payouts {
		if p.Status != domain.PayoutStatusPending {
			continue
		}
		id := p.ID
		if _, loaded := d.inflight.LoadOrStore(id, struct{}{}); loaded {
			continue
		}

		if _, ok := d.pool.TrySubmit(func() {
			defer d.inflight.Delete(id)
			d.deliver(d.ctx, id)
		}); !ok {
			d.inflight.Delete(id)
			errs = append(errs, fmt.Errorf("%w: %s", ErrQueueFull, id))
		}
	}
	return errors.Join(errs...)
}

// InFlight reports whether a payout is currently scheduled or being delivered
func (d *Pool) InFlight(id string) bool {
	_, ok := d.inflight.Load(id)
	return ok
}

// Close stops accepting payouts and waits for running deliveries.
// Queued payouts that did not start remain pending.
func (d *Pool) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.cancel()
	d.pool.StopAndWait()
}

// deliver retries a payout up to MaxAttempts times
func (d *Pool) deliver(ctx context.Context, id string) {
	var reference string
	operation := func() error {
		receipt, err := d.processor.Attempt(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotPending) || errors.Is(err, domain.ErrPayoutNotFound) {
				return backoff.Permanent(err)
			}
			logger.WarnCtx(ctx, "Payout attempt failed", zap.String("payout_id", id), zap.Error(err))
			return err
		}
		reference = receipt.Reference
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.config.InitialInterval
	b.MaxInterval = d.config.MaxInterval
	b.MaxElapsedTime = 0 // bounded by attempts
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	retries := backoff.WithMaxRetries(b, uint64(d.config.MaxAttempts-1)) //nolint:gosec,G115
	err := backoff.Retry(operation, backoff.WithContext(retries, ctx))

	switch {
	case err == nil:
		if err := d.processor.Complete(ctx, id, reference); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("payout_id", id))
		}
	case errors.Is(err, ErrNotPending):
		logger.DebugCtx(ctx, "Payout already settled", zap.String("payout_id", id))
	case errors.Is(err, domain.ErrPayoutNotFound):
		logger.ErrorCtx(ctx, err, zap.String("payout_id", id))
	case ctx.Err() != nil:
		// shutting down; the payout stays pending for the sweeper
		logger.InfoCtx(ctx, "Payout delivery interrupted", zap.String("payout_id", id))
	default:
		if err := d.processor.Fail(ctx, id, err); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("payout_id", id))
		}
	}
}
