package payout

import (
	"context"
	"time"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// Dispatcher schedules delivery of committed payouts. Enqueue must be
// idempotent: payouts that are already known, in flight or completed are skipped.
//
//go:generate mockgen -source=payout.go -destination=../mocks/payout.go -package=mocks -mock_names=Dispatcher=MockDispatcher,Store=MockPayoutStore
type Dispatcher interface {
	Enqueue(ctx context.Context, payouts ...domain.Payout) error
}

// Store persists payouts
type Store interface {
	// SavePayouts inserts payouts, leaving existing ids untouched
	SavePayouts(ctx context.Context, payouts ...domain.Payout) error
	GetPayout(ctx context.Context, id string) (*domain.Payout, error)
	// UpdatePayout writes payout only if its stored status is still expected,
	// otherwise it returns domain.ErrPayoutStateChanged
	UpdatePayout(ctx context.Context, payout *domain.Payout, expected domain.PayoutStatus) error
	ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error)
}

// Config holds the delivery settings of the worker pool dispatcher
type Config struct {
	PoolSize        int
	QueueSize       int
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (c *Config) setDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = time.Minute
	}
}
