package rest

import (
	"context"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

// PayoutService is the recipient side of the payout queue
//
//go:generate mockgen -source=deps.go -destination=../../mocks/api_deps.go -package=mocks -mock_names=PayoutService=MockPayoutService,EventJournal=MockEventJournal,EventStream=MockEventStream,HealthChecker=MockHealthChecker
type PayoutService interface {
	ListWithdrawable(ctx context.Context, recipient string) ([]domain.Payout, error)
	Balance(ctx context.Context, recipient string) (*payout.Balance, error)
	Withdraw(ctx context.Context, recipient string) ([]domain.Payout, error)
}

// EventJournal reads committed events
type EventJournal interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}

// EventStream delivers live events until ctx ends
type EventStream interface {
	Subscribe(ctx context.Context) <-chan domain.Event
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}
