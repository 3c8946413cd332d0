package payout

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// Balance sums the open payouts of a recipient
type Balance struct {
	Pending      *big.Int `json:"pending"`
	Withdrawable *big.Int `json:"withdrawable"`
}

// Service is the recipient facing side of payouts
type Service struct {
	store      Store
	dispatcher Dispatcher
	clock      adapter.Clock
}

// NewService creates a payout service
func NewService(store Store, dispatcher Dispatcher, clock adapter.Clock) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// List returns payouts matching filter
func (s *Service) List(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	return s.store.ListPayouts(ctx, filter)
}

// ListWithdrawable returns the payouts recipient can pull with Withdraw
func (s *Service) ListWithdrawable(ctx context.Context, recipient string) ([]domain.Payout, error) {
	return s.store.ListPayouts(ctx, domain.PayoutFilter{
		Recipient: recipient,
		Status:    domain.PayoutStatusWithdrawable,
	})
}

// Balance returns the pending and withdrawable totals of recipient
func (s *Service) Balance(ctx context.Context, recipient string) (*Balance, error) {
	payouts, err := s.store.ListPayouts(ctx, domain.PayoutFilter{Recipient: recipient})
	if err != nil {
		return nil, err
	}

	b := &Balance{Pending: new(big.Int), Withdrawable: new(big.Int)}
	for _, p := range payouts {
		switch p.Status {
		case domain.PayoutStatusPending:
			b.Pending.Add(b.Pending, p.Amount)
		case domain.PayoutStatusWithdrawable:
			b.Withdrawable.Add(b.Withdrawable, p.Amount)
		}
	}
	return b, nil
}

// Withdraw re-queues every withdrawable payout of recipient for a new
// delivery round and returns them
func (s *Service) Withdraw(ctx context.Context, recipient string) ([]domain.Payout, error) {
	payouts, err := s.ListWithdrawable(ctx, recipient)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	requeued := make([]domain.Payout, 0, len(payouts))
	for _, p := range payouts {
		p.Status = domain.PayoutStatusPending
		p.Round++
		p.LastError = ""
		p.UpdatedAt = now
		if err := s.store.UpdatePayout(ctx, &p, domain.PayoutStatusWithdrawable); err != nil {
			// another withdrawal got there first
			logger.WarnCtx(ctx, "Skipping payout", zap.String("payout_id", p.ID), zap.Error(err))
			continue
		}
		metrics.ObservePayout(p.Kind, domain.PayoutStatusPending)
		requeued = append(requeued, p)
	}
	if len(requeued) == 0 {
		return nil, fmt.Errorf("%w: no withdrawable payouts for %s", domain.ErrNothingToWithdraw, recipient)
	}

	if err := s.dispatcher.Enqueue(ctx, requeued...); err != nil {
		logger.WarnCtx(ctx, "Failed to enqueue withdrawn payouts", zap.Error(err))
	}
	return requeued, nil
}
