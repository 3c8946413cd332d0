package payout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/custody"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// ErrNotPending is returned by Attempt when the payout is no longer pending
var ErrNotPending = errors.New("payout is not pending")

// Processor runs single delivery attempts and records their outcome.
// It is shared by the worker pool dispatcher and the payout workflow activities.
type Processor struct {
	store      Store
	transferer custody.Transferer
	clock      adapter.Clock
}

// NewProcessor creates a Processor
func NewProcessor(store Store, transferer custody.Transferer, clock adapter.Clock) *Processor {
	return &Processor{
		store:      store,
		transferer: transferer,
		clock:      clock,
	}
}

// Attempt delivers a pending payout once. The payout id is the custody
// idempotency key, so repeated attempts never pay twice.
func (p *Processor) Attempt(ctx context.Context, id string) (*custody.Receipt, error) {
	payout, err := p.store.GetPayout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}
	if payout.Status != domain.PayoutStatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, id, payout.Status)
	}

	payout.Attempts++
	payout.UpdatedAt = p.clock.Now()
	if err := p.store.UpdatePayout(ctx, payout, domain.PayoutStatusPending); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	receipt, err := p.transferer.Transfer(ctx, custody.TransferRequest{
		IdempotencyKey: payout.ID,
		Recipient:      payout.Recipient,
		Amount:         domain.AmountString(payout.Amount),
		Kind:           string(payout.Kind),
		TokenID:        payout.TokenID,
	})
	if err != nil {
		payout.LastError = err.Error()
		if uerr := p.store.UpdatePayout(ctx, payout, domain.PayoutStatusPending); uerr != nil {
			logger.WarnCtx(ctx, "Failed to record payout error", zap.String("payout_id", id), zap.Error(uerr))
		}
		return nil, err
	}
	return receipt, nil
}

// Complete marks a pending payout completed
func (p *Processor) Complete(ctx context.Context, id string, reference string) error {
	payout, err := p.transition(ctx, id, domain.PayoutStatusCompleted, "")
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Payout completed",
		zap.String("payout_id", id),
		zap.String("kind", string(payout.Kind)),
		zap.String("recipient", payout.Recipient),
		zap.String("reference", reference),
		zap.Int("attempts", payout.Attempts))
	return nil
}

// Fail parks a pending payout as withdrawable so its recipient can pull it later
func (p *Processor) Fail(ctx context.Context, id string, cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	payout, err := p.transition(ctx, id, domain.PayoutStatusWithdrawable, reason)
	if err != nil {
		return err
	}
	logger.WarnCtx(ctx, "Payout parked as withdrawable",
		zap.String("payout_id", id),
		zap.String("kind", string(payout.Kind)),
		zap.String("recipient", payout.Recipient),
		zap.Int("attempts", payout.Attempts),
		zap.String("last_error", reason))
	return nil
}

func (p *Processor) transition(ctx context.Context, id string, status domain.PayoutStatus, lastError string) (*domain.Payout, error) {
	payout, err := p.store.GetPayout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}
	if payout.Status == status {
		return payout, nil
	}
	if payout.Status != domain.PayoutStatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, id, payout.Status)
	}

	payout.Status = status
	payout.LastError = lastError
	payout.UpdatedAt = p.clock.Now()
	if err := p.store.UpdatePayout(ctx, payout, domain.PayoutStatusPending); err != nil {
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}
	metrics.ObservePayout(payout.Kind, status)
	return payout, nil
}
