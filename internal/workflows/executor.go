package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/custody"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

const (
	// ErrTypePermanentTransfer marks custody rejections that must not be retried
	ErrTypePermanentTransfer = "PermanentTransferError"
	// ErrTypePayoutNotFound marks payouts missing from the store
	ErrTypePayoutNotFound = "PayoutNotFoundError"
)

// TransferResult is the outcome of a TransferPayout activity
type TransferResult struct {
	Reference string `json:"reference,omitempty"`
	// Skipped is set when the payout was no longer pending, e.g. settled by a previous round
	Skipped bool `json:"skipped,omitempty"`
}

// Executor defines the payout activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks -mock_names=Executor=MockPayoutExecutor
type Executor interface {
	// TransferPayout sends a pending payout to the custody service once
	TransferPayout(ctx context.Context, payoutID string) (*TransferResult, error)

	// MarkPayoutCompleted marks a delivered payout completed
	MarkPayoutCompleted(ctx context.Context, payoutID string, reference string) error

	// MarkPayoutWithdrawable parks a payout that could not be delivered
	MarkPayoutWithdrawable(ctx context.Context, payoutID string, reason string) error
}

// executor is the concrete implementation of Executor
type executor struct {
	processor *payout.Processor
	activity  adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(processor *payout.Processor, activity adapter.Activity) Executor {
	return &executor{
		processor: processor,
		activity:  activity,
	}
}

// TransferPayout sends a pending payout to the custody service once.
// Retries are driven by the activity retry policy.
func (e *executor) TransferPayout(ctx context.Context, payoutID string) (*TransferResult, error) {
	attempt := e.activity.Attempt(ctx)
	logger.InfoCtx(ctx, "Transferring payout",
		zap.String("payout_id", payoutID),
		zap.Int("attempt", attempt))

	receipt, err := e.processor.Attempt(ctx, payoutID)
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrNotPending):
			logger.InfoCtx(ctx, "Payout is no longer pending, skipping", zap.String("payout_id", payoutID))
			return &TransferResult{Skipped: true}, nil
		case errors.Is(err, domain.ErrPayoutNotFound):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePayoutNotFound, err)
		case custody.IsPermanent(err):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePermanentTransfer, err)
		}

		logger.WarnCtx(ctx, "Payout transfer failed",
			zap.String("payout_id", payoutID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return nil, err
	}

	return &TransferResult{Reference: receipt.Reference}, nil
}

// MarkPayoutCompleted marks a delivered payout completed
func (e *executor) MarkPayoutCompleted(ctx context.Context, payoutID string, reference string) error {
	return classifyTransition(e.processor.Complete(ctx, payoutID, reference))
}

// MarkPayoutWithdrawable parks a payout that could not be delivered
func (e *executor) MarkPayoutWithdrawable(ctx context.Context, payoutID string, reason string) error {
	return classifyTransition(e.processor.Fail(ctx, payoutID, errors.New(reason)))
}

// classifyTransition stops retrying transitions that can never succeed
func classifyTransition(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, payout.ErrNotPending),
		errors.Is(err, domain.ErrPayoutStateChanged):
		return temporal.NewNonRetryableApplicationError(err.Error(), "", err)
	case errors.Is(err, domain.ErrPayoutNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePayoutNotFound, err)
	}
	return err
}
