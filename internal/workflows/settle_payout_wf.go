package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

// SettlePayout delivers one payout round:
// 1. TransferPayout with the configured retry policy
// 2. MarkPayoutCompleted on success
// 3. MarkPayoutWithdrawable once the attempts are exhausted or custody rejects the transfer
func (w *workerPayout) SettlePayout(ctx workflow.Context, payoutID string) error {
	logger.InfoWf(ctx, "Starting payout settlement", zap.String("payoutID", payoutID))

	transferCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.TransferTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        w.config.InitialInterval,
			BackoffCoefficient:     2.0,
			MaximumInterval:        w.config.MaxInterval,
			MaximumAttempts:        int32(w.config.MaxAttempts), //nolint:gosec,G115
			NonRetryableErrorTypes: []string{ErrTypePermanentTransfer, ErrTypePayoutNotFound},
		},
	})

	// Status updates are local database writes, retried briefly
	markCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 10,
			InitialInterval: time.Second,
		},
	})

	var result TransferResult
	err := workflow.ExecuteActivity(transferCtx, w.executor.TransferPayout, payoutID).Get(transferCtx, &result)
	if err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.Type() == ErrTypePayoutNotFound {
			return err
		}

		reason := failureReason(err)
		logger.WarnWf(ctx, "Payout transfer failed, parking as withdrawable",
			zap.String("payoutID", payoutID),
			zap.String("reason", reason))

		if err := workflow.ExecuteActivity(markCtx, w.executor.MarkPayoutWithdrawable, payoutID, reason).Get(markCtx, nil); err != nil {
			logger.ErrorWf(ctx, err, zap.String("payoutID", payoutID))
			return err
		}
		return nil
	}

	if result.Skipped {
		logger.InfoWf(ctx, "Payout already settled", zap.String("payoutID", payoutID))
		return nil
	}

	if err := workflow.ExecuteActivity(markCtx, w.executor.MarkPayoutCompleted, payoutID, result.Reference).Get(markCtx, nil); err != nil {
		logger.ErrorWf(ctx, err, zap.String("payoutID", payoutID))
		return err
	}

	logger.InfoWf(ctx, "Payout settled",
		zap.String("payoutID", payoutID),
		zap.String("reference", result.Reference))

	return nil
}

// failureReason extracts the application message from an activity failure
func failureReason(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "custody transfer timed out"
	}
	return err.Error()
}
