package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
	"github.com/feral-file/ff-marketplace-ledger/internal/providers/temporal"
)

// dispatcher starts one SettlePayout workflow per payout round
type dispatcher struct {
	store                 payout.Store
	orchestrator          temporal.TemporalOrchestrator
	orchestratorTaskQueue string
}

// NewDispatcher creates a payout.Dispatcher backed by Temporal workflows
func NewDispatcher(store payout.Store, orchestrator temporal.TemporalOrchestrator, orchestratorTaskQueue string) payout.Dispatcher {
	return &dispatcher{
		store:                 store,
		orchestrator:          orchestrator,
		orchestratorTaskQueue: orchestratorTaskQueue,
	}
}

// Enqueue saves the payouts and starts a workflow for every pending one.
// A round whose workflow is running or completed is skipped. A round whose
// workflow failed or timed out with the payout still pending is started again
// under the same id, so the sweeper can recover it.
func (d *dispatcher) Enqueue(ctx context.Context, payouts ...domain.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	if err := d.store.SavePayouts(ctx, payouts...); err != nil {
		return fmt.Errorf("failed to save payouts: %w", err)
	}

	// Only the workflow function name is needed to start the workflow
	w := NewWorkerPayout(nil, WorkerPayoutConfig{})

	var errs []error
	for _, p := range payouts {
		if p.Status != domain.PayoutStatusPending {
			continue
		}

		options := client.StartWorkflowOptions{
			ID:                       PayoutWorkflowID(p),
			TaskQueue:                d.orchestratorTaskQueue,
			WorkflowExecutionTimeout: 24 * time.Hour,
			WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		}
		run, err := d.orchestrator.ExecuteWorkflow(ctx, options, w.SettlePayout, p.ID)
		if err != nil {
			var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
			if errors.As(err, &alreadyStarted) {
				logger.DebugCtx(ctx, "Payout round already started",
					zap.String("payout_id", p.ID),
					zap.Int("round", p.Round))
				continue
			}
			errs = append(errs, fmt.Errorf("failed to start payout workflow %s: %w", options.ID, err))
			continue
		}

		// run is nil in tests
		if run != nil {
			logger.InfoCtx(ctx, "Payout workflow started",
				zap.String("payout_id", p.ID),
				zap.String("workflow_id", run.GetID()),
				zap.String("run_id", run.GetRunID()))
		}
	}
	return errors.Join(errs...)
}
