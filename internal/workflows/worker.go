package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// WorkerPayout defines the durable payout workflows
type WorkerPayout interface {
	// SettlePayout delivers one payout round, parking the payout as withdrawable when delivery fails
	SettlePayout(ctx workflow.Context, payoutID string) error
}

// WorkerPayoutConfig holds the retry settings of the transfer activity
type WorkerPayoutConfig struct {
	// MaxAttempts bounds the transfer attempts of one round
	MaxAttempts int
	// InitialInterval is the delay before the first retry
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries
	MaxInterval time.Duration
	// TransferTimeout bounds a single custody call
	TransferTimeout time.Duration
}

func (c *WorkerPayoutConfig) setDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = time.Minute
	}
	if c.TransferTimeout <= 0 {
		c.TransferTimeout = 30 * time.Second
	}
}

// workerPayout is the concrete implementation of WorkerPayout
type workerPayout struct {
	config   WorkerPayoutConfig
	executor Executor
}

// NewWorkerPayout creates a new payout worker instance
func NewWorkerPayout(executor Executor, config WorkerPayoutConfig) WorkerPayout {
	config.setDefaults()
	return &workerPayout{
		config:   config,
		executor: executor,
	}
}

// PayoutWorkflowID is the workflow id of one delivery round of a payout
func PayoutWorkflowID(p domain.Payout) string {
	return fmt.Sprintf("payout-%s-r%d", p.ID, p.Round)
}
