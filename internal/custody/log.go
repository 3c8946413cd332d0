package custody

import (
	"context"

	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

type logTransferer struct{}

// NewLogTransferer creates a Transferer that only logs transfers, for local development
func NewLogTransferer() Transferer {
	return &logTransferer{}
}

func (logTransferer) Transfer(ctx context.Context, req TransferRequest) (*Receipt, error) {
	logger.InfoCtx(ctx, "Custody transfer (log only)",
		zap.String("idempotency_key", req.IdempotencyKey),
		zap.String("recipient", req.Recipient),
		zap.String("amount", req.Amount),
		zap.String("kind", req.Kind),
		zap.Uint64("token_id", req.TokenID),
	)
	return &Receipt{Reference: req.IdempotencyKey}, nil
}
