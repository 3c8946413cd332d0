package custody

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// TransferRequest is a request to move funds out of the marketplace escrow
type TransferRequest struct {
	// IdempotencyKey is the payout id; the custody service executes a key at most once
	IdempotencyKey string `json:"idempotency_key"`
	Recipient      string `json:"recipient"`
	Amount         string `json:"amount"` // base-10, smallest unit
	Kind           string `json:"kind"`
	TokenID        uint64 `json:"token_id,omitempty"`
}

// Receipt is the custody acknowledgement of a transfer
type Receipt struct {
	Reference string `json:"reference"`
	// Duplicate is set when the custody service had already executed the key
	Duplicate bool `json:"duplicate,omitempty"`
}

// Transferer executes payouts against the custody service
//
//go:generate mockgen -source=custody.go -destination=../mocks/custody.go -package=mocks -mock_names=Transferer=MockTransferer
type Transferer interface {
	// Transfer executes the request. Errors wrapped with backoff.Permanent must not be retried.
	Transfer(ctx context.Context, req TransferRequest) (*Receipt, error)
}

// IsPermanent reports whether err must not be retried
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}
