package store

import (
	"context"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

// Store defines the interface for database operations
type Store interface {
	payout.Store

	// Commit persists the change set of one marketplace operation in a single transaction
	Commit(ctx context.Context, changes *domain.ChangeSet) error
	// InitPlatformState creates the platform state row with the given fee rate if it does not exist
	InitPlatformState(ctx context.Context, platformFeeBps uint64) error
	// LoadSnapshot reads the full marketplace state
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)
	// ListEvents returns journaled events in id order
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	// Ping checks the database connection
	Ping(ctx context.Context) error
}
