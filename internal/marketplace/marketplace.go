package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
	"github.com/feral-file/ff-marketplace-ledger/internal/ledger"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/messaging"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

// Marketplace defines the settlement and auction ledger operations
//
//go:generate mockgen -source=marketplace.go -destination=../mocks/marketplace.go -package=mocks -mock_names=Marketplace=MockMarketplace,Committer=MockCommitter
type Marketplace interface {
	// MintArtwork mints a token with the default royalty rate
	MintArtwork(ctx context.Context, creator, tokenURI, creatorName string, price *big.Int) (*domain.Artwork, error)

	// MintArtworkWithRoyalty mints a token with a custom royalty rate in basis points
	MintArtworkWithRoyalty(ctx context.Context, creator, tokenURI, creatorName string, price *big.Int, royaltyBps uint64) (*domain.Artwork, error)

	// ListForSale puts a token up for direct sale
	ListForSale(ctx context.Context, caller string, tokenID uint64, price *big.Int) (*domain.Artwork, error)

	// UnlistFromSale withdraws a direct-sale listing
	UnlistFromSale(ctx context.Context, caller string, tokenID uint64) (*domain.Artwork, error)

	// UpdatePrice changes the price of a listed token
	UpdatePrice(ctx context.Context, caller string, tokenID uint64, newPrice *big.Int) (*domain.Artwork, error)

	// BuyArtwork settles a direct sale; paid must equal the listing price
	BuyArtwork(ctx context.Context, caller string, tokenID uint64, paid *big.Int) (*Settlement, error)

	// CreateAuction starts an English auction on a token
	CreateAuction(ctx context.Context, caller string, tokenID uint64, startPrice *big.Int, durationHours uint64) (*domain.Auction, error)

	// PlaceBid places an escrowed bid on an active auction
	PlaceBid(ctx context.Context, caller string, tokenID uint64, amount *big.Int) (*domain.Auction, error)

	// EndAuction finalizes an expired auction; anyone may call it
	EndAuction(ctx context.Context, caller string, tokenID uint64) (*AuctionResult, error)

	// CancelAuction cancels an auction that has no bids
	CancelAuction(ctx context.Context, caller string, tokenID uint64) (*domain.Auction, error)

	// WithdrawPlatformFees queues the accrued platform fees for the treasury
	WithdrawPlatformFees(ctx context.Context, caller string) (*domain.Payout, error)

	// UpdatePlatformFee changes the global platform fee rate
	UpdatePlatformFee(ctx context.Context, caller string, platformFeeBps uint64) (*domain.PlatformState, error)

	GetArtworkInfo(tokenID uint64) (*ArtworkInfo, error)
	GetArtworkInfoWithRoyalty(tokenID uint64) (*ArtworkRoyaltyInfo, error)
	GetAuctionInfo(tokenID uint64) (*domain.AuctionInfo, error)
	GetOwnershipHistory(tokenID uint64) ([]domain.OwnershipRecord, error)
	GetOwnershipHistoryWithType(tokenID uint64) ([]domain.OwnershipRecord, []domain.SaleType, error)
	GetCompactedOwnershipHistory(tokenID uint64) ([]domain.OwnershipRecord, error)
	GetOwnershipStats(tokenID uint64) (*domain.HistoryStats, error)
	GetCreatorRoyalties(creator string) (*big.Int, error)
	GetTotalSupply() uint64
	GetPlatformInfo() domain.PlatformState
	TokenURI(tokenID uint64) (string, error)
	OwnerOf(tokenID uint64) (string, error)

	// Restore rebuilds the in-memory state from a persisted snapshot
	Restore(snapshot *domain.Snapshot)
}

// Committer persists a change set atomically
type Committer interface {
	Commit(ctx context.Context, changes *domain.ChangeSet) error
}

// Config holds the marketplace settings
type Config struct {
	// PlatformOwner is the admin identity and the treasury that receives platform fees
	PlatformOwner string
	// PlatformFeeBps is the initial platform fee rate
	PlatformFeeBps uint64
	// DefaultRoyaltyBps is the royalty used by MintArtwork
	DefaultRoyaltyBps uint64
	// FreezePlatformFeeAtMint settles every token at the platform rate captured at mint
	// instead of the rate in effect at settlement
	FreezePlatformFeeAtMint bool
}

// ArtworkInfo is the basic artwork read model
type ArtworkInfo struct {
	TokenID         uint64    `json:"token_id"`
	OriginalCreator string    `json:"original_creator"`
	CreatorName     string    `json:"creator_name"`
	CurrentPrice    *big.Int  `json:"current_price"`
	CreatedAt       time.Time `json:"created_at"`
	IsForSale       bool      `json:"is_for_sale"`
	CurrentOwner    string    `json:"current_owner"`
}

// ArtworkRoyaltyInfo is the artwork read model including the royalty rate
type ArtworkRoyaltyInfo struct {
	ArtworkInfo
	RoyaltyBps uint64 `json:"royalty_bps"`
}

// Settlement describes a completed change of custody
type Settlement struct {
	Artwork   domain.Artwork
	Record    domain.OwnershipRecord
	Breakdown fee.Breakdown
	Seller    string
	Buyer     string
	Payouts   []domain.Payout
}

// AuctionResult is the outcome of EndAuction; Settlement is nil when there were no bids
type AuctionResult struct {
	Auction    domain.Auction
	Settlement *Settlement
}

type service struct {
	config     Config
	clock      adapter.Clock
	committer  Committer
	dispatcher payout.Dispatcher
	notifier   messaging.Notifier

	// mu guards artworks and auctions
	mu       sync.RWMutex
	artworks map[uint64]domain.Artwork
	auctions map[uint64]domain.Auction

	tokenLocks sync.Map // uint64 -> *sync.Mutex
	mintMu     sync.Mutex

	// platformMu guards platform and royalties. Lock order is token lock, then platformMu.
	platformMu sync.Mutex
	platform   domain.PlatformState
	royalties  map[string]*big.Int

	ledger *ledger.Ledger
}

// New creates a marketplace. committer, dispatcher and notifier may be nil.
func New(
	config Config,
	clock adapter.Clock,
	committer Committer,
	dispatcher payout.Dispatcher,
	notifier messaging.Notifier,
) (Marketplace, error) {
	owner, err := domain.NormalizeAddress(config.PlatformOwner)
	if err != nil {
		return nil, fmt.Errorf("invalid platform owner: %w", err)
	}
	config.PlatformOwner = owner

	if err := fee.ValidatePlatformFee(config.PlatformFeeBps); err != nil {
		return nil, err
	}
	if err := fee.ValidateRoyalty(config.DefaultRoyaltyBps); err != nil {
		return nil, err
	}

	return &service{
		config:     config,
		clock:      clock,
		committer:  committer,
		dispatcher: dispatcher,
		notifier:   notifier,
		artworks:   make(map[uint64]domain.Artwork),
		auctions:   make(map[uint64]domain.Auction),
		platform: domain.PlatformState{
			PlatformFeeBps: config.PlatformFeeBps,
			AccruedFees:    new(big.Int),
		},
		royalties: make(map[string]*big.Int),
		ledger:    ledger.New(),
	}, nil
}

// Restore rebuilds the in-memory state from a persisted snapshot
func (s *service) Restore(snapshot *domain.Snapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	for _, a := range snapshot.Artworks {
		s.artworks[a.TokenID] = a.Clone()
	}
	for _, a := range snapshot.Auctions {
		s.auctions[a.TokenID] = a.Clone()
	}
	s.mu.Unlock()

	s.ledger.Restore(snapshot.Records)

	s.platformMu.Lock()
	defer s.platformMu.Unlock()
	if snapshot.Platform != nil {
		s.platform = snapshot.Platform.Clone()
	}
	for creator, amount := range snapshot.Royalties {
		s.royalties[creator] = domain.CloneAmount(amount)
	}
}

// lockToken acquires the per-token lock and returns its release function
func (s *service) lockToken(tokenID uint64) func() {
	v, _ := s.tokenLocks.LoadOrStore(tokenID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// artwork returns a copy of the artwork
func (s *service) artwork(tokenID uint64) (domain.Artwork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artworks[tokenID]
	if !ok {
		return domain.Artwork{}, fmt.Errorf("%w: %d", domain.ErrTokenNotFound, tokenID)
	}
	return a.Clone(), nil
}

// auction returns a copy of the token auction, if one was ever created
func (s *service) auction(tokenID uint64) (domain.Auction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[tokenID]
	if !ok {
		return domain.Auction{}, false
	}
	return a.Clone(), true
}

// mutate runs a validated state transition on one token: build the change set
// under the token lock, commit it, apply it, release the lock and only then
// hand payouts and events to their collaborators
func (s *service) mutate(ctx context.Context, operation string, tokenID uint64, build func() (*domain.ChangeSet, error)) (*domain.ChangeSet, error) {
	unlock := s.lockToken(tokenID)
	changes, err := build()
	if err != nil {
		unlock()
		metrics.ObserveOperation(operation, err)
		return nil, err
	}
	if err := s.commit(ctx, changes); err != nil {
		unlock()
		metrics.ObserveOperation(operation, err)
		return nil, err
	}
	s.apply(changes)
	unlock()

	metrics.ObserveOperation(operation, nil)
	s.dispatch(ctx, changes)
	return changes, nil
}

func (s *service) commit(ctx context.Context, changes *domain.ChangeSet) error {
	if s.committer == nil {
		return nil
	}
	if err := s.committer.Commit(ctx, changes); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

// apply writes a committed change set into memory
func (s *service) apply(changes *domain.ChangeSet) {
	s.mu.Lock()
	if changes.Artwork != nil {
		s.artworks[changes.Artwork.TokenID] = changes.Artwork.Clone()
	}
	if changes.Auction != nil {
		s.auctions[changes.Auction.TokenID] = changes.Auction.Clone()
	}
	s.mu.Unlock()

	if changes.Record != nil {
		s.ledger.Append(changes.Record.TokenID, *changes.Record)
	}

	s.platformMu.Lock()
	s.applyPlatformLocked(changes)
	s.platformMu.Unlock()
}

// applyPlatformLocked applies the platform part of a change set; platformMu must be held
func (s *service) applyPlatformLocked(changes *domain.ChangeSet) {
	if changes.PlatformFeeDelta != nil {
		s.platform.AccruedFees = new(big.Int).Add(s.platform.AccruedFees, changes.PlatformFeeDelta)
	}
	if changes.PlatformFeeBps != nil {
		s.platform.PlatformFeeBps = *changes.PlatformFeeBps
	}
	if changes.TotalSupply != nil {
		s.platform.TotalSupply = *changes.TotalSupply
	}
	if changes.Royalty != nil {
		balance := domain.CloneAmount(s.royalties[changes.Royalty.Creator])
		s.royalties[changes.Royalty.Creator] = balance.Add(balance, changes.Royalty.Amount)
	}
}

// dispatch hands committed payouts and events to the dispatcher and notifier.
// Failures are logged only: the state change already succeeded and pending
// payouts are recovered by the sweeper.
func (s *service) dispatch(ctx context.Context, changes *domain.ChangeSet) {
	if len(changes.Payouts) > 0 && s.dispatcher != nil {
		if err := s.dispatcher.Enqueue(ctx, changes.Payouts...); err != nil {
			logger.WarnCtx(ctx, "Failed to enqueue payouts",
				zap.Error(err),
				zap.Int("count", len(changes.Payouts)))
		}
	}
	if len(changes.Events) > 0 && s.notifier != nil {
		if err := s.notifier.Notify(ctx, changes.Events...); err != nil {
			logger.WarnCtx(ctx, "Failed to publish notifications",
				zap.Error(err),
				zap.Int("count", len(changes.Events)))
		}
	}
}

func (s *service) newPayout(kind domain.PayoutKind, tokenID uint64, recipient string, amount *big.Int, now time.Time) domain.Payout {
	return domain.Payout{
		ID:        ulid.MustNewDefault(now).String(),
		Kind:      kind,
		TokenID:   tokenID,
		Recipient: recipient,
		Amount:    domain.CloneAmount(amount),
		Status:    domain.PayoutStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizeCaller(caller string) (string, error) {
	return domain.NormalizeAddress(caller)
}
