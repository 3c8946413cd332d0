package domain

import (
	"math/big"
	"time"
)

// SaleType represents how a change of custody happened
type SaleType string

const (
	SaleTypeMint    SaleType = "mint"
	SaleTypeDirect  SaleType = "direct_sale"
	SaleTypeAuction SaleType = "auction"
)

// Artwork is the canonical registry record of a token
type Artwork struct {
	TokenID         uint64    `json:"token_id"`
	TokenURI        string    `json:"token_uri"`
	OriginalCreator string    `json:"original_creator"` // immutable after mint
	CreatorName     string    `json:"creator_name"`     // immutable after mint
	RoyaltyBps      uint64    `json:"royalty_bps"`      // [0, MAX_ROYALTY], frozen at mint
	PlatformFeeBps  uint64    `json:"platform_fee_bps"` // platform rate captured at mint
	CurrentOwner    string    `json:"current_owner"`
	CurrentPrice    *big.Int  `json:"current_price"` // meaningful only while IsForSale
	IsForSale       bool      `json:"is_for_sale"`
	CreatedAt       time.Time `json:"created_at"`
}

// Clone returns a deep copy of the artwork
func (a Artwork) Clone() Artwork {
	a.CurrentPrice = CloneAmount(a.CurrentPrice)
	return a
}

// Auction is the English auction state of a token
type Auction struct {
	TokenID       uint64    `json:"token_id"`
	Seller        string    `json:"seller"`
	StartPrice    *big.Int  `json:"start_price"`
	CurrentBid    *big.Int  `json:"current_bid"`              // zero until the first bid
	HighestBidder string    `json:"highest_bidder,omitempty"` // empty until the first bid
	EndTime       time.Time `json:"end_time"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Clone returns a deep copy of the auction
func (a Auction) Clone() Auction {
	a.StartPrice = CloneAmount(a.StartPrice)
	a.CurrentBid = CloneAmount(a.CurrentBid)
	return a
}

// HasBids reports whether the auction received at least one bid
func (a Auction) HasBids() bool {
	return a.CurrentBid != nil && a.CurrentBid.Sign() > 0
}

// AuctionInfo is the read model of an auction
type AuctionInfo struct {
	Auction
	TimeRemaining time.Duration `json:"time_remaining"`
}

// OwnershipRecord is one entry of the append-only custody log
type OwnershipRecord struct {
	TokenID        uint64    `json:"token_id"`
	Sequence       uint64    `json:"sequence"` // 1-based append order within the token
	Owner          string    `json:"owner"`
	Timestamp      time.Time `json:"timestamp"`
	Price          *big.Int  `json:"price"` // zero for the genesis record
	PlatformFee    *big.Int  `json:"platform_fee"`
	CreatorRoyalty *big.Int  `json:"creator_royalty"`
	SaleType       SaleType  `json:"sale_type"`
}

// Clone returns a deep copy of the record
func (r OwnershipRecord) Clone() OwnershipRecord {
	r.Price = CloneAmount(r.Price)
	r.PlatformFee = CloneAmount(r.PlatformFee)
	r.CreatorRoyalty = CloneAmount(r.CreatorRoyalty)
	return r
}

// HistoryStats aggregates the raw ownership history of a token
type HistoryStats struct {
	TotalPlatformFees     *big.Int `json:"total_platform_fees"`
	TotalCreatorRoyalties *big.Int `json:"total_creator_royalties"`
	TotalVolume           *big.Int `json:"total_volume"`
	Sales                 int      `json:"sales"`
	Records               int      `json:"records"`
}

// PlatformState holds the marketplace-wide settings and treasury accrual
type PlatformState struct {
	PlatformFeeBps uint64   `json:"platform_fee_bps"`
	AccruedFees    *big.Int `json:"accrued_fees"`
	TotalSupply    uint64   `json:"total_supply"`
}

// Clone returns a deep copy of the platform state
func (p PlatformState) Clone() PlatformState {
	p.AccruedFees = CloneAmount(p.AccruedFees)
	return p
}

// PayoutKind represents the reason a payout exists
type PayoutKind string

const (
	PayoutKindSellerProceeds PayoutKind = "seller_proceeds"
	PayoutKindBidRefund      PayoutKind = "bid_refund"
	PayoutKindPlatformFees   PayoutKind = "platform_fees"
)

// PayoutStatus represents the delivery state of a payout
type PayoutStatus string

const (
	PayoutStatusPending      PayoutStatus = "pending"
	PayoutStatusCompleted    PayoutStatus = "completed"
	PayoutStatusWithdrawable PayoutStatus = "withdrawable"
)

// Payout is a queued transfer of funds owed by the marketplace
type Payout struct {
	ID        string       `json:"id"` // ULID, also the custody idempotency key
	Kind      PayoutKind   `json:"kind"`
	TokenID   uint64       `json:"token_id"`
	Recipient string       `json:"recipient"`
	Amount    *big.Int     `json:"amount"`
	Status    PayoutStatus `json:"status"`
	Attempts  int          `json:"attempts"`
	Round     int          `json:"round"` // incremented every time a withdrawable payout is re-queued
	LastError string       `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the payout
func (p Payout) Clone() Payout {
	p.Amount = CloneAmount(p.Amount)
	return p
}

// PayoutFilter selects payouts; zero fields match everything
type PayoutFilter struct {
	Recipient     string
	Status        PayoutStatus
	UpdatedBefore time.Time
	Limit         int
}

// EventFilter selects journaled events in id order
type EventFilter struct {
	TokenID *uint64
	Type    EventType
	After   string // event id cursor, exclusive
	Limit   int
}

// RoyaltyCredit is an increment of a creator royalty balance
type RoyaltyCredit struct {
	Creator string
	Amount  *big.Int
}

// ChangeSet is everything one operation commits atomically
type ChangeSet struct {
	Artwork          *Artwork
	Auction          *Auction
	Record           *OwnershipRecord
	Royalty          *RoyaltyCredit
	PlatformFeeDelta *big.Int // signed, added to the accrued platform fees
	PlatformFeeBps   *uint64
	TotalSupply      *uint64
	Payouts          []Payout
	Events           []Event
}

// Snapshot is the persisted state used to rebuild the marketplace at boot
type Snapshot struct {
	Artworks  []Artwork
	Auctions  []Auction
	Records   []OwnershipRecord // ordered by token id then sequence
	Royalties map[string]*big.Int
	Platform  *PlatformState
}
