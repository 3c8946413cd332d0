package dto

import (
	"time"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/marketplace"
	"github.com/feral-file/ff-marketplace-ledger/internal/payout"
)

// ArtworkResponse represents an artwork
type ArtworkResponse struct {
	TokenID         uint64    `json:"token_id"`
	TokenURI        string    `json:"token_uri,omitempty"`
	OriginalCreator string    `json:"original_creator"`
	CreatorName     string    `json:"creator_name"`
	RoyaltyBps      *uint64   `json:"royalty_bps,omitempty"`
	CurrentOwner    string    `json:"current_owner"`
	CurrentPrice    string    `json:"current_price"`
	IsForSale       bool      `json:"is_for_sale"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewArtworkResponse maps a full artwork, including its royalty rate
func NewArtworkResponse(a *domain.Artwork) ArtworkResponse {
	royalty := a.RoyaltyBps
	return ArtworkResponse{
		TokenID:         a.TokenID,
		TokenURI:        a.TokenURI,
		OriginalCreator: a.OriginalCreator,
		CreatorName:     a.CreatorName,
		RoyaltyBps:      &royalty,
		CurrentOwner:    a.CurrentOwner,
		CurrentPrice:    domain.AmountString(a.CurrentPrice),
		IsForSale:       a.IsForSale,
		CreatedAt:       a.CreatedAt,
	}
}

// NewArtworkInfoResponse maps the artwork read model
func NewArtworkInfoResponse(info *marketplace.ArtworkInfo) ArtworkResponse {
	return ArtworkResponse{
		TokenID:         info.TokenID,
		OriginalCreator: info.OriginalCreator,
		CreatorName:     info.CreatorName,
		CurrentOwner:    info.CurrentOwner,
		CurrentPrice:    domain.AmountString(info.CurrentPrice),
		IsForSale:       info.IsForSale,
		CreatedAt:       info.CreatedAt,
	}
}

// NewArtworkRoyaltyInfoResponse maps the artwork read model with its royalty rate
func NewArtworkRoyaltyInfoResponse(info *marketplace.ArtworkRoyaltyInfo) ArtworkResponse {
	resp := NewArtworkInfoResponse(&info.ArtworkInfo)
	royalty := info.RoyaltyBps
	resp.RoyaltyBps = &royalty
	return resp
}

// AuctionResponse represents an auction
type AuctionResponse struct {
	TokenID       uint64    `json:"token_id"`
	Seller        string    `json:"seller"`
	StartPrice    string    `json:"start_price"`
	CurrentBid    string    `json:"current_bid"`
	HighestBidder string    `json:"highest_bidder"`
	EndTime       time.Time `json:"end_time"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	// TimeRemaining is only set by GET /artworks/:id/auction
	TimeRemaining *int64 `json:"time_remaining_seconds,omitempty"`
}

func NewAuctionResponse(a *domain.Auction) AuctionResponse {
	return AuctionResponse{
		TokenID:       a.TokenID,
		Seller:        a.Seller,
		StartPrice:    domain.AmountString(a.StartPrice),
		CurrentBid:    domain.AmountString(a.CurrentBid),
		HighestBidder: a.HighestBidder,
		EndTime:       a.EndTime,
		Active:        a.Active,
		CreatedAt:     a.CreatedAt,
	}
}

func NewAuctionInfoResponse(info *domain.AuctionInfo) AuctionResponse {
	resp := NewAuctionResponse(&info.Auction)
	remaining := int64(info.TimeRemaining / time.Second)
	resp.TimeRemaining = &remaining
	return resp
}

// OwnershipRecordResponse represents one entry of the custody log
type OwnershipRecordResponse struct {
	Sequence       uint64          `json:"sequence"`
	Owner          string          `json:"owner"`
	Timestamp      time.Time       `json:"timestamp"`
	Price          string          `json:"price"`
	PlatformFee    string          `json:"platform_fee"`
	CreatorRoyalty string          `json:"creator_royalty"`
	SaleType       domain.SaleType `json:"sale_type,omitempty"`
}

func NewOwnershipRecordResponse(r domain.OwnershipRecord, withType bool) OwnershipRecordResponse {
	resp := OwnershipRecordResponse{
		Sequence:       r.Sequence,
		Owner:          r.Owner,
		Timestamp:      r.Timestamp,
		Price:          domain.AmountString(r.Price),
		PlatformFee:    domain.AmountString(r.PlatformFee),
		CreatorRoyalty: domain.AmountString(r.CreatorRoyalty),
	}
	if withType {
		resp.SaleType = r.SaleType
	}
	return resp
}

// HistoryResponse is the custody log of a token, newest first
type HistoryResponse struct {
	TokenID uint64                    `json:"token_id"`
	Records []OwnershipRecordResponse `json:"records"`
}

// HistoryStatsResponse aggregates the raw custody log of a token
type HistoryStatsResponse struct {
	TokenID               uint64 `json:"token_id"`
	TotalPlatformFees     string `json:"total_platform_fees"`
	TotalCreatorRoyalties string `json:"total_creator_royalties"`
	TotalVolume           string `json:"total_volume"`
	Sales                 int    `json:"sales"`
	Records               int    `json:"records"`
}

func NewHistoryStatsResponse(tokenID uint64, s *domain.HistoryStats) HistoryStatsResponse {
	return HistoryStatsResponse{
		TokenID:               tokenID,
		TotalPlatformFees:     domain.AmountString(s.TotalPlatformFees),
		TotalCreatorRoyalties: domain.AmountString(s.TotalCreatorRoyalties),
		TotalVolume:           domain.AmountString(s.TotalVolume),
		Sales:                 s.Sales,
		Records:               s.Records,
	}
}

// PayoutResponse represents a queued transfer
type PayoutResponse struct {
	ID        string              `json:"id"`
	Kind      domain.PayoutKind   `json:"kind"`
	TokenID   uint64              `json:"token_id,omitempty"`
	Recipient string              `json:"recipient"`
	Amount    string              `json:"amount"`
	Status    domain.PayoutStatus `json:"status"`
	Attempts  int                 `json:"attempts"`
	Round     int                 `json:"round"`
	LastError string              `json:"last_error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewPayoutResponse(p domain.Payout) PayoutResponse {
	return PayoutResponse{
		ID:        p.ID,
		Kind:      p.Kind,
		TokenID:   p.TokenID,
		Recipient: p.Recipient,
		Amount:    domain.AmountString(p.Amount),
		Status:    p.Status,
		Attempts:  p.Attempts,
		Round:     p.Round,
		LastError: p.LastError,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewPayoutResponses(payouts []domain.Payout) []PayoutResponse {
	out := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, NewPayoutResponse(p))
	}
	return out
}

// PayoutsResponse lists the withdrawable payouts of the caller with its balance
type PayoutsResponse struct {
	Recipient    string           `json:"recipient"`
	Pending      string           `json:"pending"`
	Withdrawable string           `json:"withdrawable"`
	Payouts      []PayoutResponse `json:"payouts"`
}

func NewPayoutsResponse(recipient string, balance *payout.Balance, payouts []domain.Payout) PayoutsResponse {
	return PayoutsResponse{
		Recipient:    recipient,
		Pending:      domain.AmountString(balance.Pending),
		Withdrawable: domain.AmountString(balance.Withdrawable),
		Payouts:      NewPayoutResponses(payouts),
	}
}

// SettlementResponse describes a completed sale
type SettlementResponse struct {
	Artwork      ArtworkResponse         `json:"artwork"`
	Record       OwnershipRecordResponse `json:"record"`
	Seller       string                  `json:"seller"`
	Buyer        string                  `json:"buyer"`
	PlatformFee  string                  `json:"platform_fee"`
	Royalty      string                  `json:"royalty"`
	SellerAmount string                  `json:"seller_amount"`
	Payouts      []PayoutResponse        `json:"payouts"`
}

func NewSettlementResponse(s *marketplace.Settlement) SettlementResponse {
	return SettlementResponse{
		Artwork:      NewArtworkResponse(&s.Artwork),
		Record:       NewOwnershipRecordResponse(s.Record, true),
		Seller:       s.Seller,
		Buyer:        s.Buyer,
		PlatformFee:  domain.AmountString(s.Breakdown.PlatformFee),
		Royalty:      domain.AmountString(s.Breakdown.Royalty),
		SellerAmount: domain.AmountString(s.Breakdown.SellerAmount),
		Payouts:      NewPayoutResponses(s.Payouts),
	}
}

// AuctionResultResponse is the outcome of ending an auction; Settlement is nil without bids
type AuctionResultResponse struct {
	Auction    AuctionResponse     `json:"auction"`
	Settlement *SettlementResponse `json:"settlement"`
}

func NewAuctionResultResponse(r *marketplace.AuctionResult) AuctionResultResponse {
	resp := AuctionResultResponse{Auction: NewAuctionResponse(&r.Auction)}
	if r.Settlement != nil {
		s := NewSettlementResponse(r.Settlement)
		resp.Settlement = &s
	}
	return resp
}

// PlatformResponse holds the platform settings, treasury and constants
type PlatformResponse struct {
	PlatformFeeBps    uint64 `json:"platform_fee_bps"`
	AccruedFees       string `json:"accrued_fees"`
	TotalSupply       uint64 `json:"total_supply"`
	PercentageBase    uint64 `json:"percentage_base"`
	MaxRoyaltyBps     uint64 `json:"max_royalty_bps"`
	MaxPlatformFeeBps uint64 `json:"max_platform_fee_bps"`
}

func NewPlatformResponse(p domain.PlatformState) PlatformResponse {
	return PlatformResponse{
		PlatformFeeBps:    p.PlatformFeeBps,
		AccruedFees:       domain.AmountString(p.AccruedFees),
		TotalSupply:       p.TotalSupply,
		PercentageBase:    domain.PERCENTAGE_BASE,
		MaxRoyaltyBps:     domain.MAX_ROYALTY,
		MaxPlatformFeeBps: domain.MAX_PLATFORM_FEE,
	}
}

type SupplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}

type OwnerResponse struct {
	TokenID uint64 `json:"token_id"`
	Owner   string `json:"owner"`
}

// TokenURIResponse holds the token URI and, when requested, the gateway URL serving it
type TokenURIResponse struct {
	TokenID     uint64 `json:"token_id"`
	TokenURI    string `json:"token_uri"`
	ResolvedURL string `json:"resolved_url,omitempty"`
}

type RoyaltiesResponse struct {
	Creator string `json:"creator"`
	Balance string `json:"balance"`
}

// EventsResponse is a page of the event journal; pass NextCursor as after to continue
type EventsResponse struct {
	Events     []domain.Event `json:"events"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
