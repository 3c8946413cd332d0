package dto

// Amounts are base-10 strings in the smallest currency unit (wei)

// MintArtworkRequest is the body of POST /artworks.
// RoyaltyBps selects mintArtworkWithRoyalty; without it the default royalty applies.
type MintArtworkRequest struct {
	TokenURI    string  `json:"token_uri" binding:"required"`
	CreatorName string  `json:"creator_name"`
	Price       string  `json:"price"`
	RoyaltyBps  *uint64 `json:"royalty_bps"`
}

// PriceRequest is the body of POST and PATCH /artworks/:id/listing
type PriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// PurchaseRequest is the body of POST /artworks/:id/purchase
type PurchaseRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// CreateAuctionRequest is the body of POST /artworks/:id/auction.
// DurationHours is range-checked by the marketplace, zero included.
type CreateAuctionRequest struct {
	StartPrice    string `json:"start_price" binding:"required"`
	DurationHours uint64 `json:"duration_hours"`
}

// BidRequest is the body of POST /artworks/:id/auction/bids
type BidRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// UpdatePlatformFeeRequest is the body of PUT /platform/fee
type UpdatePlatformFeeRequest struct {
	PlatformFeeBps *uint64 `json:"platform_fee_bps" binding:"required"`
}

// HistoryQuery holds the query parameters of GET /artworks/:id/history
type HistoryQuery struct {
	WithType bool `form:"with_type"`
	Compact  bool `form:"compact"`
}

// EventsQuery holds the query parameters of GET /events
type EventsQuery struct {
	TokenID *uint64 `form:"token_id"`
	Type    string  `form:"type"`
	After   string  `form:"after"`
	Limit   int     `form:"limit,default=50"`
}
