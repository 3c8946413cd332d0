package schema

import (
	"time"
)

// Auction represents the auctions table - the latest auction of each token
type Auction struct {
	// TokenID references the auctioned artwork
	TokenID int64 `gorm:"column:token_id;primaryKey"`
	// Seller is the owner that started the auction
	Seller string `gorm:"column:seller;not null;type:text"`
	// StartPrice is the minimum first bid
	StartPrice string `gorm:"column:start_price;not null;type:numeric(78,0)"`
	// CurrentBid is the escrowed highest bid, zero until the first bid
	CurrentBid string `gorm:"column:current_bid;not null;type:numeric(78,0);default:0"`
	// HighestBidder is nil until the first bid
	HighestBidder *string `gorm:"column:highest_bidder;type:text"`
	// EndTime is the instant from which bids are rejected
	EndTime time.Time `gorm:"column:end_time;not null;type:timestamptz"`
	// Active is false once the auction was ended or cancelled
	Active bool `gorm:"column:active;not null"`
	// CreatedAt is the time the auction started
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// UpdatedAt is the time of the last bid or state change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Artwork Artwork `gorm:"foreignKey:TokenID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Auction model
func (Auction) TableName() string {
	return "auctions"
}
