package schema

import (
	"time"
)

// Artwork represents the artworks table - one row per minted token
type Artwork struct {
	// TokenID is the sequential marketplace token id
	TokenID int64 `gorm:"column:token_id;primaryKey"`
	// TokenURI points at the artwork metadata (ipfs://, ar:// or http(s)://)
	TokenURI string `gorm:"column:token_uri;not null;type:text"`
	// OriginalCreator is the checksummed address of the minter, immutable
	OriginalCreator string `gorm:"column:original_creator;not null;type:text;index"`
	// CreatorName is the display name given at mint
	CreatorName string `gorm:"column:creator_name;not null;type:text;default:''"`
	// RoyaltyBps is the creator royalty in basis points, frozen at mint
	RoyaltyBps int64 `gorm:"column:royalty_bps;not null"`
	// PlatformFeeBps is the platform fee rate captured at mint
	PlatformFeeBps int64 `gorm:"column:platform_fee_bps;not null"`
	// CurrentOwner is the checksummed address of the current owner
	CurrentOwner string `gorm:"column:current_owner;not null;type:text;index"`
	// CurrentPrice is the listing price in the smallest unit (numeric(78,0) as string)
	CurrentPrice string `gorm:"column:current_price;not null;type:numeric(78,0);default:0"`
	// IsForSale indicates an open direct-sale listing
	IsForSale bool `gorm:"column:is_for_sale;not null;default:false"`
	// CreatedAt is the mint time
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// UpdatedAt is the time of the last change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Artwork model
func (Artwork) TableName() string {
	return "artworks"
}
