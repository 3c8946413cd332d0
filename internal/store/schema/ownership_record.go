package schema

import (
	"time"
)

// SaleType mirrors the sale type of an ownership record
type SaleType string

// OwnershipRecord represents the ownership_records table - the append-only custody log
type OwnershipRecord struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID references the artwork
	TokenID int64 `gorm:"column:token_id;not null;uniqueIndex:idx_ownership_records_token_sequence,priority:1"`
	// Sequence is the 1-based position of the record within the token history
	Sequence int64 `gorm:"column:sequence;not null;uniqueIndex:idx_ownership_records_token_sequence,priority:2"`
	// Owner is the owner after this record
	Owner string `gorm:"column:owner;not null;type:text"`
	// Price is the sale price, zero for the mint record
	Price string `gorm:"column:price;not null;type:numeric(78,0)"`
	// PlatformFee is the fee taken from this sale
	PlatformFee string `gorm:"column:platform_fee;not null;type:numeric(78,0)"`
	// CreatorRoyalty is the royalty credited from this sale
	CreatorRoyalty string `gorm:"column:creator_royalty;not null;type:numeric(78,0)"`
	// SaleType is mint, direct_sale or auction
	SaleType SaleType `gorm:"column:sale_type;not null;type:text"`
	// Timestamp is the settlement time
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`

	// Associations
	Artwork Artwork `gorm:"foreignKey:TokenID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the OwnershipRecord model
func (OwnershipRecord) TableName() string {
	return "ownership_records"
}
