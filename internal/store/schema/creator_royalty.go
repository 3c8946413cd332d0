package schema

import (
	"time"
)

// CreatorRoyalty represents the creator_royalties table - cumulative royalties per creator
type CreatorRoyalty struct {
	// Creator is the checksummed creator address
	Creator string `gorm:"column:creator;primaryKey;type:text"`
	// Amount is the cumulative royalty credited to the creator
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// UpdatedAt is the time of the last credit
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CreatorRoyalty model
func (CreatorRoyalty) TableName() string {
	return "creator_royalties"
}
