package schema

import (
	"time"

	"gorm.io/datatypes"
)

// MarketplaceEvent represents the marketplace_events table - the journal of emitted notifications
type MarketplaceEvent struct {
	// ID is the ULID of the event; ordering by id is ordering by time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Type is the event type, e.g. artwork.sold
	Type string `gorm:"column:type;not null;type:text;index"`
	// TokenID is nil for platform events
	TokenID *int64 `gorm:"column:token_id;index"`
	// Timestamp is the time of the operation that emitted the event
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
	// Data contains the event attributes as a JSON object of strings
	Data datatypes.JSON `gorm:"column:data;type:jsonb"`
}

// TableName specifies the table name for the MarketplaceEvent model
func (MarketplaceEvent) TableName() string {
	return "marketplace_events"
}
