package schema

import (
	"time"
)

// PayoutStatus mirrors the payout lifecycle status
type PayoutStatus string

// Payout represents the payouts table - the outbox of funds owed to recipients
type Payout struct {
	// ID is the ULID of the payout, also the custody idempotency key
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Kind is seller_proceeds, bid_refund or platform_fees
	Kind string `gorm:"column:kind;not null;type:text"`
	// TokenID is the related artwork, zero for platform fee withdrawals
	TokenID int64 `gorm:"column:token_id;not null;default:0"`
	// Recipient is the checksummed address that receives the funds
	Recipient string `gorm:"column:recipient;not null;type:text;index:idx_payouts_recipient_status,priority:1"`
	// Amount is the payout amount in the smallest unit
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// Status is pending, completed or withdrawable
	Status PayoutStatus `gorm:"column:status;not null;type:text;index:idx_payouts_recipient_status,priority:2;index:idx_payouts_status_updated_at,priority:1"`
	// Attempts counts custody transfer attempts over all rounds
	Attempts int `gorm:"column:attempts;not null;default:0"`
	// Round is incremented each time a withdrawable payout is re-queued
	Round int `gorm:"column:round;not null;default:0"`
	// LastError is the error of the last failed attempt
	LastError *string `gorm:"column:last_error;type:text"`
	// CreatedAt is the commit time of the operation that created the payout
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// UpdatedAt is the time of the last attempt or status change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;type:timestamptz;index:idx_payouts_status_updated_at,priority:2"`
}

// TableName specifies the table name for the Payout model
func (Payout) TableName() string {
	return "payouts"
}
