package schema

import (
	"time"
)

// PLATFORM_STATE_ID is the id of the single platform_state row
const PLATFORM_STATE_ID = 1

// PlatformState represents the platform_state table - a single row of global settings and balances
type PlatformState struct {
	// ID is always PLATFORM_STATE_ID
	ID int64 `gorm:"column:id;primaryKey"`
	// PlatformFeeBps is the current platform fee rate
	PlatformFeeBps int64 `gorm:"column:platform_fee_bps;not null"`
	// AccruedFees is the platform fee balance not yet withdrawn
	AccruedFees string `gorm:"column:accrued_fees;not null;type:numeric(78,0);default:0"`
	// TotalSupply is the number of minted tokens
	TotalSupply int64 `gorm:"column:total_supply;not null;default:0"`
	// UpdatedAt is the time of the last change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PlatformState model
func (PlatformState) TableName() string {
	return "platform_state"
}
