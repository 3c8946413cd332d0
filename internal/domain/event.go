package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents the type of marketplace notification
type EventType string

const (
	EventArtworkMinted       EventType = "artwork.minted"
	EventArtworkListed       EventType = "artwork.listed"
	EventArtworkUnlisted     EventType = "artwork.unlisted"
	EventArtworkPriceUpdated EventType = "artwork.price_updated"
	EventArtworkSold         EventType = "artwork.sold"
	EventRoyaltyPaid         EventType = "royalty.paid"
	EventAuctionCreated      EventType = "auction.created"
	EventBidPlaced           EventType = "auction.bid_placed"
	EventAuctionEnded        EventType = "auction.ended"
	EventAuctionCancelled    EventType = "auction.cancelled"
	EventPlatformFeeUpdated  EventType = "platform.fee_updated"
	EventPlatformWithdrawn   EventType = "platform.fees_withdrawn"
)

// Event is a notification emitted after a committed state change
type Event struct {
	ID        string            `json:"id"` // ULID, time-sortable
	Type      EventType         `json:"type"`
	TokenID   uint64            `json:"token_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// NewEvent creates an event with a fresh ULID for the given time
func NewEvent(eventType EventType, tokenID uint64, ts time.Time, data map[string]string) Event {
	return Event{
		ID:        ulid.MustNewDefault(ts).String(),
		Type:      eventType,
		TokenID:   tokenID,
		Timestamp: ts,
		Data:      data,
	}
}
