package store

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/store/schema"
)

// parseNumeric parses a numeric(78,0) column value
func parseNumeric(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse numeric value %q", s)
	}
	return v, nil
}

func toSchemaArtwork(a *domain.Artwork) schema.Artwork {
	return schema.Artwork{
		TokenID:         int64(a.TokenID), //nolint:gosec,G115
		TokenURI:        a.TokenURI,
		OriginalCreator: a.OriginalCreator,
		CreatorName:     a.CreatorName,
		RoyaltyBps:      int64(a.RoyaltyBps),     //nolint:gosec,G115
		PlatformFeeBps:  int64(a.PlatformFeeBps), //nolint:gosec,G115
		CurrentOwner:    a.CurrentOwner,
		CurrentPrice:    domain.AmountString(a.CurrentPrice),
		IsForSale:       a.IsForSale,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       time.Now().UTC(),
	}
}

func toDomainArtwork(a *schema.Artwork) (*domain.Artwork, error) {
	price, err := parseNumeric(a.CurrentPrice)
	if err != nil {
		return nil, err
	}
	return &domain.Artwork{
		TokenID:         uint64(a.TokenID), //nolint:gosec,G115
		TokenURI:        a.TokenURI,
		OriginalCreator: a.OriginalCreator,
		CreatorName:     a.CreatorName,
		RoyaltyBps:      uint64(a.RoyaltyBps),     //nolint:gosec,G115
		PlatformFeeBps:  uint64(a.PlatformFeeBps), //nolint:gosec,G115
		CurrentOwner:    a.CurrentOwner,
		CurrentPrice:    price,
		IsForSale:       a.IsForSale,
		CreatedAt:       a.CreatedAt.UTC(),
	}, nil
}

func toSchemaAuction(a *domain.Auction) schema.Auction {
	var bidder *string
	if a.HighestBidder != "" {
		bidder = &a.HighestBidder
	}
	return schema.Auction{
		TokenID:       int64(a.TokenID), //nolint:gosec,G115
		Seller:        a.Seller,
		StartPrice:    domain.AmountString(a.StartPrice),
		CurrentBid:    domain.AmountString(a.CurrentBid),
		HighestBidder: bidder,
		EndTime:       a.EndTime,
		Active:        a.Active,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     time.Now().UTC(),
	}
}

func toDomainAuction(a *schema.Auction) (*domain.Auction, error) {
	startPrice, err := parseNumeric(a.StartPrice)
	if err != nil {
		return nil, err
	}
	currentBid, err := parseNumeric(a.CurrentBid)
	if err != nil {
		return nil, err
	}
	auction := &domain.Auction{
		TokenID:    uint64(a.TokenID), //nolint:gosec,G115
		Seller:     a.Seller,
		StartPrice: startPrice,
		CurrentBid: currentBid,
		EndTime:    a.EndTime.UTC(),
		Active:     a.Active,
		CreatedAt:  a.CreatedAt.UTC(),
	}
	if a.HighestBidder != nil {
		auction.HighestBidder = *a.HighestBidder
	}
	return auction, nil
}

func toSchemaOwnershipRecord(r *domain.OwnershipRecord) schema.OwnershipRecord {
	return schema.OwnershipRecord{
		TokenID:        int64(r.TokenID),  //nolint:gosec,G115
		Sequence:       int64(r.Sequence), //nolint:gosec,G115
		Owner:          r.Owner,
		Price:          domain.AmountString(r.Price),
		PlatformFee:    domain.AmountString(r.PlatformFee),
		CreatorRoyalty: domain.AmountString(r.CreatorRoyalty),
		SaleType:       schema.SaleType(r.SaleType),
		Timestamp:      r.Timestamp,
	}
}

func toDomainOwnershipRecord(r *schema.OwnershipRecord) (*domain.OwnershipRecord, error) {
	price, err := parseNumeric(r.Price)
	if err != nil {
		return nil, err
	}
	platformFee, err := parseNumeric(r.PlatformFee)
	if err != nil {
		return nil, err
	}
	royalty, err := parseNumeric(r.CreatorRoyalty)
	if err != nil {
		return nil, err
	}
	return &domain.OwnershipRecord{
		TokenID:        uint64(r.TokenID),  //nolint:gosec,G115
		Sequence:       uint64(r.Sequence), //nolint:gosec,G115
		Owner:          r.Owner,
		Timestamp:      r.Timestamp.UTC(),
		Price:          price,
		PlatformFee:    platformFee,
		CreatorRoyalty: royalty,
		SaleType:       domain.SaleType(r.SaleType),
	}, nil
}

func toDomainPlatformState(p *schema.PlatformState) (*domain.PlatformState, error) {
	accrued, err := parseNumeric(p.AccruedFees)
	if err != nil {
		return nil, err
	}
	return &domain.PlatformState{
		PlatformFeeBps: uint64(p.PlatformFeeBps), //nolint:gosec,G115
		AccruedFees:    accrued,
		TotalSupply:    uint64(p.TotalSupply), //nolint:gosec,G115
	}, nil
}

func toSchemaPayout(p *domain.Payout) schema.Payout {
	var lastError *string
	if p.LastError != "" {
		lastError = &p.LastError
	}
	return schema.Payout{
		ID:        p.ID,
		Kind:      string(p.Kind),
		TokenID:   int64(p.TokenID), //nolint:gosec,G115
		Recipient: p.Recipient,
		Amount:    domain.AmountString(p.Amount),
		Status:    schema.PayoutStatus(p.Status),
		Attempts:  p.Attempts,
		Round:     p.Round,
		LastError: lastError,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toDomainPayout(p *schema.Payout) (*domain.Payout, error) {
	amount, err := parseNumeric(p.Amount)
	if err != nil {
		return nil, err
	}
	payout := &domain.Payout{
		ID:        p.ID,
		Kind:      domain.PayoutKind(p.Kind),
		TokenID:   uint64(p.TokenID), //nolint:gosec,G115
		Recipient: p.Recipient,
		Amount:    amount,
		Status:    domain.PayoutStatus(p.Status),
		Attempts:  p.Attempts,
		Round:     p.Round,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
	if p.LastError != nil {
		payout.LastError = *p.LastError
	}
	return payout, nil
}

func toSchemaEvent(e domain.Event) (schema.MarketplaceEvent, error) {
	event := schema.MarketplaceEvent{
		ID:        e.ID,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
	}
	if e.TokenID != 0 {
		tokenID := int64(e.TokenID) //nolint:gosec,G115
		event.TokenID = &tokenID
	}
	if len(e.Data) > 0 {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return schema.MarketplaceEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
		}
		event.Data = datatypes.JSON(data)
	}
	return event, nil
}

func toDomainEvent(e *schema.MarketplaceEvent) (*domain.Event, error) {
	event := &domain.Event{
		ID:        e.ID,
		Type:      domain.EventType(e.Type),
		Timestamp: e.Timestamp.UTC(),
	}
	if e.TokenID != nil {
		event.TokenID = uint64(*e.TokenID) //nolint:gosec,G115
	}
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, &event.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
	}
	return event, nil
}
