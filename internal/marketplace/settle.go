package marketplace

import (
	"math/big"
	"strconv"
	"time"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
)

// settle builds the change set of a sale of artwork to buyer at price: the fee
// split, the custody transfer, the ownership record, the royalty credit, the
// platform fee accrual and the seller proceeds payout. The token lock must be held.
func (s *service) settle(artwork domain.Artwork, buyer string, price *big.Int, saleType domain.SaleType, now time.Time) (*Settlement, *domain.ChangeSet, error) {
	platformFeeBps := s.effectivePlatformFee(artwork)
	breakdown, err := fee.Split(price, platformFeeBps, artwork.RoyaltyBps)
	if err != nil {
		return nil, nil, err
	}

	seller := artwork.CurrentOwner
	transferOwnership(&artwork, buyer)

	record := domain.OwnershipRecord{
		TokenID:        artwork.TokenID,
		Sequence:       s.ledger.NextSequence(artwork.TokenID),
		Owner:          buyer,
		Timestamp:      now,
		Price:          domain.CloneAmount(price),
		PlatformFee:    breakdown.PlatformFee,
		CreatorRoyalty: breakdown.Royalty,
		SaleType:       saleType,
	}

	changes := &domain.ChangeSet{
		Artwork:          &artwork,
		Record:           &record,
		PlatformFeeDelta: breakdown.PlatformFee,
		Events: []domain.Event{
			domain.NewEvent(domain.EventArtworkSold, artwork.TokenID, now, map[string]string{
				"seller":           seller,
				"buyer":            buyer,
				"price":            price.String(),
				"platform_fee":     breakdown.PlatformFee.String(),
				"creator_royalty":  breakdown.Royalty.String(),
				"seller_amount":    breakdown.SellerAmount.String(),
				"platform_fee_bps": strconv.FormatUint(platformFeeBps, 10),
				"sale_type":        string(saleType),
			}),
		},
	}

	if breakdown.Royalty.Sign() > 0 {
		changes.Royalty = &domain.RoyaltyCredit{
			Creator: artwork.OriginalCreator,
			Amount:  breakdown.Royalty,
		}
		changes.Events = append(changes.Events,
			domain.NewEvent(domain.EventRoyaltyPaid, artwork.TokenID, now, map[string]string{
				"creator": artwork.OriginalCreator,
				"amount":  breakdown.Royalty.String(),
			}))
	}
	if breakdown.SellerAmount.Sign() > 0 {
		changes.Payouts = append(changes.Payouts,
			s.newPayout(domain.PayoutKindSellerProceeds, artwork.TokenID, seller, breakdown.SellerAmount, now))
	}

	return &Settlement{
		Artwork:   artwork.Clone(),
		Record:    record.Clone(),
		Breakdown: breakdown,
		Seller:    seller,
		Buyer:     buyer,
		Payouts:   changes.Payouts,
	}, changes, nil
}

// effectivePlatformFee returns the platform rate a sale of artwork settles at
func (s *service) effectivePlatformFee(artwork domain.Artwork) uint64 {
	if s.config.FreezePlatformFeeAtMint {
		return artwork.PlatformFeeBps
	}
	return s.GetPlatformInfo().PlatformFeeBps
}
