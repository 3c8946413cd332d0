package marketplace

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// ListForSale puts a token up for direct sale at price
func (s *service) ListForSale(ctx context.Context, caller string, tokenID uint64, price *big.Int) (*domain.Artwork, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var artwork domain.Artwork
	_, err = s.mutate(ctx, "list", tokenID, func() (*domain.ChangeSet, error) {
		artwork, err = s.ownedArtwork(tokenID, caller)
		if err != nil {
			return nil, err
		}
		if !domain.IsPositive(price) {
			return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrInvalidPrice)
		}
		if a, ok := s.auction(tokenID); ok && a.Active {
			return nil, fmt.Errorf("%w: token %d is in an active auction", domain.ErrAuctionAlreadyActive, tokenID)
		}
		if artwork.IsForSale {
			return nil, fmt.Errorf("%w: token %d", domain.ErrAlreadyListed, tokenID)
		}

		now := s.clock.Now()
		artwork.IsForSale = true
		artwork.CurrentPrice = domain.CloneAmount(price)
		return &domain.ChangeSet{
			Artwork: &artwork,
			Events: []domain.Event{
				domain.NewEvent(domain.EventArtworkListed, tokenID, now, map[string]string{
					"seller": caller,
					"price":  price.String(),
				}),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// UnlistFromSale withdraws a listing; the stored price is kept as is
func (s *service) UnlistFromSale(ctx context.Context, caller string, tokenID uint64) (*domain.Artwork, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var artwork domain.Artwork
	_, err = s.mutate(ctx, "unlist", tokenID, func() (*domain.ChangeSet, error) {
		artwork, err = s.ownedArtwork(tokenID, caller)
		if err != nil {
			return nil, err
		}
		if !artwork.IsForSale {
			return nil, fmt.Errorf("%w: token %d", domain.ErrNotListed, tokenID)
		}

		artwork.IsForSale = false
		return &domain.ChangeSet{
			Artwork: &artwork,
			Events: []domain.Event{
				domain.NewEvent(domain.EventArtworkUnlisted, tokenID, s.clock.Now(), map[string]string{
					"seller": caller,
				}),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// UpdatePrice changes the price of a listed token
func (s *service) UpdatePrice(ctx context.Context, caller string, tokenID uint64, newPrice *big.Int) (*domain.Artwork, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var artwork domain.Artwork
	_, err = s.mutate(ctx, "update_price", tokenID, func() (*domain.ChangeSet, error) {
		artwork, err = s.ownedArtwork(tokenID, caller)
		if err != nil {
			return nil, err
		}
		if !artwork.IsForSale {
			return nil, fmt.Errorf("%w: token %d", domain.ErrNotListed, tokenID)
		}
		if !domain.IsPositive(newPrice) {
			return nil, fmt.Errorf("%w: price must be greater than zero", domain.ErrInvalidPrice)
		}

		oldPrice := artwork.CurrentPrice
		artwork.CurrentPrice = domain.CloneAmount(newPrice)
		return &domain.ChangeSet{
			Artwork: &artwork,
			Events: []domain.Event{
				domain.NewEvent(domain.EventArtworkPriceUpdated, tokenID, s.clock.Now(), map[string]string{
					"seller":    caller,
					"old_price": domain.AmountString(oldPrice),
					"new_price": newPrice.String(),
				}),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// BuyArtwork settles a direct sale. The payment must match the listing price exactly.
func (s *service) BuyArtwork(ctx context.Context, caller string, tokenID uint64, paid *big.Int) (*Settlement, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var settlement *Settlement
	_, err = s.mutate(ctx, "buy", tokenID, func() (*domain.ChangeSet, error) {
		artwork, err := s.artwork(tokenID)
		if err != nil {
			return nil, err
		}
		if !artwork.IsForSale {
			return nil, fmt.Errorf("%w: token %d", domain.ErrNotListed, tokenID)
		}
		if artwork.CurrentOwner == caller {
			return nil, fmt.Errorf("%w: token %d", domain.ErrBuyerIsOwner, tokenID)
		}
		if paid == nil || paid.Cmp(artwork.CurrentPrice) != 0 {
			return nil, fmt.Errorf("%w: price is %s, paid %s",
				domain.ErrInsufficientPayment, artwork.CurrentPrice, domain.AmountString(paid))
		}

		var changes *domain.ChangeSet
		settlement, changes, err = s.settle(artwork, caller, artwork.CurrentPrice, domain.SaleTypeDirect, s.clock.Now())
		return changes, err
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveSettlement(domain.SaleTypeDirect, settlement.Record.Price)
	return settlement, nil
}

// ownedArtwork loads the artwork and checks the caller is its current owner
func (s *service) ownedArtwork(tokenID uint64, caller string) (domain.Artwork, error) {
	artwork, err := s.artwork(tokenID)
	if err != nil {
		return domain.Artwork{}, err
	}
	if artwork.CurrentOwner != caller {
		return domain.Artwork{}, fmt.Errorf("%w: token %d", domain.ErrNotOwner, tokenID)
	}
	return artwork, nil
}
