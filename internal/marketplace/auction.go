package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// CreateAuction starts an English auction. The token must not be listed for
// direct sale and the duration is given in whole hours.
func (s *service) CreateAuction(ctx context.Context, caller string, tokenID uint64, startPrice *big.Int, durationHours uint64) (*domain.Auction, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var auction domain.Auction
	_, err = s.mutate(ctx, "create_auction", tokenID, func() (*domain.ChangeSet, error) {
		artwork, err := s.ownedArtwork(tokenID, caller)
		if err != nil {
			return nil, err
		}
		if !domain.IsPositive(startPrice) {
			return nil, fmt.Errorf("%w: start price must be greater than zero", domain.ErrInvalidPrice)
		}
		if durationHours < domain.MIN_AUCTION_DURATION_HOURS || durationHours > domain.MAX_AUCTION_DURATION_HOURS {
			return nil, fmt.Errorf("%w: %d hours is outside [%d, %d]", domain.ErrDurationOutOfRange,
				durationHours, domain.MIN_AUCTION_DURATION_HOURS, domain.MAX_AUCTION_DURATION_HOURS)
		}
		if artwork.IsForSale {
			return nil, fmt.Errorf("%w: unlist token %d before auctioning it", domain.ErrAlreadyListed, tokenID)
		}
		if a, ok := s.auction(tokenID); ok && a.Active {
			return nil, fmt.Errorf("%w: token %d", domain.ErrAuctionAlreadyActive, tokenID)
		}

		now := s.clock.Now()
		auction = domain.Auction{
			TokenID:    tokenID,
			Seller:     caller,
			StartPrice: domain.CloneAmount(startPrice),
			CurrentBid: new(big.Int),
			EndTime:    now.Add(domain.AuctionDuration(durationHours)),
			Active:     true,
			CreatedAt:  now,
		}
		return &domain.ChangeSet{
			Auction: &auction,
			Events: []domain.Event{
				domain.NewEvent(domain.EventAuctionCreated, tokenID, now, map[string]string{
					"seller":      caller,
					"start_price": startPrice.String(),
					"end_time":    auction.EndTime.Format(time.RFC3339),
				}),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	created := auction.Clone()
	return &created, nil
}

// PlaceBid records a new highest bid. The displaced bid is queued for refund
// to its bidder, which may be the new bidder itself.
func (s *service) PlaceBid(ctx context.Context, caller string, tokenID uint64, amount *big.Int) (*domain.Auction, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var auction domain.Auction
	_, err = s.mutate(ctx, "place_bid", tokenID, func() (*domain.ChangeSet, error) {
		var err error
		auction, err = s.activeAuction(tokenID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if !now.Before(auction.EndTime) {
			return nil, fmt.Errorf("%w: token %d auction ended at %s",
				domain.ErrAuctionExpired, tokenID, auction.EndTime.Format(time.RFC3339))
		}
		if caller == auction.Seller {
			return nil, fmt.Errorf("%w: token %d", domain.ErrBidderIsSeller, tokenID)
		}
		minBid := fee.MinimumNextBid(auction.CurrentBid, auction.StartPrice)
		if amount == nil || amount.Cmp(minBid) < 0 {
			return nil, fmt.Errorf("%w: minimum bid is %s", domain.ErrBidTooLow, minBid)
		}

		changes := &domain.ChangeSet{}
		data := map[string]string{
			"bidder": caller,
			"amount": amount.String(),
		}
		if auction.HasBids() {
			changes.Payouts = append(changes.Payouts,
				s.newPayout(domain.PayoutKindBidRefund, tokenID, auction.HighestBidder, auction.CurrentBid, now))
			data["previous_bidder"] = auction.HighestBidder
			data["previous_bid"] = auction.CurrentBid.String()
		}

		auction.CurrentBid = domain.CloneAmount(amount)
		auction.HighestBidder = caller
		changes.Auction = &auction
		changes.Events = append(changes.Events, domain.NewEvent(domain.EventBidPlaced, tokenID, now, data))
		return changes, nil
	})
	metrics.ObserveBid(err)
	if err != nil {
		return nil, err
	}
	placed := auction.Clone()
	return &placed, nil
}

// EndAuction finalizes an auction once its end time has passed. Anyone may
// call it. An auction without bids closes without a sale.
func (s *service) EndAuction(ctx context.Context, caller string, tokenID uint64) (*AuctionResult, error) {
	if _, err := normalizeCaller(caller); err != nil {
		return nil, err
	}

	var result AuctionResult
	_, err := s.mutate(ctx, "end_auction", tokenID, func() (*domain.ChangeSet, error) {
		auction, err := s.activeAuction(tokenID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if now.Before(auction.EndTime) {
			return nil, fmt.Errorf("%w: token %d auction ends at %s",
				domain.ErrAuctionNotExpired, tokenID, auction.EndTime.Format(time.RFC3339))
		}

		auction.Active = false
		result = AuctionResult{Auction: auction.Clone()}

		if !auction.HasBids() {
			return &domain.ChangeSet{
				Auction: &auction,
				Events: []domain.Event{
					domain.NewEvent(domain.EventAuctionEnded, tokenID, now, map[string]string{
						"seller":      auction.Seller,
						"winner":      "",
						"final_price": "0",
					}),
				},
			}, nil
		}

		artwork, err := s.artwork(tokenID)
		if err != nil {
			return nil, err
		}
		settlement, changes, err := s.settle(artwork, auction.HighestBidder, auction.CurrentBid, domain.SaleTypeAuction, now)
		if err != nil {
			return nil, err
		}
		result.Settlement = settlement

		changes.Auction = &auction
		changes.Events = append(changes.Events,
			domain.NewEvent(domain.EventAuctionEnded, tokenID, now, map[string]string{
				"seller":      auction.Seller,
				"winner":      auction.HighestBidder,
				"final_price": auction.CurrentBid.String(),
			}))
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Settlement != nil {
		metrics.ObserveSettlement(domain.SaleTypeAuction, result.Settlement.Record.Price)
	}
	return &result, nil
}

// CancelAuction cancels an active auction that has not received a bid
func (s *service) CancelAuction(ctx context.Context, caller string, tokenID uint64) (*domain.Auction, error) {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return nil, err
	}

	var auction domain.Auction
	_, err = s.mutate(ctx, "cancel_auction", tokenID, func() (*domain.ChangeSet, error) {
		var err error
		auction, err = s.activeAuction(tokenID)
		if err != nil {
			return nil, err
		}
		if auction.Seller != caller {
			return nil, fmt.Errorf("%w: only the seller can cancel the auction of token %d", domain.ErrNotOwner, tokenID)
		}
		if auction.HasBids() {
			return nil, fmt.Errorf("%w: token %d", domain.ErrAuctionHasBids, tokenID)
		}

		auction.Active = false
		return &domain.ChangeSet{
			Auction: &auction,
			Events: []domain.Event{
				domain.NewEvent(domain.EventAuctionCancelled, tokenID, s.clock.Now(), map[string]string{
					"seller": caller,
				}),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	cancelled := auction.Clone()
	return &cancelled, nil
}

// GetAuctionInfo returns the auction of a token. Expiry is not applied
// implicitly: the auction stays active until EndAuction is called.
func (s *service) GetAuctionInfo(tokenID uint64) (*domain.AuctionInfo, error) {
	if _, err := s.artwork(tokenID); err != nil {
		return nil, err
	}
	auction, ok := s.auction(tokenID)
	if !ok {
		return nil, fmt.Errorf("%w: token %d has never been auctioned", domain.ErrNoActiveAuction, tokenID)
	}

	remaining := auction.EndTime.Sub(s.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return &domain.AuctionInfo{
		Auction:       auction,
		TimeRemaining: remaining,
	}, nil
}

// activeAuction loads the token auction and checks it is active
func (s *service) activeAuction(tokenID uint64) (domain.Auction, error) {
	if _, err := s.artwork(tokenID); err != nil {
		return domain.Auction{}, err
	}
	auction, ok := s.auction(tokenID)
	if !ok || !auction.Active {
		return domain.Auction{}, fmt.Errorf("%w: token %d", domain.ErrNoActiveAuction, tokenID)
	}
	return auction, nil
}
