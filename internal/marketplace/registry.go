package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// MintArtwork mints a token with the default royalty rate
func (s *service) MintArtwork(ctx context.Context, creator, tokenURI, creatorName string, price *big.Int) (*domain.Artwork, error) {
	return s.MintArtworkWithRoyalty(ctx, creator, tokenURI, creatorName, price, s.config.DefaultRoyaltyBps)
}

// MintArtworkWithRoyalty mints a token owned by its creator. Token ids are
// assigned sequentially from 1 and a positive price lists the token at once.
func (s *service) MintArtworkWithRoyalty(ctx context.Context, creator, tokenURI, creatorName string, price *big.Int, royaltyBps uint64) (*domain.Artwork, error) {
	artwork, err := s.mint(ctx, creator, tokenURI, creatorName, price, royaltyBps)
	metrics.ObserveOperation("mint", err)
	return artwork, err
}

func (s *service) mint(ctx context.Context, creator, tokenURI, creatorName string, price *big.Int, royaltyBps uint64) (*domain.Artwork, error) {
	creator, err := normalizeCaller(creator)
	if err != nil {
		return nil, err
	}
	tokenURI = strings.TrimSpace(tokenURI)
	if tokenURI == "" {
		return nil, fmt.Errorf("%w: token uri is required", domain.ErrInvalidTokenURI)
	}
	if err := fee.ValidateRoyalty(royaltyBps); err != nil {
		return nil, err
	}
	price = domain.CloneAmount(price)
	if price.Sign() < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidPrice)
	}

	s.mintMu.Lock()
	platform := s.GetPlatformInfo()
	now := s.clock.Now()
	tokenID := platform.TotalSupply + 1

	artwork := domain.Artwork{
		TokenID:         tokenID,
		TokenURI:        tokenURI,
		OriginalCreator: creator,
		CreatorName:     creatorName,
		RoyaltyBps:      royaltyBps,
		PlatformFeeBps:  platform.PlatformFeeBps,
		CurrentOwner:    creator,
		CurrentPrice:    price,
		IsForSale:       price.Sign() > 0,
		CreatedAt:       now,
	}
	genesis := domain.OwnershipRecord{
		TokenID:        tokenID,
		Sequence:       1,
		Owner:          creator,
		Timestamp:      now,
		Price:          new(big.Int),
		PlatformFee:    new(big.Int),
		CreatorRoyalty: new(big.Int),
		SaleType:       domain.SaleTypeMint,
	}
	changes := &domain.ChangeSet{
		Artwork:     &artwork,
		Record:      &genesis,
		TotalSupply: &tokenID,
		Events: []domain.Event{
			domain.NewEvent(domain.EventArtworkMinted, tokenID, now, map[string]string{
				"creator":      creator,
				"creator_name": creatorName,
				"token_uri":    tokenURI,
				"price":        price.String(),
				"royalty_bps":  strconv.FormatUint(royaltyBps, 10),
			}),
		},
	}

	if err := s.commit(ctx, changes); err != nil {
		s.mintMu.Unlock()
		return nil, err
	}
	s.apply(changes)
	s.mintMu.Unlock()

	s.dispatch(ctx, changes)

	minted := artwork.Clone()
	return &minted, nil
}

// transferOwnership moves custody of the artwork to newOwner and closes any listing
func transferOwnership(artwork *domain.Artwork, newOwner string) {
	artwork.CurrentOwner = newOwner
	artwork.IsForSale = false
	artwork.CurrentPrice = new(big.Int)
}

func (s *service) GetArtworkInfo(tokenID uint64) (*ArtworkInfo, error) {
	a, err := s.artwork(tokenID)
	if err != nil {
		return nil, err
	}
	return &ArtworkInfo{
		TokenID:         a.TokenID,
		OriginalCreator: a.OriginalCreator,
		CreatorName:     a.CreatorName,
		CurrentPrice:    a.CurrentPrice,
		CreatedAt:       a.CreatedAt,
		IsForSale:       a.IsForSale,
		CurrentOwner:    a.CurrentOwner,
	}, nil
}

func (s *service) GetArtworkInfoWithRoyalty(tokenID uint64) (*ArtworkRoyaltyInfo, error) {
	info, err := s.GetArtworkInfo(tokenID)
	if err != nil {
		return nil, err
	}
	a, err := s.artwork(tokenID)
	if err != nil {
		return nil, err
	}
	return &ArtworkRoyaltyInfo{
		ArtworkInfo: *info,
		RoyaltyBps:  a.RoyaltyBps,
	}, nil
}

func (s *service) TokenURI(tokenID uint64) (string, error) {
	a, err := s.artwork(tokenID)
	if err != nil {
		return "", err
	}
	return a.TokenURI, nil
}

func (s *service) OwnerOf(tokenID uint64) (string, error) {
	a, err := s.artwork(tokenID)
	if err != nil {
		return "", err
	}
	return a.CurrentOwner, nil
}

func (s *service) GetTotalSupply() uint64 {
	return s.GetPlatformInfo().TotalSupply
}

// GetOwnershipHistory returns the full custody log of a token, newest first
func (s *service) GetOwnershipHistory(tokenID uint64) ([]domain.OwnershipRecord, error) {
	if _, err := s.artwork(tokenID); err != nil {
		return nil, err
	}
	return s.ledger.Query(tokenID), nil
}

// GetOwnershipHistoryWithType returns the history and the sale type of each record
func (s *service) GetOwnershipHistoryWithType(tokenID uint64) ([]domain.OwnershipRecord, []domain.SaleType, error) {
	history, err := s.GetOwnershipHistory(tokenID)
	if err != nil {
		return nil, nil, err
	}
	saleTypes := make([]domain.SaleType, len(history))
	for i, r := range history {
		saleTypes[i] = r.SaleType
	}
	return history, saleTypes, nil
}

// GetCompactedOwnershipHistory returns the history with consecutive same-owner records collapsed
func (s *service) GetCompactedOwnershipHistory(tokenID uint64) ([]domain.OwnershipRecord, error) {
	if _, err := s.artwork(tokenID); err != nil {
		return nil, err
	}
	return s.ledger.Compacted(tokenID), nil
}

// GetOwnershipStats aggregates fees, royalties and volume over the raw history
func (s *service) GetOwnershipStats(tokenID uint64) (*domain.HistoryStats, error) {
	if _, err := s.artwork(tokenID); err != nil {
		return nil, err
	}
	stats := s.ledger.Aggregate(tokenID)
	return &stats, nil
}
