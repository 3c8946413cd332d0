package fee

import (
	"fmt"
	"math/big"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

var percentageBase = big.NewInt(domain.PERCENTAGE_BASE)

// Breakdown is the distribution of a sale price
type Breakdown struct {
	PlatformFee  *big.Int
	Royalty      *big.Int
	SellerAmount *big.Int
}

// Split divides a price into platform fee, creator royalty and seller proceeds.
// Fee and royalty truncate; the truncation remainder stays with the seller.
func Split(price *big.Int, platformFeeBps, royaltyBps uint64) (Breakdown, error) {
	if price == nil || price.Sign() < 0 {
		return Breakdown{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidPrice)
	}
	if platformFeeBps+royaltyBps > domain.PERCENTAGE_BASE {
		return Breakdown{}, fmt.Errorf("%w: platform fee %d bps + royalty %d bps > %d",
			domain.ErrFeesExceedBase, platformFeeBps, royaltyBps, domain.PERCENTAGE_BASE)
	}

	platformFee := portion(price, platformFeeBps)
	royalty := portion(price, royaltyBps)
	seller := new(big.Int).Sub(price, platformFee)
	seller.Sub(seller, royalty)

	return Breakdown{
		PlatformFee:  platformFee,
		Royalty:      royalty,
		SellerAmount: seller,
	}, nil
}

// ValidateRoyalty checks a royalty rate against MAX_ROYALTY
func ValidateRoyalty(royaltyBps uint64) error {
	if royaltyBps > domain.MAX_ROYALTY {
		return fmt.Errorf("%w: %d bps exceeds maximum of %d bps", domain.ErrRoyaltyOutOfRange, royaltyBps, domain.MAX_ROYALTY)
	}
	return nil
}

// ValidatePlatformFee checks a platform fee rate against MAX_PLATFORM_FEE
func ValidatePlatformFee(platformFeeBps uint64) error {
	if platformFeeBps > domain.MAX_PLATFORM_FEE {
		return fmt.Errorf("%w: %d bps exceeds maximum of %d bps", domain.ErrFeeOutOfRange, platformFeeBps, domain.MAX_PLATFORM_FEE)
	}
	return nil
}

// MinimumNextBid returns the smallest acceptable bid: the start price before the
// first bid, then the current bid plus 5% (truncated), and never less than
// currentBid+1 so accepted bids strictly increase
func MinimumNextBid(currentBid, startPrice *big.Int) *big.Int {
	if currentBid == nil || currentBid.Sign() == 0 {
		return domain.CloneAmount(startPrice)
	}
	minBid := new(big.Int).Mul(currentBid, big.NewInt(domain.MIN_BID_INCREMENT_NUMERATOR))
	minBid.Quo(minBid, big.NewInt(domain.MIN_BID_INCREMENT_DENOMINATOR))
	if minBid.Cmp(currentBid) <= 0 {
		minBid.Add(currentBid, big.NewInt(1))
	}
	return minBid
}

func portion(price *big.Int, bps uint64) *big.Int {
	p := new(big.Int).Mul(price, new(big.Int).SetUint64(bps))
	return p.Quo(p, percentageBase)
}
