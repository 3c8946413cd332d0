package marketplace

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/fee"
	"github.com/feral-file/ff-marketplace-ledger/internal/metrics"
)

// WithdrawPlatformFees moves the accrued platform fees into a payout to the
// platform owner. Only the platform owner may call it.
func (s *service) WithdrawPlatformFees(ctx context.Context, caller string) (*domain.Payout, error) {
	payout, err := s.withdrawPlatformFees(ctx, caller)
	metrics.ObserveOperation("withdraw_platform_fees", err)
	return payout, err
}

func (s *service) withdrawPlatformFees(ctx context.Context, caller string) (*domain.Payout, error) {
	if err := s.requirePlatformOwner(caller); err != nil {
		return nil, err
	}

	s.platformMu.Lock()
	if !domain.IsPositive(s.platform.AccruedFees) {
		s.platformMu.Unlock()
		return nil, domain.ErrNothingToWithdraw
	}

	now := s.clock.Now()
	amount := domain.CloneAmount(s.platform.AccruedFees)
	payout := s.newPayout(domain.PayoutKindPlatformFees, 0, s.config.PlatformOwner, amount, now)
	changes := &domain.ChangeSet{
		PlatformFeeDelta: new(big.Int).Neg(amount),
		Payouts:          []domain.Payout{payout},
		Events: []domain.Event{
			domain.NewEvent(domain.EventPlatformWithdrawn, 0, now, map[string]string{
				"recipient": s.config.PlatformOwner,
				"amount":    amount.String(),
				"payout_id": payout.ID,
			}),
		},
	}

	if err := s.commit(ctx, changes); err != nil {
		s.platformMu.Unlock()
		return nil, err
	}
	s.applyPlatformLocked(changes)
	s.platformMu.Unlock()

	s.dispatch(ctx, changes)
	return &payout, nil
}

// UpdatePlatformFee changes the global platform fee rate. Only the platform owner may call it.
func (s *service) UpdatePlatformFee(ctx context.Context, caller string, platformFeeBps uint64) (*domain.PlatformState, error) {
	state, err := s.updatePlatformFee(ctx, caller, platformFeeBps)
	metrics.ObserveOperation("update_platform_fee", err)
	return state, err
}

func (s *service) updatePlatformFee(ctx context.Context, caller string, platformFeeBps uint64) (*domain.PlatformState, error) {
	if err := s.requirePlatformOwner(caller); err != nil {
		return nil, err
	}
	if err := fee.ValidatePlatformFee(platformFeeBps); err != nil {
		return nil, err
	}

	s.platformMu.Lock()
	previous := s.platform.PlatformFeeBps
	changes := &domain.ChangeSet{
		PlatformFeeBps: &platformFeeBps,
		Events: []domain.Event{
			domain.NewEvent(domain.EventPlatformFeeUpdated, 0, s.clock.Now(), map[string]string{
				"old_fee_bps": strconv.FormatUint(previous, 10),
				"new_fee_bps": strconv.FormatUint(platformFeeBps, 10),
			}),
		},
	}

	if err := s.commit(ctx, changes); err != nil {
		s.platformMu.Unlock()
		return nil, err
	}
	s.applyPlatformLocked(changes)
	state := s.platform.Clone()
	s.platformMu.Unlock()

	s.dispatch(ctx, changes)
	return &state, nil
}

// GetPlatformInfo returns a copy of the platform state
func (s *service) GetPlatformInfo() domain.PlatformState {
	s.platformMu.Lock()
	defer s.platformMu.Unlock()
	return s.platform.Clone()
}

// GetCreatorRoyalties returns the cumulative royalties credited to creator
func (s *service) GetCreatorRoyalties(creator string) (*big.Int, error) {
	creator, err := domain.NormalizeAddress(creator)
	if err != nil {
		return nil, err
	}

	s.platformMu.Lock()
	defer s.platformMu.Unlock()
	return domain.CloneAmount(s.royalties[creator]), nil
}

func (s *service) requirePlatformOwner(caller string) error {
	caller, err := normalizeCaller(caller)
	if err != nil {
		return err
	}
	if caller != s.config.PlatformOwner {
		return fmt.Errorf("%w: only the platform owner can manage platform fees", domain.ErrNotOwner)
	}
	return nil
}
