package payout

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// MemoryStore is an in-process Store for tests
type MemoryStore struct {
	mu      sync.RWMutex
	payouts map[string]domain.Payout
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payouts: make(map[string]domain.Payout)}
}

func (m *MemoryStore) SavePayouts(_ context.Context, payouts ...domain.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range payouts {
		if _, ok := m.payouts[p.ID]; ok {
			continue
		}
		m.payouts[p.ID] = p.Clone()
	}
	return nil
}

func (m *MemoryStore) GetPayout(_ context.Context, id string) (*domain.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPayoutNotFound, id)
	}
	out := p.Clone()
	return &out, nil
}

func (m *MemoryStore) UpdatePayout(_ context.Context, payout *domain.Payout, expected domain.PayoutStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.payouts[payout.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPayoutNotFound, payout.ID)
	}
	if current.Status != expected {
		return fmt.Errorf("%w: %s is %s, expected %s", domain.ErrPayoutStateChanged, payout.ID, current.Status, expected)
	}
	m.payouts[payout.ID] = payout.Clone()
	return nil
}

func (m *MemoryStore) ListPayouts(_ context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Payout
	for _, p := range m.payouts {
		if filter.Recipient != "" && p.Recipient != filter.Recipient {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if !filter.UpdatedBefore.IsZero() && !p.UpdatedAt.Before(filter.UpdatedBefore) {
			continue
		}
		out = append(out, p.Clone())
	}
	// ULIDs sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
