package ledger

import (
	"math/big"
	"sync"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// Ledger is the append-only custody log of every token.
// Records are stored oldest-first and served newest-first.
type Ledger struct {
	mu      sync.RWMutex
	records map[uint64][]domain.OwnershipRecord
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		records: make(map[uint64][]domain.OwnershipRecord),
	}
}

// Append adds a record to the token history and returns it with its sequence assigned
func (l *Ledger) Append(tokenID uint64, record domain.OwnershipRecord) domain.OwnershipRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	record = record.Clone()
	record.TokenID = tokenID
	record.Sequence = uint64(len(l.records[tokenID])) + 1
	l.records[tokenID] = append(l.records[tokenID], record)
	return record.Clone()
}

// NextSequence returns the sequence the next appended record of the token will get
func (l *Ledger) NextSequence(tokenID uint64) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.records[tokenID])) + 1
}

// Restore replaces the history of every token present in records.
// Records must be ordered by sequence within a token.
func (l *Ledger) Restore(records []domain.OwnershipRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	restored := make(map[uint64][]domain.OwnershipRecord)
	for _, r := range records {
		restored[r.TokenID] = append(restored[r.TokenID], r.Clone())
	}
	for tokenID, history := range restored {
		l.records[tokenID] = history
	}
}

// Query returns a copy of the token history, newest first
func (l *Ledger) Query(tokenID uint64) []domain.OwnershipRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := l.records[tokenID]
	out := make([]domain.OwnershipRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i].Clone())
	}
	return out
}

// Compacted returns the newest-first history with same-owner runs collapsed
func (l *Ledger) Compacted(tokenID uint64) []domain.OwnershipRecord {
	return Compact(l.Query(tokenID))
}

// Aggregate returns the statistics of the raw token history
func (l *Ledger) Aggregate(tokenID uint64) domain.HistoryStats {
	return Aggregate(l.Query(tokenID))
}

// Compact collapses adjacent records of a newest-first history that share an
// owner into the oldest record of that run. Owners that re-acquire a token
// later are kept as separate entries.
func Compact(records []domain.OwnershipRecord) []domain.OwnershipRecord {
	out := make([]domain.OwnershipRecord, 0, len(records))
	for i, r := range records {
		if i+1 < len(records) && records[i+1].Owner == r.Owner {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Aggregate sums fees and royalties over every record and the price of every
// sale (price > 0). It must be given the raw, uncompacted history.
func Aggregate(records []domain.OwnershipRecord) domain.HistoryStats {
	stats := domain.HistoryStats{
		TotalPlatformFees:     new(big.Int),
		TotalCreatorRoyalties: new(big.Int),
		TotalVolume:           new(big.Int),
		Records:               len(records),
	}
	for _, r := range records {
		if r.PlatformFee != nil {
			stats.TotalPlatformFees.Add(stats.TotalPlatformFees, r.PlatformFee)
		}
		if r.CreatorRoyalty != nil {
			stats.TotalCreatorRoyalties.Add(stats.TotalCreatorRoyalties, r.CreatorRoyalty)
		}
		if domain.IsPositive(r.Price) {
			stats.TotalVolume.Add(stats.TotalVolume, r.Price)
			stats.Sales++
		}
	}
	return stats
}
