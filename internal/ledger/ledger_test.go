package ledger_test

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/ledger"
)

const (
	ownerA = "0x00000000000000000000000000000000000000aA"
	ownerB = "0x00000000000000000000000000000000000000bB"
	ownerC = "0x00000000000000000000000000000000000000cC"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func record(owner string, minutes int, price, platformFee, royalty int64) domain.OwnershipRecord {
	return domain.OwnershipRecord{
		Owner:          owner,
		Timestamp:      baseTime.Add(time.Duration(minutes) * time.Minute),
		Price:          big.NewInt(price),
		PlatformFee:    big.NewInt(platformFee),
		CreatorRoyalty: big.NewInt(royalty),
		SaleType:       domain.SaleTypeDirect,
	}
}

// newestFirst builds a newest-first history from owners listed newest-first
func newestFirst(owners ...string) []domain.OwnershipRecord {
	out := make([]domain.OwnershipRecord, len(owners))
	for i, owner := range owners {
		out[i] = record(owner, len(owners)-i, int64(100*(len(owners)-i)), 1, 5)
		out[i].Sequence = uint64(len(owners) - i) //nolint:gosec,G115
	}
	return out
}

func TestLedger_AppendAndQueryNewestFirst(t *testing.T) {
	l := ledger.New()

	r1 := l.Append(1, record(ownerA, 0, 0, 0, 0))
	r2 := l.Append(1, record(ownerB, 1, 100, 1, 5))
	r3 := l.Append(1, record(ownerC, 2, 200, 2, 10))
	l.Append(2, record(ownerA, 0, 0, 0, 0))

	assert.Equal(t, uint64(1), r1.Sequence)
	assert.Equal(t, uint64(2), r2.Sequence)
	assert.Equal(t, uint64(3), r3.Sequence)
	assert.Equal(t, uint64(4), l.NextSequence(1))
	assert.Equal(t, uint64(2), l.NextSequence(2))

	history := l.Query(1)
	require.Len(t, history, 3)
	assert.Equal(t, ownerC, history[0].Owner)
	assert.Equal(t, ownerB, history[1].Owner)
	assert.Equal(t, ownerA, history[2].Owner)
	assert.Equal(t, uint64(1), history[0].TokenID)

	assert.Len(t, l.Query(2), 1)
	assert.Empty(t, l.Query(3))
}

func TestLedger_QueryReturnsCopies(t *testing.T) {
	l := ledger.New()
	l.Append(1, record(ownerA, 0, 100, 1, 5))

	history := l.Query(1)
	history[0].Price.SetInt64(999)
	history[0].Owner = ownerB

	again := l.Query(1)
	assert.Equal(t, int64(100), again[0].Price.Int64())
	assert.Equal(t, ownerA, again[0].Owner)
}

func TestCompact(t *testing.T) {
	// [C, C, B, B, B, A] newest-first compacts to [C, B, A], each the oldest of its run
	history := newestFirst(ownerC, ownerC, ownerB, ownerB, ownerB, ownerA)

	compacted := ledger.Compact(history)
	require.Len(t, compacted, 3)
	assert.Equal(t, ownerC, compacted[0].Owner)
	assert.Equal(t, ownerB, compacted[1].Owner)
	assert.Equal(t, ownerA, compacted[2].Owner)

	// oldest of each run: the C run is sequences 6,5 -> 5; B run is 4,3,2 -> 2; A is 1
	assert.Equal(t, uint64(5), compacted[0].Sequence)
	assert.Equal(t, uint64(2), compacted[1].Sequence)
	assert.Equal(t, uint64(1), compacted[2].Sequence)
}

func TestCompact_NonAdjacentRepeatsStay(t *testing.T) {
	history := newestFirst(ownerA, ownerB, ownerA)

	compacted := ledger.Compact(history)
	require.Len(t, compacted, 3)
	assert.Equal(t, ownerA, compacted[0].Owner)
	assert.Equal(t, ownerB, compacted[1].Owner)
	assert.Equal(t, ownerA, compacted[2].Owner)
}

func TestCompact_Idempotent(t *testing.T) {
	cases := [][]domain.OwnershipRecord{
		nil,
		newestFirst(ownerA),
		newestFirst(ownerC, ownerC, ownerB, ownerB, ownerB, ownerA),
		newestFirst(ownerA, ownerA, ownerA),
		newestFirst(ownerB, ownerA, ownerA, ownerB, ownerB),
	}
	for _, history := range cases {
		once := ledger.Compact(history)
		twice := ledger.Compact(once)
		assert.Equal(t, once, twice)
	}
}

func TestAggregate_UsesRawHistory(t *testing.T) {
	l := ledger.New()
	l.Append(1, record(ownerA, 0, 0, 0, 0))      // genesis
	l.Append(1, record(ownerB, 1, 1000, 10, 50)) // sale
	l.Append(1, record(ownerB, 2, 2000, 20, 100))
	l.Append(1, record(ownerC, 3, 3000, 30, 150))

	stats := l.Aggregate(1)
	assert.Equal(t, int64(60), stats.TotalPlatformFees.Int64())
	assert.Equal(t, int64(300), stats.TotalCreatorRoyalties.Int64())
	assert.Equal(t, int64(6000), stats.TotalVolume.Int64())
	assert.Equal(t, 3, stats.Sales)
	assert.Equal(t, 4, stats.Records)

	// compaction drops the newer B record but the statistics do not change
	assert.Len(t, l.Compacted(1), 3)
	assert.Equal(t, stats, ledger.Aggregate(l.Query(1)))
}

func TestAggregate_Empty(t *testing.T) {
	stats := ledger.Aggregate(nil)
	assert.Equal(t, int64(0), stats.TotalPlatformFees.Int64())
	assert.Equal(t, int64(0), stats.TotalVolume.Int64())
	assert.Equal(t, 0, stats.Sales)
}

func TestLedger_Restore(t *testing.T) {
	l := ledger.New()
	l.Restore([]domain.OwnershipRecord{
		{TokenID: 7, Sequence: 1, Owner: ownerA, Price: big.NewInt(0)},
		{TokenID: 7, Sequence: 2, Owner: ownerB, Price: big.NewInt(10)},
		{TokenID: 8, Sequence: 1, Owner: ownerC, Price: big.NewInt(0)},
	})

	history := l.Query(7)
	require.Len(t, history, 2)
	assert.Equal(t, ownerB, history[0].Owner)
	assert.Equal(t, uint64(3), l.NextSequence(7))
	assert.Equal(t, uint64(2), l.NextSequence(8))
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	l := ledger.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(uint64(i%5), record(ownerA, i, int64(i), 0, 0)) //nolint:gosec,G115
		}(i)
	}
	wg.Wait()

	for tokenID := uint64(0); tokenID < 5; tokenID++ {
		history := l.Query(tokenID)
		require.Len(t, history, 10)
		for i, r := range history {
			assert.Equal(t, uint64(10-i), r.Sequence) //nolint:gosec,G115
		}
	}
}
