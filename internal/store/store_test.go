package store

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

const (
	testCreator = "0x1000000000000000000000000000000000000001"
	testBuyer   = "0x2000000000000000000000000000000000000002"
	testBidder  = "0x3000000000000000000000000000000000000003"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildMintChanges builds the change set of a mint
func buildMintChanges(tokenID uint64, price int64) *domain.ChangeSet {
	supply := tokenID
	return &domain.ChangeSet{
		Artwork: &domain.Artwork{
			TokenID:         tokenID,
			TokenURI:        fmt.Sprintf("ipfs://bafy%d", tokenID),
			OriginalCreator: testCreator,
			CreatorName:     "Alice",
			RoyaltyBps:      500,
			PlatformFeeBps:  100,
			CurrentOwner:    testCreator,
			CurrentPrice:    big.NewInt(price),
			IsForSale:       price > 0,
			CreatedAt:       testTime,
		},
		Record: &domain.OwnershipRecord{
			TokenID:        tokenID,
			Sequence:       1,
			Owner:          testCreator,
			Timestamp:      testTime,
			Price:          new(big.Int),
			PlatformFee:    new(big.Int),
			CreatorRoyalty: new(big.Int),
			SaleType:       domain.SaleTypeMint,
		},
		TotalSupply: &supply,
		Events: []domain.Event{
			domain.NewEvent(domain.EventArtworkMinted, tokenID, testTime, map[string]string{"creator": testCreator}),
		},
	}
}

// buildSaleChanges builds the change set of a 10000 wei direct sale of a minted token
func buildSaleChanges(tokenID uint64, sequence uint64, payoutID string) *domain.ChangeSet {
	ts := testTime.Add(time.Hour)
	return &domain.ChangeSet{
		Artwork: &domain.Artwork{
			TokenID:         tokenID,
			TokenURI:        "ignored on update",
			OriginalCreator: testCreator,
			RoyaltyBps:      500,
			PlatformFeeBps:  100,
			CurrentOwner:    testBuyer,
			CurrentPrice:    new(big.Int),
			CreatedAt:       testTime,
		},
		Record: &domain.OwnershipRecord{
			TokenID:        tokenID,
			Sequence:       sequence,
			Owner:          testBuyer,
			Timestamp:      ts,
			Price:          big.NewInt(10000),
			PlatformFee:    big.NewInt(100),
			CreatorRoyalty: big.NewInt(500),
			SaleType:       domain.SaleTypeDirect,
		},
		Royalty:          &domain.RoyaltyCredit{Creator: testCreator, Amount: big.NewInt(500)},
		PlatformFeeDelta: big.NewInt(100),
		Payouts: []domain.Payout{
			buildTestPayout(payoutID, testCreator, 9400, domain.PayoutStatusPending, ts),
		},
		Events: []domain.Event{
			domain.NewEvent(domain.EventArtworkSold, tokenID, ts, map[string]string{"price": "10000"}),
			domain.NewEvent(domain.EventRoyaltyPaid, tokenID, ts, map[string]string{"amount": "500"}),
		},
	}
}

// buildTestPayout creates a test payout
func buildTestPayout(id, recipient string, amount int64, status domain.PayoutStatus, ts time.Time) domain.Payout {
	return domain.Payout{
		ID:        id,
		Kind:      domain.PayoutKindSellerProceeds,
		TokenID:   1,
		Recipient: recipient,
		Amount:    big.NewInt(amount),
		Status:    status,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// =============================================================================
// Tests
// =============================================================================

func testCommitAndLoadSnapshot(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("empty database has no platform state", func(t *testing.T) {
		snapshot, err := store.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Artworks)
		assert.Nil(t, snapshot.Platform)
	})

	require.NoError(t, store.InitPlatformState(ctx, 100))
	// a second init keeps the stored rate
	require.NoError(t, store.InitPlatformState(ctx, 300))

	require.NoError(t, store.Commit(ctx, buildMintChanges(1, 10000)))
	require.NoError(t, store.Commit(ctx, buildMintChanges(2, 0)))
	require.NoError(t, store.Commit(ctx, buildSaleChanges(1, 2, "01HQ0000000000000000000001")))

	snapshot, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snapshot.Artworks, 2)
	sold := snapshot.Artworks[0]
	assert.Equal(t, uint64(1), sold.TokenID)
	assert.Equal(t, testBuyer, sold.CurrentOwner)
	assert.False(t, sold.IsForSale)
	assert.Equal(t, int64(0), sold.CurrentPrice.Int64())
	// immutable columns are not touched by later upserts
	assert.Equal(t, "ipfs://bafy1", sold.TokenURI)
	assert.Equal(t, "Alice", sold.CreatorName)
	assert.Equal(t, testCreator, sold.OriginalCreator)
	assert.Equal(t, uint64(500), sold.RoyaltyBps)
	assert.True(t, testTime.Equal(sold.CreatedAt))

	require.Len(t, snapshot.Records, 3)
	assert.Equal(t, uint64(1), snapshot.Records[0].TokenID)
	assert.Equal(t, uint64(1), snapshot.Records[0].Sequence)
	assert.Equal(t, uint64(1), snapshot.Records[1].TokenID)
	assert.Equal(t, uint64(2), snapshot.Records[1].Sequence)
	assert.Equal(t, domain.SaleTypeDirect, snapshot.Records[1].SaleType)
	assert.Equal(t, int64(10000), snapshot.Records[1].Price.Int64())
	assert.Equal(t, uint64(2), snapshot.Records[2].TokenID)

	require.NotNil(t, snapshot.Platform)
	assert.Equal(t, uint64(100), snapshot.Platform.PlatformFeeBps)
	assert.Equal(t, int64(100), snapshot.Platform.AccruedFees.Int64())
	assert.Equal(t, uint64(2), snapshot.Platform.TotalSupply)

	assert.Equal(t, int64(500), snapshot.Royalties[testCreator].Int64())

	payout, err := store.GetPayout(ctx, "01HQ0000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(9400), payout.Amount.Int64())
	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
}

func testCommitAccumulates(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.InitPlatformState(ctx, 100))

	require.NoError(t, store.Commit(ctx, buildMintChanges(1, 10000)))
	require.NoError(t, store.Commit(ctx, buildSaleChanges(1, 2, "01HQ0000000000000000000001")))
	require.NoError(t, store.Commit(ctx, buildSaleChanges(1, 3, "01HQ0000000000000000000002")))

	// platform fee withdrawal
	bps := uint64(250)
	require.NoError(t, store.Commit(ctx, &domain.ChangeSet{
		PlatformFeeDelta: big.NewInt(-200),
		PlatformFeeBps:   &bps,
	}))

	snapshot, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), snapshot.Royalties[testCreator].Int64())
	assert.Equal(t, int64(0), snapshot.Platform.AccruedFees.Int64())
	assert.Equal(t, uint64(250), snapshot.Platform.PlatformFeeBps)
	assert.Len(t, snapshot.Records, 3)
}

func testCommitIsAtomic(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("uninitialized platform state rolls back the whole change set", func(t *testing.T) {
		err := store.Commit(ctx, buildMintChanges(1, 0))
		require.Error(t, err)

		snapshot, err := store.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Artworks)
		assert.Empty(t, snapshot.Records)

		events, err := store.ListEvents(ctx, domain.EventFilter{})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("duplicate ownership sequence rolls back the payout", func(t *testing.T) {
		require.NoError(t, store.InitPlatformState(ctx, 100))
		require.NoError(t, store.Commit(ctx, buildMintChanges(1, 10000)))

		// sequence 1 is taken by the mint record
		err := store.Commit(ctx, buildSaleChanges(1, 1, "01HQ0000000000000000000009"))
		require.Error(t, err)

		_, err = store.GetPayout(ctx, "01HQ0000000000000000000009")
		assert.ErrorIs(t, err, domain.ErrPayoutNotFound)

		snapshot, err := store.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, testCreator, snapshot.Artworks[0].CurrentOwner)
		assert.Equal(t, int64(0), snapshot.Platform.AccruedFees.Int64())
	})
}

func testAuctions(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.InitPlatformState(ctx, 100))
	require.NoError(t, store.Commit(ctx, buildMintChanges(1, 0)))

	auction := domain.Auction{
		TokenID:    1,
		Seller:     testCreator,
		StartPrice: big.NewInt(1000),
		CurrentBid: new(big.Int),
		EndTime:    testTime.Add(24 * time.Hour),
		Active:     true,
		CreatedAt:  testTime,
	}
	require.NoError(t, store.Commit(ctx, &domain.ChangeSet{Auction: &auction}))

	auction.CurrentBid = big.NewInt(1050)
	auction.HighestBidder = testBidder
	require.NoError(t, store.Commit(ctx, &domain.ChangeSet{
		Auction: &auction,
		Payouts: []domain.Payout{
			buildTestPayout("01HQ0000000000000000000003", testBuyer, 1000, domain.PayoutStatusPending, testTime),
		},
	}))

	snapshot, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Auctions, 1)
	got := snapshot.Auctions[0]
	assert.True(t, got.Active)
	assert.Equal(t, testBidder, got.HighestBidder)
	assert.Equal(t, int64(1050), got.CurrentBid.Int64())
	assert.Equal(t, int64(1000), got.StartPrice.Int64())
	assert.True(t, auction.EndTime.Equal(got.EndTime))
}

func testPayouts(t *testing.T, store Store) {
	ctx := context.Background()

	older := buildTestPayout("01HQ0000000000000000000001", testCreator, 100, domain.PayoutStatusPending, testTime.Add(-time.Hour))
	newer := buildTestPayout("01HQ0000000000000000000002", testCreator, 200, domain.PayoutStatusPending, testTime)
	theirs := buildTestPayout("01HQ0000000000000000000003", testBuyer, 300, domain.PayoutStatusWithdrawable, testTime)
	require.NoError(t, store.SavePayouts(ctx, older, newer, theirs))

	t.Run("save ignores existing ids", func(t *testing.T) {
		dup := older
		dup.Amount = big.NewInt(999)
		require.NoError(t, store.SavePayouts(ctx, dup))

		got, err := store.GetPayout(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Amount.Int64())
	})

	t.Run("get unknown payout", func(t *testing.T) {
		_, err := store.GetPayout(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrPayoutNotFound)
	})

	t.Run("list with filters", func(t *testing.T) {
		all, err := store.ListPayouts(ctx, domain.PayoutFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, older.ID, all[0].ID)

		mine, err := store.ListPayouts(ctx, domain.PayoutFilter{Recipient: testCreator})
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		stale, err := store.ListPayouts(ctx, domain.PayoutFilter{
			Status:        domain.PayoutStatusPending,
			UpdatedBefore: testTime.Add(-time.Minute),
		})
		require.NoError(t, err)
		require.Len(t, stale, 1)
		assert.Equal(t, older.ID, stale[0].ID)

		limited, err := store.ListPayouts(ctx, domain.PayoutFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("update is a compare and set on status", func(t *testing.T) {
		p, err := store.GetPayout(ctx, newer.ID)
		require.NoError(t, err)

		p.Status = domain.PayoutStatusWithdrawable
		p.Attempts = 5
		p.LastError = "custody unavailable (503)"
		p.UpdatedAt = testTime.Add(time.Minute)
		require.NoError(t, store.UpdatePayout(ctx, p, domain.PayoutStatusPending))

		got, err := store.GetPayout(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PayoutStatusWithdrawable, got.Status)
		assert.Equal(t, 5, got.Attempts)
		assert.Equal(t, "custody unavailable (503)", got.LastError)
		assert.True(t, p.UpdatedAt.Equal(got.UpdatedAt))

		// a second writer expecting pending loses
		p.Status = domain.PayoutStatusCompleted
		err = store.UpdatePayout(ctx, p, domain.PayoutStatusPending)
		assert.ErrorIs(t, err, domain.ErrPayoutStateChanged)

		missing := buildTestPayout("missing", testCreator, 1, domain.PayoutStatusPending, testTime)
		err = store.UpdatePayout(ctx, &missing, domain.PayoutStatusPending)
		assert.ErrorIs(t, err, domain.ErrPayoutNotFound)

		// clearing the error on a new round
		got.Status = domain.PayoutStatusPending
		got.Round = 1
		got.LastError = ""
		require.NoError(t, store.UpdatePayout(ctx, got, domain.PayoutStatusWithdrawable))
		got, err = store.GetPayout(ctx, newer.ID)
		require.NoError(t, err)
		assert.Empty(t, got.LastError)
		assert.Equal(t, 1, got.Round)
	})
}

func testListEvents(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.InitPlatformState(ctx, 100))
	require.NoError(t, store.Commit(ctx, buildMintChanges(1, 10000)))
	require.NoError(t, store.Commit(ctx, buildMintChanges(2, 0)))
	require.NoError(t, store.Commit(ctx, buildSaleChanges(1, 2, "01HQ0000000000000000000001")))

	all, err := store.ListEvents(ctx, domain.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, testCreator, all[0].Data["creator"])

	tokenID := uint64(1)
	forToken, err := store.ListEvents(ctx, domain.EventFilter{TokenID: &tokenID})
	require.NoError(t, err)
	assert.Len(t, forToken, 3)

	sold, err := store.ListEvents(ctx, domain.EventFilter{Type: domain.EventArtworkSold})
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "10000", sold[0].Data["price"])

	page, err := store.ListEvents(ctx, domain.EventFilter{After: all[1].ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[2].ID, page[0].ID)
}

func testNormalizeConnectionPoolSettings(t *testing.T, _ Store) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(4, 10, time.Minute, time.Minute)
	assert.Equal(t, 4, open)
	assert.Equal(t, 4, idle)
}

// RunStoreTests runs all store tests against a store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CommitAndLoadSnapshot", testCommitAndLoadSnapshot},
		{"CommitAccumulates", testCommitAccumulates},
		{"CommitIsAtomic", testCommitIsAtomic},
		{"Auctions", testAuctions},
		{"Payouts", testPayouts},
		{"ListEvents", testListEvents},
		{"NormalizeConnectionPoolSettings", testNormalizeConnectionPoolSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
