package sweeper_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/mocks"
	"github.com/feral-file/ff-marketplace-ledger/internal/sweeper"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testSweeperMocks contains all the mocks needed for testing the sweeper
type testSweeperMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockPayoutStore
	dispatcher *mocks.MockDispatcher
	clock      *mocks.MockClock
	sweeper    sweeper.Sweeper
}

// setupTestSweeper creates all the mocks and sweeper for testing
func setupTestSweeper(t *testing.T) *testSweeperMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	tm := &testSweeperMocks{
		ctrl:       ctrl,
		store:      mocks.NewMockPayoutStore(ctrl),
		dispatcher: mocks.NewMockDispatcher(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}

	tm.sweeper = sweeper.NewPayoutSweeper(sweeper.PayoutSweeperConfig{
		Interval:   time.Minute,
		StaleAfter: 5 * time.Minute,
		BatchSize:  10,
	}, tm.store, tm.dispatcher, tm.clock)

	tm.clock.EXPECT().Now().Return(testNow).AnyTimes()
	return tm
}

// tearDownTestSweeper cleans up the test mocks
func tearDownTestSweeper(mocks *testSweeperMocks) {
	mocks.ctrl.Finish()
}

// expectIdleSleep makes every sleep between cycles block until the sweeper is stopped
func (tm *testSweeperMocks) expectIdleSleep() {
	tm.clock.EXPECT().After(time.Minute).Return(make(chan time.Time)).AnyTimes()
}

func stalePayout(id string) domain.Payout {
	return domain.Payout{
		ID:        id,
		Kind:      domain.PayoutKindBidRefund,
		Recipient: "0x3000000000000000000000000000000000000003",
		Amount:    big.NewInt(1000),
		Status:    domain.PayoutStatusPending,
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	}
}

func staleFilter() domain.PayoutFilter {
	return domain.PayoutFilter{
		Status:        domain.PayoutStatusPending,
		UpdatedBefore: testNow.Add(-5 * time.Minute),
		Limit:         10,
	}
}

func TestPayoutSweeper_Name(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)

	assert.Equal(t, "payout-sweeper", mocks.sweeper.Name())
}

func TestPayoutSweeper_ReenqueuesStalePayouts(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)
	ctx := context.Background()

	p1, p2 := stalePayout("01A"), stalePayout("01B")
	mocks.store.EXPECT().ListPayouts(gomock.Any(), staleFilter()).Return([]domain.Payout{p1, p2}, nil)
	mocks.expectIdleSleep()

	enqueued := make(chan struct{})
	mocks.dispatcher.EXPECT().Enqueue(gomock.Any(), p1, p2).
		DoAndReturn(func(context.Context, ...domain.Payout) error {
			close(enqueued)
			return nil
		})

	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()

	<-enqueued
	require.NoError(t, mocks.sweeper.Stop(ctx))
	require.NoError(t, <-errChan)
}

func TestPayoutSweeper_NothingStale(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)
	ctx := context.Background()

	listed := make(chan struct{})
	mocks.store.EXPECT().ListPayouts(gomock.Any(), staleFilter()).
		DoAndReturn(func(context.Context, domain.PayoutFilter) ([]domain.Payout, error) {
			close(listed)
			return nil, nil
		})
	mocks.expectIdleSleep()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()

	<-listed
	require.NoError(t, mocks.sweeper.Stop(ctx))
	require.NoError(t, <-errChan)
}

func TestPayoutSweeper_ContinuesAfterErrors(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)
	ctx := context.Background()

	// every sleep ends immediately so the second cycle runs
	mocks.clock.EXPECT().After(time.Minute).DoAndReturn(func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- testNow
		return ch
	}).AnyTimes()

	done := make(chan struct{})
	p := stalePayout("01A")
	gomock.InOrder(
		mocks.store.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("database connection failed")),
		mocks.store.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).
			Return([]domain.Payout{p}, nil),
		mocks.dispatcher.EXPECT().Enqueue(gomock.Any(), p).
			DoAndReturn(func(context.Context, ...domain.Payout) error {
				close(done)
				return errors.New("payout queue is full")
			}),
	)
	// later cycles until Stop lands
	mocks.store.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()

	<-done
	require.NoError(t, mocks.sweeper.Stop(ctx))
	require.NoError(t, <-errChan)
}

func TestPayoutSweeper_ContextCanceled(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	mocks.store.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	mocks.expectIdleSleep()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()

	cancel()
	require.NoError(t, <-errChan)
}

func TestPayoutSweeper_StopBeforeStart(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)

	require.NoError(t, mocks.sweeper.Stop(context.Background()))
}

func TestPayoutSweeper_DoubleStart(t *testing.T) {
	mocks := setupTestSweeper(t)
	defer tearDownTestSweeper(mocks)
	ctx := context.Background()

	listed := make(chan struct{})
	mocks.store.EXPECT().ListPayouts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.PayoutFilter) ([]domain.Payout, error) {
			close(listed)
			return nil, nil
		})
	mocks.expectIdleSleep()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()
	<-listed

	err := mocks.sweeper.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, mocks.sweeper.Stop(ctx))
	require.NoError(t, <-errChan)
}
