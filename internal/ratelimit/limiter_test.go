package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
	"github.com/feral-file/ff-marketplace-ledger/internal/mocks"
	"github.com/feral-file/ff-marketplace-ledger/internal/ratelimit"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testLimiterMocks contains all the mocks needed for testing the limiter
type testLimiterMocks struct {
	ctrl             *gomock.Controller
	redisClient      *mocks.MockRedisClient
	redisRateLimiter *mocks.MockRedisRateLimiter
	clock            *mocks.MockClock
	tick             chan time.Time
}

func setupTestLimiter(t *testing.T) *testLimiterMocks {
	ctrl := gomock.NewController(t)
	return &testLimiterMocks{
		ctrl:             ctrl,
		redisClient:      mocks.NewMockRedisClient(ctrl),
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
		clock:            mocks.NewMockClock(ctrl),
		tick:             make(chan time.Time),
	}
}

// controllableClock makes clock.Now return a time the test can move forward
type controllableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *controllableClock) get() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *controllableClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:             true,
		RequestsPerSecond:   5,
		Burst:               10,
		EnableLocalFallback: true,
	}
}

// expectRedisLimiter sets up a limiter backed by the Redis mocks
func expectRedisLimiter(m *testLimiterMocks, pingErr error) {
	m.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(redis.NewStatusResult("PONG", pingErr)).
		Times(1)
	m.redisClient.EXPECT().
		NewRateLimiter().
		Return(m.redisRateLimiter)
	m.clock.EXPECT().
		After(gomock.Any()).
		Return((<-chan time.Time)(m.tick)).
		AnyTimes()
	m.redisClient.EXPECT().
		Close().
		Return(nil)
}

func TestNewLimiter_InvalidConfig(t *testing.T) {
	m := setupTestLimiter(t)

	cfg := testConfig()
	cfg.RequestsPerSecond = 0

	l, err := ratelimit.NewLimiter(cfg, nil, m.clock)
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLimiter_RedisDownWithoutFallback(t *testing.T) {
	m := setupTestLimiter(t)

	m.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(redis.NewStatusResult("", errors.New("connection refused")))

	cfg := testConfig()
	cfg.EnableLocalFallback = false

	l, err := ratelimit.NewLimiter(cfg, m.redisClient, m.clock)
	assert.ErrorIs(t, err, ratelimit.ErrRedisUnavailable)
	assert.Nil(t, l)
}

func TestLimiter_LocalMode(t *testing.T) {
	m := setupTestLimiter(t)
	clk := &controllableClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	m.clock.EXPECT().Now().DoAndReturn(clk.get).AnyTimes()

	cfg := testConfig()
	cfg.RequestsPerSecond = 1
	cfg.Burst = 2

	l, err := ratelimit.NewLimiter(cfg, nil, m.clock)
	require.NoError(t, err)
	defer func() { assert.NoError(t, l.Close()) }()

	ctx := context.Background()

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	// Buckets are per key
	d, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	clk.advance(2 * time.Second)
	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_Redis(t *testing.T) {
	m := setupTestLimiter(t)
	expectRedisLimiter(m, nil)

	l, err := ratelimit.NewLimiter(testConfig(), m.redisClient, m.clock)
	require.NoError(t, err)
	defer func() { assert.NoError(t, l.Close()) }()

	limit := redis_rate.Limit{Rate: 5, Burst: 10, Period: time.Second}
	gomock.InOrder(
		m.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), ratelimit.DEFAULT_KEY_PREFIX+"10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 1, Remaining: 9}, nil),
		m.redisRateLimiter.EXPECT().
			Allow(gomock.Any(), ratelimit.DEFAULT_KEY_PREFIX+"10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 0, Remaining: 0, RetryAfter: 200 * time.Millisecond}, nil),
	)

	d, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Decision{Allowed: true, Remaining: 9}, d)

	d, err = l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Decision{Allowed: false, RetryAfter: 200 * time.Millisecond}, d)
}

func TestLimiter_FallsBackToLocalOnRedisError(t *testing.T) {
	m := setupTestLimiter(t)
	expectRedisLimiter(m, nil)
	m.clock.EXPECT().Now().Return(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	l, err := ratelimit.NewLimiter(testConfig(), m.redisClient, m.clock)
	require.NoError(t, err)
	defer func() { assert.NoError(t, l.Close()) }()

	// Redis is marked unavailable after the first failure
	m.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("i/o timeout")).
		Times(1)

	for range 3 {
		d, err := l.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestLimiter_RedisErrorWithoutFallback(t *testing.T) {
	m := setupTestLimiter(t)
	expectRedisLimiter(m, nil)

	cfg := testConfig()
	cfg.EnableLocalFallback = false

	l, err := ratelimit.NewLimiter(cfg, m.redisClient, m.clock)
	require.NoError(t, err)
	defer func() { assert.NoError(t, l.Close()) }()

	m.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("i/o timeout"))

	_, err = l.Allow(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, ratelimit.ErrRedisUnavailable)

	// Still unavailable until the health check succeeds
	_, err = l.Allow(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, ratelimit.ErrRedisUnavailable)
}

func TestLimiter_RedisRecovers(t *testing.T) {
	m := setupTestLimiter(t)
	expectRedisLimiter(m, errors.New("connection refused"))
	m.clock.EXPECT().Now().Return(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()

	l, err := ratelimit.NewLimiter(testConfig(), m.redisClient, m.clock)
	require.NoError(t, err)
	defer func() { assert.NoError(t, l.Close()) }()

	d, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	m.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(redis.NewStatusResult("PONG", nil)).
		AnyTimes()
	m.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1, Remaining: 7}, nil).
		AnyTimes()

	m.tick <- time.Now()

	assert.Eventually(t, func() bool {
		d, err := l.Allow(context.Background(), "10.0.0.1")
		return err == nil && d.Remaining == 7
	}, time.Second, 10*time.Millisecond)
}

func TestLimiter_CloseIsIdempotent(t *testing.T) {
	m := setupTestLimiter(t)
	expectRedisLimiter(m, nil)

	l, err := ratelimit.NewLimiter(testConfig(), m.redisClient, m.clock)
	require.NoError(t, err)

	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
