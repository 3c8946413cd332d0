package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-marketplace-ledger/internal/adapter"
	"github.com/feral-file/ff-marketplace-ledger/internal/config"
	"github.com/feral-file/ff-marketplace-ledger/internal/logger"
)

const (
	DEFAULT_KEY_PREFIX            = "ff-marketplace:ratelimit:"
	DEFAULT_HEALTH_CHECK_INTERVAL = 30 * time.Second
)

// ErrRedisUnavailable is returned when Redis cannot be reached and the local fallback is disabled
var ErrRedisUnavailable = errors.New("redis rate limiter unavailable")

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long the client should wait before the next request, zero when allowed
	RetryAfter time.Duration
}

// Limiter limits requests per client key
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockRateLimiter
type Limiter interface {
	// Allow consumes one request for key
	Allow(ctx context.Context, key string) (Decision, error)

	// Close stops the Redis health monitor and closes the connection
	Close() error
}

type limiter struct {
	config config.RateLimitConfig
	clock  adapter.Clock

	redis          adapter.RedisClient
	distributed    adapter.RedisRateLimiter
	redisLimit     redis_rate.Limit
	redisAvailable atomic.Bool

	mu     sync.Mutex
	locals map[string]*rate.Limiter

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewLimiter creates a limiter. With a nil Redis client every replica limits on its own;
// otherwise Redis holds the buckets and the local limiter takes over while Redis is down.
func NewLimiter(cfg config.RateLimitConfig, rc adapter.RedisClient, clock adapter.Clock) (Limiter, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l := &limiter{
		config: cfg,
		clock:  clock,
		redis:  rc,
		locals: make(map[string]*rate.Limiter),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if rc == nil {
		close(l.doneCh)
		logger.Info("Rate limiter initialized in local mode",
			zap.Float64("requests_per_second", cfg.RequestsPerSecond),
			zap.Int("burst", cfg.Burst))
		return l, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	available := true
	if err := rc.Ping(ctx).Err(); err != nil {
		available = false
		if !cfg.EnableLocalFallback {
			return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
		}
		logger.Warn("Redis unavailable, will use local fallback", zap.Error(err))
	}

	l.distributed = rc.NewRateLimiter()
	l.redisLimit = redisLimit(cfg.RequestsPerSecond, cfg.Burst)
	l.redisAvailable.Store(available)

	go l.monitorRedisHealth()

	logger.Info("Rate limiter initialized",
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
		zap.Bool("redis_available", available),
		zap.Bool("local_fallback", cfg.EnableLocalFallback))

	return l, nil
}

func (l *limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.distributed != nil && l.redisAvailable.Load() {
		res, err := l.distributed.Allow(ctx, l.config.RedisKeyPrefix+key, l.redisLimit)
		if err == nil {
			return Decision{
				Allowed:    res.Allowed > 0,
				Remaining:  res.Remaining,
				RetryAfter: max(res.RetryAfter, 0),
			}, nil
		}
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}

		l.redisAvailable.Store(false)
		if !l.config.EnableLocalFallback {
			return Decision{}, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
		}
		logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local", zap.Error(err))
	} else if l.distributed != nil && !l.config.EnableLocalFallback {
		return Decision{}, ErrRedisUnavailable
	}

	return l.allowLocal(key), nil
}

// allowLocal takes a token from the in-process bucket of key
func (l *limiter) allowLocal(key string) Decision {
	l.mu.Lock()
	lim, ok := l.locals[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
		l.locals[key] = lim
	}
	l.mu.Unlock()

	now := l.clock.Now()
	if lim.AllowN(now, 1) {
		return Decision{Allowed: true, Remaining: int(lim.TokensAt(now))}
	}

	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return Decision{Allowed: false, RetryAfter: delay}
}

// monitorRedisHealth pings Redis periodically and switches back to it once it recovers
func (l *limiter) monitorRedisHealth() {
	defer close(l.doneCh)

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.clock.After(l.config.HealthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := l.redis.Ping(ctx).Err()
		cancel()

		available := err == nil
		if wasAvailable := l.redisAvailable.Swap(available); !wasAvailable && available {
			logger.Info("Redis connection restored")
		} else if wasAvailable && !available {
			logger.Warn("Redis health check failed", zap.Error(err))
		}
	}
}

func (l *limiter) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.stopCh)
		<-l.doneCh

		if l.redis != nil {
			if closeErr := l.redis.Close(); closeErr != nil {
				logger.Warn("Error closing Redis connection", zap.Error(closeErr))
				err = closeErr
			}
		}
	})
	return err
}

// redisLimit converts a per-second rate into a GCRA limit; rates below one request
// per second stretch the period instead
func redisLimit(rps float64, burst int) redis_rate.Limit {
	if rps >= 1 {
		return redis_rate.Limit{Rate: int(math.Round(rps)), Burst: burst, Period: time.Second}
	}
	return redis_rate.Limit{Rate: 1, Burst: burst, Period: time.Duration(float64(time.Second) / rps)}
}

// validateConfig validates and sets defaults for the configuration
func validateConfig(cfg *config.RateLimitConfig) error {
	if cfg.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(int(math.Ceil(cfg.RequestsPerSecond)), 1)
	}
	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = DEFAULT_KEY_PREFIX
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DEFAULT_HEALTH_CHECK_INTERVAL
	}
	return nil
}
