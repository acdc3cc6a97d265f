// Package ratelimit implements a Redis sorted-set sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

//go:generate mockgen -source=limiter.go -destination=mock/limiter_mock.go -package=mock
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

type RedisLimiter struct {
	rdb    redis.Cmdable
	now    func() time.Time
	member func(nowMs int64) string
	logger *zap.Logger
}

type Option func(*RedisLimiter)

func WithClock(now func() time.Time) Option {
	return func(l *RedisLimiter) { l.now = now }
}

// WithMemberFunc overrides the sorted-set member generator. Members must be
// unique per request even within the same millisecond.
func WithMemberFunc(fn func(nowMs int64) string) Option {
	return func(l *RedisLimiter) { l.member = fn }
}

func NewRedisLimiter(rdb redis.Cmdable, logger *zap.Logger, opts ...Option) *RedisLimiter {
	if logger == nil {
		logger = zap.L()
	}
	l := &RedisLimiter{
		rdb: rdb,
		now: time.Now,
		member: func(nowMs int64) string {
			return fmt.Sprintf("%d-%d", nowMs, rand.Uint64())
		},
		logger: logger.Named("ratelimit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func redisKey(key string) string {
	return "rate_limit:" + key
}

// Allow records a hit for key if fewer than limit hits fall inside window.
// Redis failures fail open: the request is allowed and the error is logged.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()
	k := redisKey(key)

	open := Result{Allowed: true, Limit: limit, Remaining: limit, ResetAt: now.Add(window)}

	if err := l.rdb.ZRemRangeByScore(ctx, k, "0", strconv.FormatInt(windowStart, 10)).Err(); err != nil {
		l.logger.Warn("rate limit trim failed, allowing request", zap.String("key", key), zap.Error(err))
		return open, nil
	}

	count, err := l.rdb.ZCard(ctx, k).Result()
	if err != nil {
		l.logger.Warn("rate limit count failed, allowing request", zap.String("key", key), zap.Error(err))
		return open, nil
	}

	if count >= int64(limit) {
		resetAt := now.Add(window)
		oldest, err := l.rdb.ZRangeWithScores(ctx, k, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(window)
		}
		return Result{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, k, redis.Z{Score: float64(nowMs), Member: l.member(nowMs)})
		pipe.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limit record failed, allowing request", zap.String("key", key), zap.Error(err))
		return open, nil
	}

	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(count) - 1,
		ResetAt:   now.Add(window),
	}, nil
}
