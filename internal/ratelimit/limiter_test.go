package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newLimiter(t *testing.T) (*RedisLimiter, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	l := NewRedisLimiter(db, zap.NewNop(),
		WithClock(func() time.Time { return now }),
		WithMemberFunc(func(ms int64) string { return strconv.FormatInt(ms, 10) + "-x" }),
	)
	return l, mock
}

func TestRedisLimiter_AllowsUnderLimit(t *testing.T) {
	l, mock := newLimiter(t)
	window := 15 * time.Minute
	nowMs := now.UnixMilli()
	key := "rate_limit:api:10.0.0.1"

	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(nowMs-window.Milliseconds(), 10)).SetVal(0)
	mock.ExpectZCard(key).SetVal(3)
	mock.ExpectTxPipeline()
	mock.ExpectZAdd(key, redis.Z{Score: float64(nowMs), Member: strconv.FormatInt(nowMs, 10) + "-x"}).SetVal(1)
	mock.ExpectExpire(key, window).SetVal(true)
	mock.ExpectTxPipelineExec()

	res, err := l.Allow(context.Background(), "api:10.0.0.1", 5, window)

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, now.Add(window), res.ResetAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_DeniesAtLimit(t *testing.T) {
	l, mock := newLimiter(t)
	window := 15 * time.Minute
	nowMs := now.UnixMilli()
	key := "rate_limit:auth:10.0.0.1:ana@example.com"
	oldest := now.Add(-10 * time.Minute)

	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(nowMs-window.Milliseconds(), 10)).SetVal(0)
	mock.ExpectZCard(key).SetVal(5)
	mock.ExpectZRangeWithScores(key, 0, 0).SetVal([]redis.Z{{Score: float64(oldest.UnixMilli()), Member: "m"}})

	res, err := l.Allow(context.Background(), "auth:10.0.0.1:ana@example.com", 5, window)

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, oldest.Add(window).UnixMilli(), res.ResetAt.UnixMilli())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	l, mock := newLimiter(t)
	window := time.Minute
	key := "rate_limit:api:1.1.1.1"

	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(now.UnixMilli()-window.Milliseconds(), 10)).
		SetErr(errors.New("connection refused"))

	res, err := l.Allow(context.Background(), "api:1.1.1.1", 1, window)

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
