package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	KeyApprovers       = "leave:managers"
	DashboardKeyPrefix = "dashboard:stats:"
)

func DashboardKey(userID string) string {
	return DashboardKeyPrefix + userID
}

// Cache is a JSON read-through cache over Redis. A nil rdb or any Redis
// failure degrades to calling the loader directly.
type Cache struct {
	rdb    redis.Cmdable
	sf     *singleflight.Group
	logger *zap.Logger
}

func New(rdb redis.Cmdable, logger ...*zap.Logger) *Cache {
	l := zap.L().Named("cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cache")
	}
	return &Cache{rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// GetOrLoad decodes the cached value at key into dest. On a miss, load runs at
// most once per key across concurrent callers and its result is stored for ttl.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(raw, dest); err == nil {
				return nil
			}
			c.logger.Warn("cached value undecodable, reloading", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			if err := c.rdb.Set(ctx, key, string(payload), ttl).Err(); err != nil {
				c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// Delete removes keys; failures are logged and swallowed.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
