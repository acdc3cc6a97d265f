package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxPerUser = 5
)

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(userID string) string {
	return "user_sessions:" + userID
}

type RedisStore struct {
	rdb        redis.Cmdable
	ttl        time.Duration
	maxPerUser int
	now        func() time.Time
	newID      func() string
	onEvict    func(n int)
	logger     *zap.Logger
}

type Option func(*RedisStore)

func WithClock(now func() time.Time) Option {
	return func(s *RedisStore) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *RedisStore) { s.newID = fn }
}

// WithEvictionHook is called with the number of sessions evicted by Create.
func WithEvictionHook(fn func(n int)) Option {
	return func(s *RedisStore) { s.onEvict = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *RedisStore) { s.logger = logger.Named("session.store") }
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration, maxPerUser int, opts ...Option) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxPerUser
	}

	s := &RedisStore{
		rdb:        rdb,
		ttl:        ttl,
		maxPerUser: maxPerUser,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		logger:     zap.L().Named("session.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Create(ctx context.Context, in CreateInput) (*Session, error) {
	existing, err := s.ListForUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	sess := &Session{
		ID:           s.newID(),
		UserID:       in.UserID,
		Email:        in.Email,
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		LoginTime:    now,
		LastActivity: now,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		DeviceID:     in.DeviceID,
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	var evict []string
	if len(existing) >= s.maxPerUser {
		sort.Slice(existing, func(i, j int) bool {
			return existing[i].LoginTime < existing[j].LoginTime
		})
		for _, old := range existing[:len(existing)-s.maxPerUser+1] {
			evict = append(evict, old.ID)
		}
	}

	userKey := userSessionsKey(in.UserID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range evict {
			pipe.Del(ctx, sessionKey(id))
			pipe.SRem(ctx, userKey, id)
		}
		pipe.Set(ctx, sessionKey(sess.ID), string(payload), s.ttl)
		pipe.SAdd(ctx, userKey, sess.ID)
		pipe.Expire(ctx, userKey, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if len(evict) > 0 {
		s.logger.Info("evicted oldest sessions",
			zap.String("user_id", in.UserID),
			zap.Strings("session_ids", evict),
		)
		if s.onEvict != nil {
			s.onEvict(len(evict))
		}
	}

	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Peek(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.LastActivity = s.now().UnixMilli()
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(id), string(payload), s.ttl)
		pipe.Expire(ctx, userSessionsKey(sess.UserID), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	return sess, nil
}

func (s *RedisStore) Peek(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	sess, err := s.Peek(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, userSessionsKey(sess.UserID), id)
		return nil
	})
	return err
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := userSessionsKey(userID)
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, sessionKey(id))
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	return err
}

func (s *RedisStore) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	userKey := userSessionsKey(userID)
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load user sessions: %w", err)
	}

	sessions := make([]Session, 0, len(ids))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		sessions = append(sessions, sess)
	}

	if len(stale) > 0 {
		if err := s.rdb.SRem(ctx, userKey, stale...).Err(); err != nil {
			s.logger.Warn("prune stale session index failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return sessions, nil
}
