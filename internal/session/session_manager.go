package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const DefaultIdleTimeout = 2 * time.Hour

var ErrIdleTimeout = errors.New("session expired due to inactivity")

// Manager layers the inactivity policy on top of a Store. The store's TTL
// bounds absolute lifetime; the manager's idle timeout bounds the gap between
// requests.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewManager(store Store, idleTimeout time.Duration, logger ...*zap.Logger) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	l := zap.L().Named("session.manager")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("session.manager")
	}
	return &Manager{store: store, idleTimeout: idleTimeout, now: time.Now, logger: l}
}

// WithClock is for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Create(ctx context.Context, in CreateInput) (*Session, error) {
	return m.store.Create(ctx, in)
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Validate resolves a session for an incoming request. Sessions idle longer
// than the timeout are deleted and reported as ErrIdleTimeout; otherwise the
// session is refreshed. Store failures are returned as-is so callers fail
// closed.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	sess, err := m.store.Peek(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.now().Sub(sess.LastActiveAt()) > m.idleTimeout {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("delete idle session failed", zap.String("session_id", id), zap.Error(err))
		}
		m.logger.Info("session expired due to inactivity",
			zap.String("session_id", id),
			zap.String("user_id", sess.UserID),
		)
		return nil, ErrIdleTimeout
	}

	return m.store.Get(ctx, id)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *Manager) DeleteAllForUser(ctx context.Context, userID string) error {
	return m.store.DeleteAllForUser(ctx, userID)
}

func (m *Manager) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	return m.store.ListForUser(ctx, userID)
}
