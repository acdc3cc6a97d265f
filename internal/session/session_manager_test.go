package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with the same semantics as RedisStore minus
// TTL expiry.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	max      int
	now      func() time.Time
	seq      int
}

func newMemStore(max int, now func() time.Time) *memStore {
	return &memStore{sessions: map[string]Session{}, max: max, now: now}
}

func (m *memStore) Create(_ context.Context, in CreateInput) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var mine []Session
	for _, s := range m.sessions {
		if s.UserID == in.UserID {
			mine = append(mine, s)
		}
	}
	if len(mine) >= m.max {
		sort.Slice(mine, func(i, j int) bool { return mine[i].LoginTime < mine[j].LoginTime })
		for _, old := range mine[:len(mine)-m.max+1] {
			delete(m.sessions, old.ID)
		}
	}

	m.seq++
	now := m.now().UnixMilli()
	s := Session{ID: fmt.Sprintf("s%d", m.seq), UserID: in.UserID, Role: in.Role, LoginTime: now, LastActivity: now}
	m.sessions[s.ID] = s
	return &s, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.LastActivity = m.now().UnixMilli()
	m.sessions[id] = s
	return &s, nil
}

func (m *memStore) Peek(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memStore) ListForUser(_ context.Context, userID string) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestManager_Validate_IdleTimeout(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	store := newMemStore(5, clk.now)
	mgr := NewManager(store, 2*time.Hour).WithClock(clk.now)

	sess, err := mgr.Create(ctx, CreateInput{UserID: "u1"})
	require.NoError(t, err)

	// Three reads an hour apart keep the session alive.
	for i := 0; i < 3; i++ {
		clk.advance(time.Hour)
		got, err := mgr.Validate(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, clk.t.UnixMilli(), got.LastActivity)
	}

	// A three hour gap exceeds the idle timeout.
	clk.advance(3 * time.Hour)
	_, err = mgr.Validate(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrIdleTimeout)

	_, err = store.Peek(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound, "idle session must be deleted")
}

func TestManager_Validate_ExactlyAtTimeoutIsAlive(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	mgr := NewManager(newMemStore(5, clk.now), 2*time.Hour).WithClock(clk.now)

	sess, err := mgr.Create(ctx, CreateInput{UserID: "u1"})
	require.NoError(t, err)

	clk.advance(2 * time.Hour)
	_, err = mgr.Validate(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestManager_Validate_UnknownOrEmpty(t *testing.T) {
	clk := &clock{t: time.Now()}
	mgr := NewManager(newMemStore(5, clk.now), time.Hour).WithClock(clk.now)

	_, err := mgr.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mgr.Validate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SixthLoginEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	mgr := NewManager(newMemStore(5, clk.now), 2*time.Hour).WithClock(clk.now)

	var ids []string
	for i := 0; i < 6; i++ {
		s, err := mgr.Create(ctx, CreateInput{UserID: "u1"})
		require.NoError(t, err)
		ids = append(ids, s.ID)
		clk.advance(time.Minute)
	}

	live, err := mgr.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, live, 5)

	_, err = mgr.Validate(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mgr.Validate(ctx, ids[5])
	assert.NoError(t, err)
}

func TestManager_DeleteAllForUser(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Now()}
	mgr := NewManager(newMemStore(5, clk.now), time.Hour).WithClock(clk.now)

	_, _ = mgr.Create(ctx, CreateInput{UserID: "u1"})
	_, _ = mgr.Create(ctx, CreateInput{UserID: "u1"})
	other, _ := mgr.Create(ctx, CreateInput{UserID: "u2"})

	require.NoError(t, mgr.DeleteAllForUser(ctx, "u1"))

	live, _ := mgr.ListForUser(ctx, "u1")
	assert.Empty(t, live)
	_, err := mgr.Validate(ctx, other.ID)
	assert.NoError(t, err)
}
