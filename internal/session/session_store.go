package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session not found")

//go:generate mockgen -source=session_store.go -destination=mock/session_store_mock.go -package=mock
type Store interface {
	// Create stores a new session, evicting the user's oldest sessions when
	// the per-user cap is reached.
	Create(ctx context.Context, in CreateInput) (*Session, error)
	// Get returns the session and extends its lifetime.
	Get(ctx context.Context, id string) (*Session, error)
	// Peek returns the session without touching it.
	Peek(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	// ListForUser returns live sessions and prunes dangling index entries.
	ListForUser(ctx context.Context, userID string) ([]Session, error)
}
