package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/session"
	mock_session "go-leave/internal/session/mock"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestManager_Validate_StoreErrorFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_session.NewMockStore(ctrl)
	mgr := session.NewManager(store, time.Hour)

	storeErr := errors.New("redis: connection refused")
	store.EXPECT().Peek(gomock.Any(), "s1").Return(nil, storeErr)

	got, err := mgr.Validate(context.Background(), "s1")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, storeErr)
}

func TestManager_Validate_DeleteFailureStillExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_session.NewMockStore(ctrl)
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	mgr := session.NewManager(store, time.Hour).WithClock(func() time.Time { return now })

	stale := &session.Session{ID: "s1", UserID: "u1", LastActivity: now.Add(-90 * time.Minute).UnixMilli()}
	store.EXPECT().Peek(gomock.Any(), "s1").Return(stale, nil)
	store.EXPECT().Delete(gomock.Any(), "s1").Return(errors.New("boom"))

	_, err := mgr.Validate(context.Background(), "s1")

	assert.ErrorIs(t, err, session.ErrIdleTimeout)
}
