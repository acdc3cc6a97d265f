package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/notification"
	notificationMock "go-leave/internal/notification/mock"
	"go-leave/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type fakeDirectory map[string]*user.User

func (d fakeDirectory) FindByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeInvalidator struct {
	ids []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userIDs ...string) {
	f.ids = append(f.ids, userIDs...)
}

type sends struct {
	results map[string]int
}

func (s *sends) NotificationSent(eventType string, err error) {
	key := eventType + ":ok"
	if err != nil {
		key = eventType + ":error"
	}
	s.results[key]++
}

type notifierDeps struct {
	mailer      *notificationMock.MockMailer
	invalidator *fakeInvalidator
	sends       *sends
	notifier    *notification.Notifier
}

func setupNotifier(t *testing.T) *notifierDeps {
	ctrl := gomock.NewController(t)
	mailer := notificationMock.NewMockMailer(ctrl)
	inv := &fakeInvalidator{}
	rec := &sends{results: map[string]int{}}
	dir := fakeDirectory{
		"emp-1": {FirstName: "Budi", LastName: "Santoso", Email: "budi@example.com"},
		"mgr-1": {FirstName: "Sari", LastName: "Wijaya", Email: "sari@example.com"},
	}

	n := notification.NewNotifier(mailer, dir, inv, notification.Options{
		Now:     func() time.Time { return fixedNow },
		Metrics: rec,
	})
	return &notifierDeps{mailer: mailer, invalidator: inv, sends: rec, notifier: n}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestNotifier_OTP(t *testing.T) {
	tests := []struct {
		name    string
		purpose string
		subject string
	}{
		{"verification", events.OTPPurposeVerify, "Verify Your Email"},
		{"password reset", events.OTPPurposeResetPass, "Password Reset OTP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupNotifier(t)
			var got notification.Mail
			d.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m notification.Mail) error {
				got = m
				return nil
			})

			err := d.notifier.Handle(context.Background(), events.EventOTPRequested, mustJSON(t, events.OTPRequestedEvent{
				EventType: events.EventOTPRequested,
				Email:     "budi@example.com",
				FirstName: "Budi",
				Purpose:   tt.purpose,
				Code:      "482913",
				ExpiresAt: fixedNow.Add(10 * time.Minute),
			}))

			require.NoError(t, err)
			assert.Equal(t, "budi@example.com", got.To)
			assert.Equal(t, tt.subject, got.Subject)
			assert.Contains(t, got.Body, "482913")
			assert.Contains(t, got.Body, "10 minutes")
			assert.Equal(t, 1, d.sends.results[events.EventOTPRequested+":ok"])
			assert.Empty(t, d.invalidator.ids)
		})
	}
}

func TestNotifier_LeaveRequested(t *testing.T) {
	t.Run("mails assigned approver", func(t *testing.T) {
		d := setupNotifier(t)
		var got notification.Mail
		d.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m notification.Mail) error {
			got = m
			return nil
		})

		err := d.notifier.Handle(context.Background(), events.EventLeaveRequested, mustJSON(t, events.LeaveRequestedEvent{
			Reference:  "LV-2026-00007",
			UserID:     "emp-1",
			ApproverID: "mgr-1",
			LeaveType:  "ANNUAL",
			StartDate:  "2026-04-06",
			EndDate:    "2026-04-08",
			Days:       3,
		}))

		require.NoError(t, err)
		assert.Equal(t, "sari@example.com", got.To)
		assert.Equal(t, "New leave request LV-2026-00007", got.Subject)
		assert.Contains(t, got.Body, "Budi Santoso")
		assert.Equal(t, []string{"emp-1", "mgr-1"}, d.invalidator.ids)
	})

	t.Run("no approver skips mail", func(t *testing.T) {
		d := setupNotifier(t)

		err := d.notifier.Handle(context.Background(), events.EventLeaveRequested, mustJSON(t, events.LeaveRequestedEvent{
			Reference: "LV-2026-00008",
			UserID:    "emp-1",
		}))

		require.NoError(t, err)
		assert.Equal(t, []string{"emp-1", ""}, d.invalidator.ids)
	})
}

func TestNotifier_LeaveDecided(t *testing.T) {
	d := setupNotifier(t)
	var got notification.Mail
	d.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m notification.Mail) error {
		got = m
		return nil
	})

	err := d.notifier.Handle(context.Background(), events.EventLeaveDecided, mustJSON(t, events.LeaveDecidedEvent{
		Reference:  "LV-2026-00007",
		UserID:     "emp-1",
		ApproverID: "mgr-1",
		Status:     "REJECTED",
		LeaveType:  "ANNUAL",
		Days:       3,
		Comments:   "Team offsite that week",
	}))

	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", got.To)
	assert.Equal(t, "Leave request LV-2026-00007 rejected", got.Subject)
	assert.Contains(t, got.Body, "Team offsite that week")
	assert.Equal(t, []string{"emp-1", "mgr-1"}, d.invalidator.ids)
}

func TestNotifier_Errors(t *testing.T) {
	t.Run("unknown event", func(t *testing.T) {
		d := setupNotifier(t)
		err := d.notifier.Handle(context.Background(), "something_else", []byte(`{}`))
		assert.ErrorIs(t, err, notification.ErrUnknownEvent)
	})

	t.Run("bad payload", func(t *testing.T) {
		d := setupNotifier(t)
		err := d.notifier.Handle(context.Background(), events.EventLeaveDecided, []byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("unknown requester", func(t *testing.T) {
		d := setupNotifier(t)
		err := d.notifier.Handle(context.Background(), events.EventLeaveDecided, mustJSON(t, events.LeaveDecidedEvent{
			UserID: "ghost",
			Status: "APPROVED",
		}))
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Equal(t, []string{"ghost", ""}, d.invalidator.ids)
	})

	t.Run("mailer failure is recorded", func(t *testing.T) {
		d := setupNotifier(t)
		boom := errors.New("smtp down")
		d.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(boom)

		err := d.notifier.Handle(context.Background(), events.EventOTPRequested, mustJSON(t, events.OTPRequestedEvent{
			Email:     "budi@example.com",
			Code:      "111111",
			ExpiresAt: fixedNow.Add(10 * time.Minute),
		}))

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, d.sends.results[events.EventOTPRequested+":error"])
	})
}
