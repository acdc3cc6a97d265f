package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/user"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrUnknownEvent = errors.New("notification: unknown event type")

// UserDirectory resolves recipients; user.Repository satisfies it.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// DashboardInvalidator drops cached dashboards; dashboard.Service satisfies it.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string)
}

type SendRecorder interface {
	NotificationSent(eventType string, err error)
}

type Options struct {
	// RatePerSecond and Burst size the token bucket in front of the mailer.
	// Zero disables throttling.
	RatePerSecond float64
	Burst         int
	Now           func() time.Time
	Metrics       SendRecorder
}

type Notifier struct {
	mailer     Mailer
	users      UserDirectory
	dashboards DashboardInvalidator
	limiter    *rate.Limiter
	opts       Options
	logger     *zap.Logger
}

func NewNotifier(mailer Mailer, users UserDirectory, dashboards DashboardInvalidator, opts Options, logger ...*zap.Logger) *Notifier {
	l := zap.L().Named("notification.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.notifier")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &Notifier{
		mailer:     mailer,
		users:      users,
		dashboards: dashboards,
		limiter:    limiter,
		opts:       opts,
		logger:     l,
	}
}

// Handle decodes one event payload and delivers the mails it implies.
func (n *Notifier) Handle(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case events.EventOTPRequested:
		var ev events.OTPRequestedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		return n.handleOTP(ctx, ev)
	case events.EventLeaveRequested:
		var ev events.LeaveRequestedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		return n.handleLeaveRequested(ctx, ev)
	case events.EventLeaveDecided:
		var ev events.LeaveDecidedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		return n.handleLeaveDecided(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
}

func (n *Notifier) handleOTP(ctx context.Context, ev events.OTPRequestedEvent) error {
	tmpl, subject := otpVerifyTmpl, "Verify Your Email"
	if ev.Purpose == events.OTPPurposeResetPass {
		tmpl, subject = otpResetTmpl, "Password Reset OTP"
	}

	expiresIn := ev.ExpiresAt.Sub(n.opts.Now()).Round(time.Minute)
	if expiresIn < time.Minute {
		expiresIn = time.Minute
	}
	body, err := render(tmpl, map[string]any{
		"FirstName": ev.FirstName,
		"Code":      ev.Code,
		"ExpiresIn": fmt.Sprintf("%d minutes", int(expiresIn.Minutes())),
	})
	if err != nil {
		return err
	}
	return n.send(ctx, events.EventOTPRequested, Mail{To: ev.Email, Subject: subject, Body: body})
}

func (n *Notifier) handleLeaveRequested(ctx context.Context, ev events.LeaveRequestedEvent) error {
	defer n.dashboards.Invalidate(ctx, ev.UserID, ev.ApproverID)

	if ev.ApproverID == "" {
		n.logger.Debug("leave request has no assigned approver, nothing to mail",
			zap.String("reference", ev.Reference),
		)
		return nil
	}

	requester, err := n.users.FindByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("find requester %s: %w", ev.UserID, err)
	}
	approver, err := n.users.FindByID(ctx, ev.ApproverID)
	if err != nil {
		return fmt.Errorf("find approver %s: %w", ev.ApproverID, err)
	}

	body, err := render(leaveRequestedTmpl, map[string]any{
		"Recipient": approver.FirstName,
		"Requester": requester.FullName(),
		"Reference": ev.Reference,
		"LeaveType": ev.LeaveType,
		"StartDate": ev.StartDate,
		"EndDate":   ev.EndDate,
		"Days":      ev.Days,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, events.EventLeaveRequested, Mail{
		To:      approver.Email,
		Subject: "New leave request " + ev.Reference,
		Body:    body,
	})
}

func (n *Notifier) handleLeaveDecided(ctx context.Context, ev events.LeaveDecidedEvent) error {
	defer n.dashboards.Invalidate(ctx, ev.UserID, ev.ApproverID)

	requester, err := n.users.FindByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("find requester %s: %w", ev.UserID, err)
	}

	decision := strings.ToLower(ev.Status)
	body, err := render(leaveDecidedTmpl, map[string]any{
		"Recipient": requester.FirstName,
		"Reference": ev.Reference,
		"LeaveType": ev.LeaveType,
		"Days":      ev.Days,
		"Decision":  decision,
		"Comments":  ev.Comments,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, events.EventLeaveDecided, Mail{
		To:      requester.Email,
		Subject: fmt.Sprintf("Leave request %s %s", ev.Reference, decision),
		Body:    body,
	})
}

func (n *Notifier) send(ctx context.Context, eventType string, mail Mail) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	err := n.mailer.Send(ctx, mail)
	if n.opts.Metrics != nil {
		n.opts.Metrics.NotificationSent(eventType, err)
	}
	if err != nil {
		n.logger.Error("send mail failed",
			zap.String("event_type", eventType),
			zap.String("to", mail.To),
			zap.Error(err),
		)
		return err
	}
	return nil
}
