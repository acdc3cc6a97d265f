package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/session"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/user"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	OTPTTL     = 10 * time.Minute
	dateLayout = "2006-01-02"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) error
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Login(ctx context.Context, req LoginRequest, meta ClientMeta) (LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID string) (user.UserResponse, error)
}

// SessionStore is the part of session.Manager auth needs.
type SessionStore interface {
	Create(ctx context.Context, in session.CreateInput) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type TokenIssuer interface {
	Issue(userID, role, sessionID string) (string, error)
	TTL() time.Duration
}

type Options struct {
	BcryptCost int
	Now        func() time.Time
	// GenerateOTP returns a 6 digit code.
	GenerateOTP func() (string, error)
}

type service struct {
	db       *sql.DB
	users    user.Repository
	outbox   kafka.OutboxRepository
	sessions SessionStore
	tokens   TokenIssuer
	opts     Options
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	users user.Repository,
	outbox kafka.OutboxRepository,
	sessions SessionStore,
	tokens TokenIssuer,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GenerateOTP == nil {
		opts.GenerateOTP = generateOTP
	}
	return &service{
		db:       db,
		users:    users,
		outbox:   outbox,
		sessions: sessions,
		tokens:   tokens,
		opts:     opts,
		logger:   l,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	email := normalizeEmail(req.Email)
	s.logger.Debug("register requested", zap.String("request_id", rid), zap.String("email", email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return user.UserResponse{}, usererrors.ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("register lookup failed", zap.Error(err))
		return user.UserResponse{}, err
	}

	u := &user.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      domain.RoleEmployee,
		IsActive:  true,
		Phone:     strings.TrimSpace(req.PhoneNumber),
		Address:   strings.TrimSpace(req.Address),
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.DepartmentID != "" {
		deptID, err := uuid.Parse(req.DepartmentID)
		if err != nil {
			return user.UserResponse{}, autherrors.ErrInvalidDepartmentID
		}
		u.DepartmentID = &deptID
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return user.UserResponse{}, autherrors.ErrInvalidDateOfBirth
		}
		u.DateOfBirth = &dob
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		s.logger.Error("register hash password failed", zap.Error(err))
		return user.UserResponse{}, err
	}
	u.Password = string(hashed)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("register begin tx failed", zap.Error(err))
		return user.UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.users.WithTx(tx)
	if err := qtx.Create(ctx, u); err != nil {
		s.logger.Warn("register persist user failed", zap.Error(err))
		return user.UserResponse{}, user.MapRepositoryError(err)
	}

	if err := s.issueOTP(ctx, tx, qtx, u, user.OTPTypeEmailVerification); err != nil {
		return user.UserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("register commit failed", zap.Error(err))
		return user.UserResponse{}, err
	}

	s.logger.Info("user registered", zap.String("request_id", rid), zap.String("user_id", u.ID.String()))
	return user.MapToResponse(*u), nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return user.MapRepositoryError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("verify otp begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.users.WithTx(tx)
	if err := s.consumeOTP(ctx, qtx, u.ID.String(), req.OTP, user.OTPTypeEmailVerification); err != nil {
		return err
	}
	if err := qtx.MarkEmailVerified(ctx, u.ID.String()); err != nil {
		s.logger.Error("verify otp mark verified failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("verify otp commit failed", zap.Error(err))
		return err
	}

	s.logger.Info("email verified", zap.String("user_id", u.ID.String()))
	return nil
}

func (s *service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return user.MapRepositoryError(err)
	}
	if u.IsEmailVerified {
		return autherrors.ErrAlreadyVerified
	}
	return s.reissueOTP(ctx, u, user.OTPTypeEmailVerification)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return user.MapRepositoryError(err)
	}
	return s.reissueOTP(ctx, u, user.OTPTypePasswordReset)
}

// ResetPassword consumes a PASSWORD_RESET code, stores the new hash, and
// signs the user out everywhere.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return user.MapRepositoryError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.opts.BcryptCost)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reset password begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.users.WithTx(tx)
	if err := s.consumeOTP(ctx, qtx, u.ID.String(), req.OTP, user.OTPTypePasswordReset); err != nil {
		return err
	}
	if err := qtx.UpdatePassword(ctx, u.ID.String(), string(hashed)); err != nil {
		return user.MapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reset password commit failed", zap.Error(err))
		return err
	}

	if err := s.sessions.DeleteAllForUser(ctx, u.ID.String()); err != nil {
		s.logger.Warn("reset password revoke sessions failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	s.logger.Info("password reset", zap.String("user_id", u.ID.String()))
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (LoginResult, error) {
	email := normalizeEmail(req.Email)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, autherrors.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return LoginResult{}, err
	}
	if !u.IsActive || !u.IsEmailVerified {
		s.logger.Info("login refused for inactive or unverified account", zap.String("user_id", u.ID.String()))
		return LoginResult{}, autherrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return LoginResult{}, autherrors.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, session.CreateInput{
		UserID:    u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		DeviceID:  meta.DeviceID,
	})
	if err != nil {
		s.logger.Error("login create session failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return LoginResult{}, err
	}

	signed, err := s.tokens.Issue(u.ID.String(), u.Role, sess.ID)
	if err != nil {
		s.logger.Error("login issue token failed", zap.Error(err))
		if delErr := s.sessions.Delete(ctx, sess.ID); delErr != nil {
			s.logger.Warn("login cleanup session failed", zap.Error(delErr))
		}
		return LoginResult{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()), zap.String("session_id", sess.ID))
	return LoginResult{
		User:      user.MapToResponse(*u),
		Token:     signed,
		SessionID: sess.ID,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("logout delete session failed", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, user.MapRepositoryError(err)
	}
	return user.MapToResponse(*u), nil
}

func (s *service) reissueOTP(ctx context.Context, u *user.User, otpType string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reissue otp begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.users.WithTx(tx)
	if err := qtx.InvalidateOTPs(ctx, u.ID.String(), otpType); err != nil {
		return err
	}
	if err := s.issueOTP(ctx, tx, qtx, u, otpType); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reissue otp commit failed", zap.Error(err))
		return err
	}
	s.logger.Info("otp issued", zap.String("user_id", u.ID.String()), zap.String("type", otpType))
	return nil
}

// issueOTP stores a fresh code and queues the mail event on the same tx.
func (s *service) issueOTP(ctx context.Context, tx *sql.Tx, qtx user.Repository, u *user.User, otpType string) error {
	code, err := s.opts.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := s.opts.Now()
	otp := &user.OTP{
		ID:        uuid.New(),
		UserID:    u.ID,
		Code:      code,
		Type:      otpType,
		ExpiresAt: now.Add(OTPTTL),
	}
	if err := qtx.CreateOTP(ctx, otp); err != nil {
		s.logger.Error("persist otp failed", zap.Error(err))
		return err
	}

	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	ev, err := kafka.NewPendingEvent(rid, "user", u.ID.String(), events.EventOTPRequested, events.UserOTPTopic, events.OTPRequestedEvent{
		EventType:  events.EventOTPRequested,
		RequestID:  rid,
		UserID:     u.ID.String(),
		Email:      u.Email,
		FirstName:  u.FirstName,
		Purpose:    otpType,
		Code:       code,
		ExpiresAt:  otp.ExpiresAt,
		OccurredAt: now.UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, ev); err != nil {
		s.logger.Error("otp outbox persist failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) consumeOTP(ctx context.Context, qtx user.Repository, userID, code, otpType string) error {
	otp, err := qtx.FindValidOTP(ctx, userID, code, otpType, s.opts.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrInvalidOTP
		}
		return err
	}
	if err := qtx.MarkOTPUsed(ctx, otp.ID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrInvalidOTP
		}
		return err
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
