package user

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/shared/dbtx"
	"go-leave/internal/shared/request"
	"go-leave/internal/shared/scope"

	"gorm.io/gorm"
)

type ListFilter struct {
	Role         string
	DepartmentID string
}

// ProfileUpdate holds the self-service fields a user may change.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Phone       string
	DateOfBirth *time.Time
	Address     string
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter, page request.Page) ([]User, int64, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error
	UpdatePassword(ctx context.Context, id string, hash string) error
	MarkEmailVerified(ctx context.Context, id string) error

	CreateOTP(ctx context.Context, otp *OTP) error
	FindValidOTP(ctx context.Context, userID, code, otpType string, now time.Time) (*OTP, error)
	MarkOTPUsed(ctx context.Context, id string) error
	InvalidateOTPs(ctx context.Context, userID, otpType string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Preload("Department").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Preload("Department").
		First(&u, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, page request.Page) ([]User, int64, error) {
	q := r.db.WithContext(ctx).Model(&User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := q.Preload("Department").
		Order("created_at DESC").
		Scopes(scope.Paginate(page)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"first_name":    p.FirstName,
			"last_name":     p.LastName,
			"phone":         p.Phone,
			"date_of_birth": p.DateOfBirth,
			"address":       p.Address,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdatePassword(ctx context.Context, id string, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"password": hash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_email_verified": true, "updated_at": time.Now()}).Error
}

func (r *repository) CreateOTP(ctx context.Context, otp *OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *repository) FindValidOTP(ctx context.Context, userID, code, otpType string, now time.Time) (*OTP, error) {
	var otp OTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND type = ? AND is_used = FALSE AND expires_at > ?", userID, code, otpType, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// MarkOTPUsed consumes the code once; a second caller racing on the same code
// sees gorm.ErrRecordNotFound.
func (r *repository) MarkOTPUsed(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&OTP{}).
		Where("id = ? AND is_used = FALSE", id).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) InvalidateOTPs(ctx context.Context, userID, otpType string) error {
	return r.db.WithContext(ctx).
		Model(&OTP{}).
		Where("user_id = ? AND type = ? AND is_used = FALSE", userID, otpType).
		Update("is_used", true).Error
}
