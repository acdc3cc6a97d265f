package leave

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/shared/dbtx"
	"go-leave/internal/shared/request"
	"go-leave/internal/shared/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows ListRequests. Zero values mean "any".
type RequestFilter struct {
	UserID      string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time // exclusive
	OldestFirst bool
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRequest(ctx context.Context, l *LeaveRequest) error
	HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)
	FindRequestForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateDecision(ctx context.Context, l *LeaveRequest) error
	ListRequests(ctx context.Context, filter RequestFilter, page request.Page) ([]LeaveRequest, int64, error)

	FindBalance(ctx context.Context, userID, leaveType string, year int) (*LeaveBalance, error)
	ListBalances(ctx context.Context, userID string, year int) ([]LeaveBalance, error)
	InsertBalances(ctx context.Context, balances []LeaveBalance) error
	DeductBalance(ctx context.Context, userID, leaveType string, year int, days float64) (bool, error)

	ListApprovers(ctx context.Context) ([]Approver, error)
	IsActiveApprover(ctx context.Context, userID string) (bool, error)
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

func (r *repository) CreateRequest(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

// HasOverlap looks for a PENDING or APPROVED request of the user whose
// inclusive range intersects [start, end].
func (r *repository) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindRequestForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateDecision writes the terminal status. It only touches rows still
// PENDING and reports gorm.ErrRecordNotFound otherwise.
func (r *repository) UpdateDecision(ctx context.Context, l *LeaveRequest) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, StatusPending).
		Updates(map[string]any{
			"status":      l.Status,
			"approver_id": l.ApproverID,
			"approved_at": l.ApprovedAt,
			"comments":    l.Comments,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListRequests(ctx context.Context, filter RequestFilter, page request.Page) ([]LeaveRequest, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(scope.OwnedBy(filter.UserID), scope.WithStatus(filter.Status))
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.OldestFirst {
		order = "created_at ASC"
	}

	var rows []LeaveRequest
	err := q.
		Preload("User.Department").
		Preload("Approver").
		Order(order).
		Scopes(scope.Paginate(page)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindBalance(ctx context.Context, userID, leaveType string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		First(&b, "user_id = ? AND leave_type = ? AND year = ?", userID, leaveType, year).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListBalances(ctx context.Context, userID string, year int) ([]LeaveBalance, error) {
	var rows []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("leave_type ASC").
		Find(&rows).Error
	return rows, err
}

// InsertBalances skips rows that already exist so concurrent bootstraps of the
// same user settle on one set.
func (r *repository) InsertBalances(ctx context.Context, balances []LeaveBalance) error {
	if len(balances) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "leave_type"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(&balances).Error
}

// DeductBalance charges days against the row. It reports false without
// writing when the row is missing or remaining would drop below zero.
func (r *repository) DeductBalance(ctx context.Context, userID, leaveType string, year int, days float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("user_id = ? AND leave_type = ? AND year = ? AND remaining >= ?", userID, leaveType, year, days).
		Updates(map[string]any{
			"used":       gorm.Expr("used + ?", days),
			"remaining":  gorm.Expr("remaining - ?", days),
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListApprovers(ctx context.Context) ([]Approver, error) {
	var rows []Approver
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.first_name, u.last_name, u.email, u.role, d.name AS department_name").
		Joins("LEFT JOIN departments d ON d.id = u.department_id").
		Where("u.role IN ? AND u.is_active = ?", domain.ApproverRoles, true).
		Order("u.role ASC, u.first_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) IsActiveApprover(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id = ? AND role IN ? AND is_active = ?", userID, domain.ApproverRoles, true).
		Count(&count).Error
	return count > 0, err
}
