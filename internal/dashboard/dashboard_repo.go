package dashboard

import (
	"context"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/leave"
	"go-leave/internal/shared/scope"

	"gorm.io/gorm"
)

// CountFilter narrows CountRequests. Empty fields are ignored.
type CountFilter struct {
	UserID     string
	ApproverID string
	Status     string
}

//go:generate mockgen -source=dashboard_repo.go -destination=mock/dashboard_repo_mock.go -package=mock
type Repository interface {
	Balances(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error)
	RecentRequests(ctx context.Context, userID string, limit int) ([]leave.LeaveRequest, error)
	CountRequests(ctx context.Context, filter CountFilter) (int64, error)
	StatusCounts(ctx context.Context, approverID string, from, to time.Time) ([]StatusCount, error)
	RecentDecisions(ctx context.Context, approverID string, limit int) ([]leave.LeaveRequest, error)
	PendingRequests(ctx context.Context, limit int) ([]leave.LeaveRequest, error)
	CountTeamMembers(ctx context.Context, userID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Balances(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	var rows []leave.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("leave_type ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) RecentRequests(ctx context.Context, userID string, limit int) ([]leave.LeaveRequest, error) {
	var rows []leave.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approver").
		Scopes(scope.OwnedBy(userID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountRequests(ctx context.Context, filter CountFilter) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&leave.LeaveRequest{}).
		Scopes(scope.OwnedBy(filter.UserID))
	if filter.ApproverID != "" {
		q = q.Where("approver_id = ?", filter.ApproverID)
	}
	q = q.Scopes(scope.WithStatus(filter.Status))
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// StatusCounts groups the caller's decided and assigned requests submitted in
// [from, to).
func (r *repository) StatusCounts(ctx context.Context, approverID string, from, to time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&leave.LeaveRequest{}).
		Select("status, COUNT(*) AS count").
		Where("approver_id = ? AND created_at >= ? AND created_at < ?", approverID, from, to).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) RecentDecisions(ctx context.Context, approverID string, limit int) ([]leave.LeaveRequest, error) {
	var rows []leave.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("approver_id = ? AND status IN ?", approverID, []string{leave.StatusApproved, leave.StatusRejected}).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) PendingRequests(ctx context.Context, limit int) ([]leave.LeaveRequest, error) {
	var rows []leave.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", leave.StatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountTeamMembers counts employees in the caller's department, or every
// employee when the caller has none.
func (r *repository) CountTeamMembers(ctx context.Context, userID string) (int64, error) {
	var caller struct {
		DepartmentID *string
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("department_id").
		Where("id = ?", userID).
		Limit(1).
		Scan(&caller).Error
	if err != nil {
		return 0, err
	}

	q := r.db.WithContext(ctx).Table("users").Where("role = ?", domain.RoleEmployee)
	if caller.DepartmentID != nil && *caller.DepartmentID != "" {
		q = q.Where("department_id = ?", *caller.DepartmentID)
	}
	var n int64
	err = q.Count(&n).Error
	return n, err
}
