package dashboard

import (
	"context"
	"time"

	dashboarderrors "go-leave/internal/dashboard/errors"
	"go-leave/internal/leave"
	"go-leave/internal/shared/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTTL          = 60 * time.Second
	recentRequestsLimit = 5
	recentDecisionLimit = 10
	allPendingLimit     = 20
)

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Stats(ctx context.Context, userID string, team bool) (StatsResponse, error)
	Invalidate(ctx context.Context, userIDs ...string)
}

type service struct {
	repo   Repository
	cache  *cache.Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds the dashboard service. ttl <= 0 falls back to DefaultTTL
// and a nil now uses time.Now.
func NewService(repo Repository, c *cache.Cache, ttl time.Duration, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, cache: c, ttl: ttl, now: now, logger: l}
}

func (s *service) Stats(ctx context.Context, userID string, team bool) (StatsResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return StatsResponse{}, dashboarderrors.ErrInvalidUserID
	}

	var out StatsResponse
	err := s.cache.GetOrLoad(ctx, cache.DashboardKey(userID), s.ttl, &out, func(ctx context.Context) (any, error) {
		return s.load(ctx, userID, team)
	})
	if err != nil {
		s.logger.Error("load dashboard stats failed", zap.String("user_id", userID), zap.Error(err))
		return StatsResponse{}, err
	}
	return out, nil
}

func (s *service) Invalidate(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		keys = append(keys, cache.DashboardKey(id))
	}
	s.cache.Delete(ctx, keys...)
}

func (s *service) load(ctx context.Context, userID string, team bool) (StatsResponse, error) {
	now := s.now().UTC()

	balances, err := s.repo.Balances(ctx, userID, now.Year())
	if err != nil {
		return StatsResponse{}, err
	}
	recent, err := s.repo.RecentRequests(ctx, userID, recentRequestsLimit)
	if err != nil {
		return StatsResponse{}, err
	}
	pending, err := s.repo.CountRequests(ctx, CountFilter{UserID: userID, Status: leave.StatusPending})
	if err != nil {
		return StatsResponse{}, err
	}

	out := StatsResponse{
		LeaveBalances:        mapBalances(balances),
		RecentRequests:       mapRequests(recent),
		PendingRequestsCount: pending,
	}
	if !team {
		return out, nil
	}

	ts, err := s.loadTeam(ctx, userID, now)
	if err != nil {
		return StatsResponse{}, err
	}
	out.TeamStats = ts
	return out, nil
}

func (s *service) loadTeam(ctx context.Context, userID string, now time.Time) (*TeamStats, error) {
	pendingApprovals, err := s.repo.CountRequests(ctx, CountFilter{Status: leave.StatusPending})
	if err != nil {
		return nil, err
	}
	approved, err := s.repo.CountRequests(ctx, CountFilter{ApproverID: userID, Status: leave.StatusApproved})
	if err != nil {
		return nil, err
	}
	rejected, err := s.repo.CountRequests(ctx, CountFilter{ApproverID: userID, Status: leave.StatusRejected})
	if err != nil {
		return nil, err
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	monthly, err := s.repo.StatusCounts(ctx, userID, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	decisions, err := s.repo.RecentDecisions(ctx, userID, recentDecisionLimit)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.CountTeamMembers(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.PendingRequests(ctx, allPendingLimit)
	if err != nil {
		return nil, err
	}

	if monthly == nil {
		monthly = []StatusCount{}
	}
	return &TeamStats{
		PendingApprovals:   pendingApprovals,
		TotalApproved:      approved,
		TotalRejected:      rejected,
		MonthlyStats:       monthly,
		RecentApprovals:    mapRequests(decisions),
		TeamMemberCount:    members,
		AllPendingRequests: mapRequests(all),
	}, nil
}

func mapBalances(rows []leave.LeaveBalance) []BalanceItem {
	out := make([]BalanceItem, 0, len(rows))
	for _, b := range rows {
		out = append(out, BalanceItem{
			LeaveType: b.LeaveType,
			Year:      b.Year,
			Total:     b.Total,
			Used:      b.Used,
			Remaining: b.Remaining,
		})
	}
	return out
}

func mapRequests(rows []leave.LeaveRequest) []RequestItem {
	out := make([]RequestItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, RequestItem{
			ID:        r.ID.String(),
			Reference: r.Reference,
			LeaveType: r.LeaveType,
			StartDate: r.StartDate.Format("2006-01-02"),
			EndDate:   r.EndDate.Format("2006-01-02"),
			Days:      r.Days,
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
			User:      mapPerson(r.User),
			Approver:  mapPerson(r.Approver),
		})
	}
	return out
}

func mapPerson(p *leave.Person) *PersonItem {
	if p == nil {
		return nil
	}
	return &PersonItem{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}
