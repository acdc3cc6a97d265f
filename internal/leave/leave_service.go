package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/cache"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"
	"go-leave/internal/shared/request"
	"go-leave/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout         = "2006-01-02"
	referenceCounter   = "leave_request"
	aggregateType      = "leave_request"
	DefaultApproverTTL = time.Hour
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, userID string, req CreateLeaveRequest) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, userID string, q ListRequestsQuery) (RequestListResponse, error)
	GetBalances(ctx context.Context, userID string) ([]BalanceResponse, error)
	ListPending(ctx context.Context, q ListRequestsQuery) (RequestListResponse, error)
	Approve(ctx context.Context, approverID, id string, req DecisionRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, approverID, id string, req DecisionRequest) (LeaveRequestResponse, error)
	ListApprovers(ctx context.Context) ([]ApproverResponse, error)
	History(ctx context.Context, userID string, all bool, q HistoryQuery) (RequestListResponse, error)
}

// TransitionRecorder counts workflow transitions; *metrics.Metrics satisfies it.
type TransitionRecorder interface {
	LeaveTransition(status, leaveType string)
}

type Options struct {
	Allocations Allocations
	Rollover    RolloverPolicy
	ApproverTTL time.Duration
	Now         func() time.Time
	Metrics     TransitionRecorder
}

type service struct {
	db       *sql.DB
	repo     Repository
	counters counter.Repository
	outbox   kafka.OutboxRepository
	cache    *cache.Cache
	opts     Options
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counters counter.Repository,
	outbox kafka.OutboxRepository,
	c *cache.Cache,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if opts.Allocations == nil {
		opts.Allocations = DefaultAllocations()
	}
	if opts.Rollover == nil {
		opts.Rollover = NoCarryOver{}
	}
	if opts.ApproverTTL <= 0 {
		opts.ApproverTTL = DefaultApproverTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if c == nil {
		c = cache.New(nil, l)
	}
	return &service{
		db:       db,
		repo:     repo,
		counters: counters,
		outbox:   outbox,
		cache:    c,
		opts:     opts,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, userID string, req CreateLeaveRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("user_id", userID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidUserID
	}
	if !IsValidLeaveType(req.LeaveType) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveType
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	now := s.opts.Now()
	if start.Before(truncateDay(now)) {
		return LeaveRequestResponse{}, leaveerrors.ErrPastDate
	}
	if start.After(end) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidDateRange
	}
	days := CountDays(start, end, req.IsHalfDay)
	year := now.Year()

	var approverID *uuid.UUID
	if req.ManagerID != "" {
		id, err := uuid.Parse(req.ManagerID)
		if err != nil {
			return LeaveRequestResponse{}, leaveerrors.ErrInvalidApprover
		}
		ok, err := s.repo.IsActiveApprover(ctx, id.String())
		if err != nil {
			s.logger.Error("create leave approver lookup failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if !ok || id == userUUID {
			return LeaveRequestResponse{}, leaveerrors.ErrInvalidApprover
		}
		approverID = &id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlap(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("user_id", userID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequestResponse{}, leaveerrors.ErrLeaveOverlap
	}

	balance, err := qtx.FindBalance(ctx, userID, req.LeaveType, year)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("create leave balance lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if balance == nil || balance.Remaining < days {
		available := 0.0
		if balance != nil {
			available = balance.Remaining
		}
		return LeaveRequestResponse{}, leaveerrors.InsufficientBalance(available)
	}

	seq, err := s.counters.WithTx(tx).GetNextValue(ctx, strconv.Itoa(year), referenceCounter)
	if err != nil {
		s.logger.Error("create leave reference failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		Reference:   fmt.Sprintf("LV-%d-%05d", year, seq),
		UserID:      userUUID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		BalanceYear: year,
		Reason:      strings.TrimSpace(req.Reason),
		IsHalfDay:   req.IsHalfDay,
		Status:      StatusPending,
		ApproverID:  approverID,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := qtx.CreateRequest(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	ev := events.LeaveRequestedEvent{
		EventType:  events.EventLeaveRequested,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		Reference:  l.Reference,
		UserID:     userID,
		LeaveType:  l.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       days,
		OccurredAt: now.UTC(),
	}
	if approverID != nil {
		ev.ApproverID = approverID.String()
	}
	if err := s.enqueue(ctx, tx, l.ID.String(), events.EventLeaveRequested, events.LeaveRequestedTopic, ev); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.recordTransition(StatusPending, l.LeaveType)
	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("reference", l.Reference),
		zap.Float64("days", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, userID string, q ListRequestsQuery) (RequestListResponse, error) {
	status, err := normalizeStatus(q.Status)
	if err != nil {
		return RequestListResponse{}, err
	}
	return s.list(ctx, RequestFilter{UserID: userID, Status: status}, request.NormalizePage(q.Page, q.Limit))
}

// ListPending returns the approval queue, oldest first.
func (s *service) ListPending(ctx context.Context, q ListRequestsQuery) (RequestListResponse, error) {
	return s.list(ctx, RequestFilter{Status: StatusPending, OldestFirst: true}, request.NormalizePage(q.Page, q.Limit))
}

// History lists every request when all is set, otherwise only the caller's.
// The date filters apply to the submission time and endDate is inclusive.
func (s *service) History(ctx context.Context, userID string, all bool, q HistoryQuery) (RequestListResponse, error) {
	status, err := normalizeStatus(q.Status)
	if err != nil {
		return RequestListResponse{}, err
	}

	filter := RequestFilter{Status: status}
	if !all {
		filter.UserID = userID
	}
	if q.StartDate != "" {
		from, err := parseDate(q.StartDate)
		if err != nil {
			return RequestListResponse{}, err
		}
		filter.CreatedFrom = &from
	}
	if q.EndDate != "" {
		to, err := parseDate(q.EndDate)
		if err != nil {
			return RequestListResponse{}, err
		}
		to = to.AddDate(0, 0, 1)
		filter.CreatedTo = &to
	}
	return s.list(ctx, filter, request.NormalizePage(q.Page, q.Limit))
}

func (s *service) list(ctx context.Context, filter RequestFilter, page request.Page) (RequestListResponse, error) {
	rows, total, err := s.repo.ListRequests(ctx, filter, page)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return RequestListResponse{}, err
	}

	resp := RequestListResponse{
		Requests:   make([]LeaveRequestResponse, len(rows)),
		Pagination: response.NewPagination(total, page.Page, page.Limit),
	}
	for i, l := range rows {
		resp.Requests[i] = mapToResponse(l)
	}
	return resp, nil
}

// GetBalances returns the caller's balances for the current year, creating
// them from the allocation table on first access.
func (s *service) GetBalances(ctx context.Context, userID string) ([]BalanceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}
	year := s.opts.Now().Year()

	rows, err := s.repo.ListBalances(ctx, userID, year)
	if err != nil {
		s.logger.Error("list balances failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	if len(rows) == 0 {
		if err := s.bootstrapBalances(ctx, userUUID, year); err != nil {
			return nil, err
		}
		rows, err = s.repo.ListBalances(ctx, userID, year)
		if err != nil {
			return nil, err
		}
	}

	resp := make([]BalanceResponse, len(rows))
	for i, b := range rows {
		resp[i] = BalanceResponse{
			LeaveType: b.LeaveType,
			Year:      b.Year,
			Total:     b.Total,
			Used:      b.Used,
			Remaining: b.Remaining,
		}
	}
	return resp, nil
}

func (s *service) bootstrapBalances(ctx context.Context, userID uuid.UUID, year int) error {
	previous, err := s.repo.ListBalances(ctx, userID.String(), year-1)
	if err != nil {
		s.logger.Error("bootstrap balances previous year lookup failed", zap.Error(err))
		return err
	}
	prevByType := make(map[string]*LeaveBalance, len(previous))
	for i := range previous {
		prevByType[previous[i].LeaveType] = &previous[i]
	}

	rows := make([]LeaveBalance, 0, len(LeaveTypes))
	for _, lt := range LeaveTypes {
		allocation, ok := s.opts.Allocations[lt]
		if !ok {
			continue
		}
		total := s.opts.Rollover.OpeningTotal(allocation, prevByType[lt])
		rows = append(rows, LeaveBalance{
			ID:        uuid.New(),
			UserID:    userID,
			LeaveType: lt,
			Year:      year,
			Total:     total,
			Remaining: total,
		})
	}

	if err := s.repo.InsertBalances(ctx, rows); err != nil {
		s.logger.Error("bootstrap balances failed", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	s.logger.Info("balances bootstrapped", zap.String("user_id", userID.String()), zap.Int("year", year), zap.Int("rows", len(rows)))
	return nil
}

func (s *service) Approve(ctx context.Context, approverID, id string, req DecisionRequest) (LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, id, StatusApproved, req.Comments)
}

func (s *service) Reject(ctx context.Context, approverID, id string, req DecisionRequest) (LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, id, StatusRejected, req.Comments)
}

// decide moves a PENDING request to its terminal status. Approval charges the
// balance in the same transaction; rejection leaves balances alone.
func (s *service) decide(ctx context.Context, approverID, id, target, comments string) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("leave decision requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("approver_id", approverID),
		zap.String("target_status", target),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidApprover
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave decision begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("leave decision lookup failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("leave decision on non-pending request",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveRequestResponse{}, leaveerrors.ErrNotPending
	}

	now := s.opts.Now().UTC()
	l.Status = target
	l.ApproverID = &approverUUID
	l.ApprovedAt = &now
	if c := strings.TrimSpace(comments); c != "" {
		l.Comments = &c
	}

	if err := qtx.UpdateDecision(ctx, l); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrNotPending
		}
		s.logger.Error("leave decision persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if target == StatusApproved {
		ok, err := qtx.DeductBalance(ctx, l.UserID.String(), l.LeaveType, l.BalanceYear, l.Days)
		if err != nil {
			s.logger.Error("leave decision balance update failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if !ok {
			available := 0.0
			if b, err := qtx.FindBalance(ctx, l.UserID.String(), l.LeaveType, l.BalanceYear); err == nil {
				available = b.Remaining
			}
			s.logger.Warn("leave decision insufficient balance",
				zap.String("leave_id", id),
				zap.Float64("days", l.Days),
				zap.Float64("available", available),
			)
			return LeaveRequestResponse{}, leaveerrors.InsufficientBalance(available)
		}
	}

	ev := events.LeaveDecidedEvent{
		EventType:  events.EventLeaveDecided,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		Reference:  l.Reference,
		UserID:     l.UserID.String(),
		ApproverID: approverID,
		Status:     target,
		LeaveType:  l.LeaveType,
		Days:       l.Days,
		OccurredAt: now,
	}
	if l.Comments != nil {
		ev.Comments = *l.Comments
	}
	if err := s.enqueue(ctx, tx, l.ID.String(), events.EventLeaveDecided, events.LeaveDecidedTopic, ev); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave decision commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.recordTransition(target, l.LeaveType)
	s.logger.Info("leave decision success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", target),
		zap.String("approver_id", approverID),
	)
	return mapToResponse(*l), nil
}

// ListApprovers serves the approver directory from cache.
func (s *service) ListApprovers(ctx context.Context) ([]ApproverResponse, error) {
	var resp []ApproverResponse
	err := s.cache.GetOrLoad(ctx, cache.KeyApprovers, s.opts.ApproverTTL, &resp, func(ctx context.Context) (any, error) {
		rows, err := s.repo.ListApprovers(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]ApproverResponse, len(rows))
		for i, a := range rows {
			out[i] = ApproverResponse{
				ID:         a.ID.String(),
				FirstName:  a.FirstName,
				LastName:   a.LastName,
				Email:      a.Email,
				Role:       a.Role,
				Department: a.DepartmentName,
			}
		}
		return out, nil
	})
	if err != nil {
		s.logger.Error("list approvers failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, leaveID, eventType, topic string, payload any) error {
	if s.outbox == nil {
		return nil
	}
	ev, err := kafka.NewPendingEvent(contextutil.GetRequestID(ctx), aggregateType, leaveID, eventType, topic, payload)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, ev); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", leaveID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) recordTransition(status, leaveType string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.LeaveTransition(status, leaveType)
	}
}

func normalizeStatus(status string) (string, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return "", nil
	}
	if !IsValidStatus(status) {
		return "", leaveerrors.ErrInvalidStatus
	}
	return status, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and keeps only
// the day.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return truncateDay(t), nil
	}
	return time.Time{}, leaveerrors.ErrInvalidDateFormat
}

func mapToResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:          l.ID.String(),
		Reference:   l.Reference,
		UserID:      l.UserID.String(),
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate.Format(dateLayout),
		EndDate:     l.EndDate.Format(dateLayout),
		Days:        l.Days,
		BalanceYear: l.BalanceYear,
		Reason:      l.Reason,
		IsHalfDay:   l.IsHalfDay,
		Status:      l.Status,
		Comments:    l.Comments,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		User:        mapPerson(l.User),
		Approver:    mapPerson(l.Approver),
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapPerson(p *Person) *PersonResponse {
	if p == nil {
		return nil
	}
	out := &PersonResponse{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
	if p.Department != nil {
		out.Department = p.Department.Name
	}
	return out
}
