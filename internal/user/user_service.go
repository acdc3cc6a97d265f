package user

import (
	"context"
	"strings"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/shared/request"
	"go-leave/internal/shared/response"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, q ListUsersQuery) (UserListResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, q ListUsersQuery) (UserListResponse, error) {
	page := request.NormalizePage(q.Page, q.Limit)

	filter := ListFilter{Role: strings.ToUpper(strings.TrimSpace(q.Role))}
	if filter.Role != "" && !domain.IsValidRole(filter.Role) {
		return UserListResponse{}, usererrors.ErrInvalidRole
	}
	if dept := strings.TrimSpace(q.DepartmentID); dept != "" {
		if _, err := uuid.Parse(dept); err != nil {
			return UserListResponse{}, usererrors.ErrInvalidDepartmentID
		}
		filter.DepartmentID = dept
	}

	users, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return UserListResponse{}, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = MapToResponse(u)
	}

	return UserListResponse{
		Users:      resp,
		Pagination: response.NewPagination(total, page.Page, page.Limit),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, MapRepositoryError(err)
	}
	return MapToResponse(*u), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserResponse, error) {
	s.logger.Debug("update profile requested", zap.String("user_id", userID))

	upd := ProfileUpdate{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.PhoneNumber),
		Address:   strings.TrimSpace(req.Address),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return UserResponse{}, usererrors.ErrInvalidDateOfBirth
		}
		upd.DateOfBirth = &dob
	}

	if err := s.repo.UpdateProfile(ctx, userID, upd); err != nil {
		s.logger.Warn("update profile failed", zap.String("user_id", userID), zap.Error(err))
		return UserResponse{}, MapRepositoryError(err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return UserResponse{}, MapRepositoryError(err)
	}

	s.logger.Info("profile updated", zap.String("user_id", userID))
	return MapToResponse(*u), nil
}

// MapToResponse never exposes the password hash.
func MapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		PhoneNumber:     u.Phone,
		Address:         u.Address,
		ProfileImage:    u.ProfileImage,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
	if u.DepartmentID != nil {
		resp.DepartmentID = u.DepartmentID.String()
	}
	if u.Department != nil {
		resp.Department = u.Department.Name
	}
	if u.ManagerID != nil {
		resp.ManagerID = u.ManagerID.String()
	}
	if u.DateOfBirth != nil {
		resp.DateOfBirth = u.DateOfBirth.Format(dateLayout)
	}
	return resp
}
