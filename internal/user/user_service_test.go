package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/shared/request"
	"go-leave/internal/user"
	usererrors "go-leave/internal/user/errors"
	mock_user "go-leave/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*mock_user.MockRepository, user.Service) {
	ctrl := gomock.NewController(t)
	mockRepo := mock_user.NewMockRepository(ctrl)
	return mockRepo, user.NewService(mockRepo)
}

func TestUserService_GetAll(t *testing.T) {
	ctx := context.Background()
	deptID := uuid.New()

	t.Run("success with filters", func(t *testing.T) {
		mockRepo, svc := setup(t)

		mockRepo.EXPECT().
			List(gomock.Any(), user.ListFilter{Role: "MANAGER", DepartmentID: deptID.String()}, request.Page{Page: 2, Limit: 5}).
			Return([]user.User{{
				ID:           uuid.New(),
				Email:        "maya@corp.io",
				FirstName:    "Maya",
				LastName:     "Lin",
				Role:         "MANAGER",
				Password:     "hash",
				DepartmentID: &deptID,
				Department:   &user.UserDepartment{ID: deptID, Name: "Engineering"},
			}}, int64(11), nil)

		res, err := svc.GetAll(ctx, user.ListUsersQuery{Page: 2, Limit: 5, Role: "manager", DepartmentID: deptID.String()})

		require.NoError(t, err)
		require.Len(t, res.Users, 1)
		assert.Equal(t, "Engineering", res.Users[0].Department)
		assert.Equal(t, 3, res.Pagination.Pages)
		assert.Equal(t, int64(11), res.Pagination.Total)
	})

	t.Run("defaults page and limit", func(t *testing.T) {
		mockRepo, svc := setup(t)

		mockRepo.EXPECT().
			List(gomock.Any(), user.ListFilter{}, request.Page{Page: 1, Limit: 10}).
			Return(nil, int64(0), nil)

		res, err := svc.GetAll(ctx, user.ListUsersQuery{})

		require.NoError(t, err)
		assert.Empty(t, res.Users)
		assert.Equal(t, 0, res.Pagination.Pages)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, svc := setup(t)
		_, err := svc.GetAll(ctx, user.ListUsersQuery{Role: "OWNER"})
		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})

	t.Run("invalid department", func(t *testing.T) {
		_, svc := setup(t)
		_, err := svc.GetAll(ctx, user.ListUsersQuery{DepartmentID: "eng"})
		assert.ErrorIs(t, err, usererrors.ErrInvalidDepartmentID)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, int64(0), errors.New("db error"))

		_, err := svc.GetAll(ctx, user.ListUsersQuery{})
		assert.EqualError(t, err, "db error")
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo, svc := setup(t)
		dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)

		mockRepo.EXPECT().
			UpdateProfile(gomock.Any(), userID.String(), user.ProfileUpdate{
				FirstName:   "Ana",
				LastName:    "Silva",
				Phone:       "+351 900",
				DateOfBirth: &dob,
				Address:     "Lisbon",
			}).
			Return(nil)
		mockRepo.EXPECT().
			FindByID(gomock.Any(), userID.String()).
			Return(&user.User{ID: userID, FirstName: "Ana", LastName: "Silva", DateOfBirth: &dob}, nil)

		res, err := svc.UpdateProfile(ctx, userID.String(), user.UpdateProfileRequest{
			FirstName:   " Ana ",
			LastName:    "Silva",
			PhoneNumber: "+351 900",
			DateOfBirth: "1990-04-02",
			Address:     "Lisbon",
		})

		require.NoError(t, err)
		assert.Equal(t, "1990-04-02", res.DateOfBirth)
		assert.Equal(t, "Ana", res.FirstName)
	})

	t.Run("bad date of birth", func(t *testing.T) {
		_, svc := setup(t)
		_, err := svc.UpdateProfile(ctx, userID.String(), user.UpdateProfileRequest{FirstName: "A", LastName: "B", DateOfBirth: "02/04/1990"})
		assert.ErrorIs(t, err, usererrors.ErrInvalidDateOfBirth)
	})

	t.Run("user missing", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().UpdateProfile(gomock.Any(), userID.String(), gomock.Any()).Return(gorm.ErrRecordNotFound)

		_, err := svc.UpdateProfile(ctx, userID.String(), user.UpdateProfileRequest{FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		_, svc := setup(t)
		_, err := svc.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo, svc := setup(t)
		id := uuid.NewString()
		mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetByID(ctx, id)
		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}
