package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status code and details", func(t *testing.T) {
		err := New("PAST_DATE", "Start date cannot be in the past", http.StatusBadRequest).
			WithDetails(map[string]any{"field": "startDate"})

		got := ToHTTP(fmt.Errorf("create: %w", err))

		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, "PAST_DATE", got.Code)
		assert.Equal(t, "Start date cannot be in the past", got.Message)
		assert.Equal(t, map[string]any{"field": "startDate"}, got.Details)
	})

	t.Run("unknown error becomes opaque 500", func(t *testing.T) {
		got := ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, CodeInternalError, got.Code)
		assert.Equal(t, "Internal server error", got.Message)
		assert.Nil(t, got.Details)
	})
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrInvalidInput.WithDetails("x")

	assert.Nil(t, ErrInvalidInput.Details)
	assert.True(t, errors.Is(withDetails, ErrInvalidInput))
	assert.False(t, errors.Is(withDetails, ErrNotFound))
}

type sample struct {
	StartDate string `json:"startDate" validate:"required"`
	LeaveType string `json:"leave_type" validate:"oneof=ANNUAL SICK"`
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)

	err := v.Struct(sample{LeaveType: "HOLIDAY"})
	require.Error(t, err)

	mapped := MapValidationError(err)

	var appErr *AppError
	require.True(t, errors.As(mapped, &appErr))
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "Start Date is required", appErr.Message)
	assert.Equal(t, []FieldDetail{
		{Field: "startDate", Rule: "required"},
		{Field: "leave_type", Rule: "oneof"},
	}, appErr.Details)
}

func TestMapValidationError_Fallback(t *testing.T) {
	mapped := MapValidationError(errors.New("EOF"))

	got := ToHTTP(mapped)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, CodeValidation, got.Code)
}
