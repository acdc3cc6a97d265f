package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrPastDate = apperror.New(
		"PAST_DATE",
		"Cannot apply for leave on past dates",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		"INVALID_DATE_RANGE",
		"Start date cannot be after end date",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		"LEAVE_OVERLAP",
		"You have overlapping leave requests for the selected dates",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		"INSUFFICIENT_BALANCE",
		"Insufficient leave balance",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		"NOT_PENDING",
		"Leave request is not pending",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidApprover = apperror.New(
		apperror.CodeInvalidInput,
		"Selected approver is not an active manager, HR or admin",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Status must be one of PENDING, APPROVED, REJECTED",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown leave type",
		http.StatusBadRequest,
	)
)

// InsufficientBalance reports how many days the caller still has.
func InsufficientBalance(available float64) error {
	return ErrInsufficientBalance.WithDetails(map[string]float64{"availableDays": available})
}
