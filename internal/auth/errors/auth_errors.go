package autherrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid credentials or account not verified",
		http.StatusUnauthorized,
	)

	ErrInvalidOTP = apperror.New(
		"INVALID_OTP",
		"Invalid or expired OTP",
		http.StatusBadRequest,
	)

	ErrAlreadyVerified = apperror.New(
		apperror.CodeInvalidState,
		"Email is already verified",
		http.StatusBadRequest,
	)

	ErrInvalidDateOfBirth = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date of birth, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to issue access token",
		http.StatusInternalServerError,
	)
)
