package dashboarderrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var ErrInvalidUserID = apperror.New(
	"INVALID_USER_ID",
	"Invalid user id",
	http.StatusBadRequest,
)
