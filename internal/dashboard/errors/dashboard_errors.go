package dashboarderrors

import (
	"hrms-lite/internal/shared/apperror"
	"net/http"
)

var ErrInvalidDays = apperror.New(
	apperror.CodeValidation,
	"Days must be a whole number between 1 and 31",
	http.StatusBadRequest,
)
