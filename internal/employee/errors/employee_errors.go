package employeeerrors

import (
	"hrms-lite/internal/shared/apperror"
	"net/http"
)

// Duplicates are reported as 400, the status the web client expects.
var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeCodeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee ID already exists",
		http.StatusBadRequest,
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Email is already registered",
		http.StatusBadRequest,
	)
	ErrMissingRequiredFields = apperror.New(
		apperror.CodeValidation,
		"Missing required fields",
		http.StatusBadRequest,
	)
)
