package employee

import (
	"errors"
	"strings"

	employeeerrors "hrms-lite/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	constraintEmployeeCode  = "uq_employees_employee_code"
	constraintEmployeeEmail = "uq_employees_email"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch pgErr.ConstraintName {
			case constraintEmployeeCode:
				return employeeerrors.ErrEmployeeCodeAlreadyExists
			case constraintEmployeeEmail:
				return employeeerrors.ErrEmailAlreadyExists
			}
		case "22P02":
			// invalid_text_representation: an id that is not a uuid
			return employeeerrors.ErrEmployeeNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmployeeCode) {
		return employeeerrors.ErrEmployeeCodeAlreadyExists
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmployeeEmail) {
		return employeeerrors.ErrEmailAlreadyExists
	}

	return err
}
