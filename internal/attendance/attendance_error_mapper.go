package attendance

import (
	"errors"
	"strings"

	attendanceerrors "hrms-lite/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	constraintEmployeeDate = "uq_attendance_employee_date"
	constraintEmployeeFK   = "fk_attendance_employee"
	constraintStatusCheck  = "chk_attendance_status"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintEmployeeDate:
			return attendanceerrors.ErrAttendanceAlreadyExists
		case pgErr.Code == "23503" && pgErr.ConstraintName == constraintEmployeeFK:
			return attendanceerrors.ErrEmployeeNotFound
		case pgErr.Code == "23514" && pgErr.ConstraintName == constraintStatusCheck:
			return attendanceerrors.ErrInvalidStatus
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmployeeDate) {
		return attendanceerrors.ErrAttendanceAlreadyExists
	}
	if strings.Contains(errMsg, "violates foreign key constraint") && strings.Contains(errMsg, constraintEmployeeFK) {
		return attendanceerrors.ErrEmployeeNotFound
	}

	return err
}

// mapEmployeeLookupError reports a missing employee row as the employee,
// not the attendance record, being absent.
func mapEmployeeLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrEmployeeNotFound
	}
	return mapRepositoryError(err)
}
