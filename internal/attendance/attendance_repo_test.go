package attendance_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hrms-lite/internal/attendance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (attendance.Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return attendance.NewRepository(gdb), mock
}

var recordRow = []string{
	"id", "employee_id", "date", "status", "remarks", "created_at", "updated_at",
	"emp_id", "emp_employee_code", "emp_full_name", "emp_email", "emp_department",
}

func TestAttendanceRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the row joined with its employee", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()
		empID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM attendance")).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(recordRow).AddRow(
				id.String(), empID.String(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Present", "", now, now,
				empID.String(), "EMP001", "Jane Doe", "jane@x.com", "Engineering",
			))

		rec, err := repo.Delete(ctx, id.String())

		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, "Present", rec.Status)
		assert.Equal(t, "EMP001", rec.Employee.EmployeeCode)
		assert.Equal(t, "Engineering", rec.Employee.Department)
	})

	t.Run("no row", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.NewString()

		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM attendance")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(recordRow))

		_, err := repo.Delete(ctx, id)

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestAttendanceRepository_CountByStatus(t *testing.T) {
	repo, mock := setupRepoTest(t)
	empID := uuid.NewString()

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WithArgs("Present", "Absent", "Leave", empID).
		WillReturnRows(sqlmock.NewRows([]string{"present", "absent", "leave", "total"}).AddRow(4, 1, 2, 7))

	counts, err := repo.CountByStatus(context.Background(), empID)

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCounts{Present: 4, Absent: 1, Leave: 2, Total: 7}, counts)
}

func TestAttendanceRepository_FindAll(t *testing.T) {
	repo, mock := setupRepoTest(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`JOIN employees e ON e.id = attendance.employee_id WHERE attendance.date = \$1 ORDER BY attendance.date DESC, attendance.created_at DESC`).
		WithArgs("2024-03-01").
		WillReturnRows(sqlmock.NewRows(recordRow))

	rows, err := repo.FindAll(context.Background(), &date)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAttendanceRepository_Update(t *testing.T) {
	row := &attendance.Attendance{
		ID:         uuid.New(),
		EmployeeID: uuid.New(),
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:     attendance.StatusLeave,
	}

	t.Run("updates the existing row", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "attendance" SET .* WHERE "id" = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Update(context.Background(), row))
	})

	t.Run("row deleted meanwhile is not inserted back", func(t *testing.T) {
		repo, mock := setupRepoTest(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "attendance" SET .* WHERE "id" = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), row)

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
