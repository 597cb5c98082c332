package dashboard

import (
	"context"
	"time"

	"hrms-lite/internal/attendance"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// DailyCount is the per-status count of attendance rows for one date.
type DailyCount struct {
	Date    time.Time `gorm:"column:date"`
	Present int64     `gorm:"column:present"`
	Absent  int64     `gorm:"column:absent"`
	Leave   int64     `gorm:"column:leave"`
}

// DepartmentCount is the head count of a department and its present
// records within a date range.
type DepartmentCount struct {
	Department string `gorm:"column:department"`
	Employees  int64  `gorm:"column:employees"`
	Present    int64  `gorm:"column:present"`
}

//go:generate mockgen -source=dashboard_repo.go -destination=mock/dashboard_repo_mock.go -package=mock
type Repository interface {
	CountEmployees(ctx context.Context) (int64, error)
	DailyCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error)
	StatusTotals(ctx context.Context) (StatusDistribution, error)
	DepartmentCounts(ctx context.Context, from, to time.Time) ([]DepartmentCount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("employees").Count(&n).Error
	return n, err
}

func (r *repository) DailyCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.WithContext(ctx).Raw(`
SELECT
	date,
	COUNT(*) FILTER (WHERE status = ?) AS present,
	COUNT(*) FILTER (WHERE status = ?) AS absent,
	COUNT(*) FILTER (WHERE status = ?) AS leave
FROM attendance
WHERE date BETWEEN ? AND ?
GROUP BY date
ORDER BY date
`, attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLeave,
		from.Format(dateLayout), to.Format(dateLayout)).Scan(&rows).Error
	return rows, err
}

func (r *repository) StatusTotals(ctx context.Context) (StatusDistribution, error) {
	var totals StatusDistribution
	err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*) FILTER (WHERE status = ?) AS present,
	COUNT(*) FILTER (WHERE status = ?) AS absent,
	COUNT(*) FILTER (WHERE status = ?) AS leave
FROM attendance
`, attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLeave).Scan(&totals).Error
	return totals, err
}

// DepartmentCounts covers every department with at least one employee,
// including those without attendance in the range.
func (r *repository) DepartmentCounts(ctx context.Context, from, to time.Time) ([]DepartmentCount, error) {
	var rows []DepartmentCount
	err := r.db.WithContext(ctx).Raw(`
SELECT
	e.department,
	COUNT(DISTINCT e.id) AS employees,
	COUNT(a.id) FILTER (WHERE a.status = ?) AS present
FROM employees e
LEFT JOIN attendance a
	ON a.employee_id = e.id AND a.date BETWEEN ? AND ?
GROUP BY e.department
ORDER BY e.department
`, attendance.StatusPresent, from.Format(dateLayout), to.Format(dateLayout)).Scan(&rows).Error
	return rows, err
}
