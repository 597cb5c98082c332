package attendance

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const recordColumns = `attendance.id, attendance.employee_id, attendance.date, attendance.status,
	attendance.remarks, attendance.created_at, attendance.updated_at,
	e.id AS emp_id, e.employee_code AS emp_employee_code, e.full_name AS emp_full_name,
	e.email AS emp_email, e.department AS emp_department`

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, excludeID string) (*Attendance, error)
	FindAll(ctx context.Context, date *time.Time) ([]Record, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Record, error)
	FindRecent(ctx context.Context, limit int) ([]Record, error)
	FindEmployee(ctx context.Context, employeeID string) (*EmployeeRef, error)
	Delete(ctx context.Context, id string) (*Record, error)
	CountByStatus(ctx context.Context, employeeID string) (StatusCounts, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	res := r.db.WithContext(ctx).
		Model(a).
		Select("*").
		Omit("id", "created_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, excludeID string) (*Attendance, error) {
	var a Attendance
	q := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date.Format(dateLayout))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Take(&a).Error
	return &a, err
}

func (r *repository) records(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("attendance").
		Select(recordColumns).
		Joins("JOIN employees e ON e.id = attendance.employee_id").
		Order("attendance.date DESC, attendance.created_at DESC")
}

func (r *repository) FindAll(ctx context.Context, date *time.Time) ([]Record, error) {
	var rows []Record
	q := r.records(ctx)
	if date != nil {
		q = q.Where("attendance.date = ?", date.Format(dateLayout))
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	var rows []Record
	err := r.records(ctx).
		Where("attendance.employee_id = ?", employeeID).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]Record, error) {
	var rows []Record
	err := r.records(ctx).Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *repository) FindEmployee(ctx context.Context, employeeID string) (*EmployeeRef, error) {
	var ref EmployeeRef
	err := r.db.WithContext(ctx).
		Select("id, employee_code, full_name, email, department").
		Where("id = ?", employeeID).
		Take(&ref).Error
	return &ref, err
}

// Delete removes the record and returns it joined with its employee as it
// was at deletion time.
func (r *repository) Delete(ctx context.Context, id string) (*Record, error) {
	var rec Record
	res := r.db.WithContext(ctx).Raw(`
DELETE FROM attendance
USING employees e
WHERE attendance.id = ? AND attendance.employee_id = e.id
RETURNING `+recordColumns, id).Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *repository) CountByStatus(ctx context.Context, employeeID string) (StatusCounts, error) {
	var counts StatusCounts
	err := r.db.WithContext(ctx).Raw(`
SELECT
	COUNT(*) FILTER (WHERE status = ?) AS present,
	COUNT(*) FILTER (WHERE status = ?) AS absent,
	COUNT(*) FILTER (WHERE status = ?) AS leave,
	COUNT(*) AS total
FROM attendance
WHERE employee_id = ?
`, StatusPresent, StatusAbsent, StatusLeave, employeeID).Scan(&counts).Error
	return counts, err
}
