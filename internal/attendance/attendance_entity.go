package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLeave   = "Leave"
)

// Attendance is one day's status for one employee. The pair
// (employee_id, date) is unique.
type Attendance struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	Date       time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2;index:idx_attendance_date"`
	Status     string    `gorm:"column:status;type:varchar(10);not null"`
	Remarks    string    `gorm:"column:remarks;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// EmployeeRef is the read-only slice of an employee row embedded in
// attendance responses.
type EmployeeRef struct {
	ID           uuid.UUID `gorm:"column:id"`
	EmployeeCode string    `gorm:"column:employee_code"`
	FullName     string    `gorm:"column:full_name"`
	Email        string    `gorm:"column:email"`
	Department   string    `gorm:"column:department"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

// Record is an attendance row joined with its employee.
type Record struct {
	Attendance
	Employee EmployeeRef `gorm:"embedded;embeddedPrefix:emp_"`
}

// StatusCounts is the per-status aggregate of one employee's records.
type StatusCounts struct {
	Present int64 `gorm:"column:present"`
	Absent  int64 `gorm:"column:absent"`
	Leave   int64 `gorm:"column:leave"`
	Total   int64 `gorm:"column:total"`
}
