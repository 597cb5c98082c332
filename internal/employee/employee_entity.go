package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeCode string    `gorm:"column:employee_code;type:varchar(50);not null;uniqueIndex:uq_employees_employee_code"`
	FullName     string    `gorm:"column:full_name;type:varchar(150);not null"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_employees_email"`
	Department   string    `gorm:"column:department;type:varchar(100);not null"`
	JoinDate     time.Time `gorm:"column:join_date;type:date;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;index:idx_employees_created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
