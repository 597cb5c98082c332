package app

import (
	"fmt"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/employee"
	"hrms-lite/internal/messaging/kafka"

	"gorm.io/gorm"
)

type constraintDDL struct {
	table string
	name  string
	ddl   string
}

// Constraints AutoMigrate cannot express from the models.
var constraints = []constraintDDL{
	{
		table: "attendance",
		name:  "fk_attendance_employee",
		ddl: `ALTER TABLE attendance ADD CONSTRAINT fk_attendance_employee
	FOREIGN KEY (employee_id) REFERENCES employees(id) ON DELETE CASCADE`,
	},
	{
		table: "attendance",
		name:  "chk_attendance_status",
		ddl: `ALTER TABLE attendance ADD CONSTRAINT chk_attendance_status
	CHECK (status IN ('Present', 'Absent', 'Leave'))`,
	},
}

// Migrate creates or updates the tables and adds the missing constraints.
// It is safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&employee.Employee{}, &attendance.Attendance{}, &kafka.OutboxEvent{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return ensureConstraints(db)
}

func ensureConstraints(db *gorm.DB) error {
	for _, c := range constraints {
		if db.Migrator().HasConstraint(c.table, c.name) {
			continue
		}
		if err := db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}
	return nil
}
