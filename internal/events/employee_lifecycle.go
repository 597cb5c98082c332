package events

import "time"

const EmployeeLifecycleTopic = "hrms.employee.lifecycle.v1"

const (
	EmployeeCreated = "employee.created"
	EmployeeDeleted = "employee.deleted"
)

type EmployeeLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeCode string    `json:"employee_code"`
	Department   string    `json:"department"`
	OccurredAt   time.Time `json:"occurred_at"`
}
