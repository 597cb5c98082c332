package events

import "time"

const AttendanceTopic = "hrms.attendance.v1"

const (
	AttendanceRecorded = "attendance.recorded"
	AttendanceUpdated  = "attendance.updated"
	AttendanceDeleted  = "attendance.deleted"
)

type AttendanceChangedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	AttendanceID string    `json:"attendance_id"`
	EmployeeID   string    `json:"employee_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
