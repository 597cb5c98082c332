package attendance

import "time"

type CreateAttendanceRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=Present Absent Leave"`
	Remarks    string `json:"remarks"`
}

type UpdateAttendanceRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=Present Absent Leave"`
	Remarks    string `json:"remarks"`
}

type EmployeeRefResponse struct {
	LegacyID   string `json:"_id"`
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// AttendanceResponse carries the employee under "employeeId", the field name
// the web client reads it from.
type AttendanceResponse struct {
	LegacyID  string               `json:"_id"`
	ID        string               `json:"id"`
	Employee  *EmployeeRefResponse `json:"employeeId"`
	Date      string               `json:"date"`
	Status    string               `json:"status"`
	Remarks   string               `json:"remarks"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type SummaryResponse struct {
	Employee     EmployeeRefResponse `json:"employee"`
	TotalPresent int64               `json:"totalPresent"`
	TotalAbsent  int64               `json:"totalAbsent"`
	TotalLeave   int64               `json:"totalLeave"`
	TotalRecords int64               `json:"totalRecords"`
}
