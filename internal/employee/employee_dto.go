package employee

import "time"

type CreateEmployeeRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	FullName   string `json:"fullName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required"`
}

type UpdateEmployeeRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	FullName   string `json:"fullName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required"`
}

// EmployeeResponse exposes the row id twice: as "_id" for clients written
// against the document-store era API and as "id".
type EmployeeResponse struct {
	LegacyID   string    `json:"_id"`
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	JoinDate   string    `json:"joinDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
