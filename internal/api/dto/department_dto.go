package dto

import "time"

// CreateDepartmentRequest adds a department.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest patches a department.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateSectionRequest adds a section under a department.
type CreateSectionRequest struct {
	Name string `json:"name"`
}

// MemberRequest adds or removes a department member.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// DepartmentResponse is the public department shape.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SectionResponse is the public section shape.
type SectionResponse struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
