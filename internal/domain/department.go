package domain

import "time"

// Department represents a high-level organizational unit within a tenant.
type Department struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Section is a sub-group under a department. A ticket's section must always
// belong to the ticket's department.
type Section struct {
	ID           string
	TenantID     string
	DepartmentID string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DepartmentMember links a staff user to a department they work in.
// Agent visibility and assignment eligibility derive from these rows.
type DepartmentMember struct {
	TenantID     string
	DepartmentID string
	UserID       string
	CreatedAt    time.Time
}
