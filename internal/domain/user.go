package domain

import "time"

// UserRole partitions privileges inside a tenant. USER is a requester;
// the remaining roles are staff.
type UserRole string

const (
	RoleUser       UserRole = "USER"
	RoleAgent      UserRole = "AGENT"
	RoleSupervisor UserRole = "SUPERVISOR"
	RoleAdmin      UserRole = "ADMIN"
)

// IsStaff reports whether the role may work tickets beyond its own.
func (r UserRole) IsStaff() bool {
	return r == RoleAgent || r == RoleSupervisor || r == RoleAdmin
}

// Assignable reports whether a user with this role may be set as a
// ticket assignee.
func (r UserRole) Assignable() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the domain model for requesters and staff alike.
type User struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
