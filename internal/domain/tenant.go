package domain

import "time"

// Tenant is an isolated customer workspace. Every other entity is scoped
// to exactly one tenant.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
