package service

import (
	"context"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/repository"
)

// DepartmentScope describes which departments a caller may read across.
// Admins and supervisors are unrestricted; agents see only the departments
// they belong to. An agent with zero memberships gets an empty restricted
// scope, which reads as "no data", not an error.
type DepartmentScope struct {
	Restricted    bool
	DepartmentIDs []string
}

// Empty reports whether a restricted scope covers no departments at all.
func (s DepartmentScope) Empty() bool {
	return s.Restricted && len(s.DepartmentIDs) == 0
}

// ScopeResolver centralizes the role-to-department-restriction rule shared
// by ticket listing and analytics.
type ScopeResolver struct {
	departments repository.DepartmentRepository
}

// NewScopeResolver builds the resolver.
func NewScopeResolver(departments repository.DepartmentRepository) *ScopeResolver {
	return &ScopeResolver{departments: departments}
}

// Resolve returns the department scope for the acting staff user.
func (r *ScopeResolver) Resolve(ctx context.Context, actor *domain.User) (DepartmentScope, error) {
	if actor.Role != domain.RoleAgent {
		return DepartmentScope{}, nil
	}
	ids, err := r.departments.ListMemberDepartmentIDs(ctx, actor.TenantID, actor.ID)
	if err != nil {
		return DepartmentScope{}, err
	}
	return DepartmentScope{Restricted: true, DepartmentIDs: ids}, nil
}
