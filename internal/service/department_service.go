package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// DepartmentService manages departments, sections and staff memberships.
// Mutations are admin-only; reads are open to any authenticated user so the
// ticket form can offer the routing choices.
type DepartmentService struct {
	departments repository.DepartmentRepository
	sections    repository.SectionRepository
	users       repository.UserRepository
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository, sections repository.SectionRepository, users repository.UserRepository) *DepartmentService {
	return &DepartmentService{departments: departments, sections: sections, users: users}
}

// CreateDepartment adds a department to the actor's tenant.
func (s *DepartmentService) CreateDepartment(ctx context.Context, actor *domain.User, name, description string) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	dept := &domain.Department{
		TenantID:    actor.TenantID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// UpdateDepartment renames or toggles a department.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, actor *domain.User, id string, name, description *string, isActive *bool) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	dept, err := s.getDepartment(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		dept.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		dept.Description = strings.TrimSpace(*description)
	}
	if isActive != nil {
		dept.IsActive = *isActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments lists the tenant's active departments.
func (s *DepartmentService) ListDepartments(ctx context.Context, actor *domain.User) ([]domain.Department, error) {
	depts, err := s.departments.ListActive(ctx, actor.TenantID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// CreateSection adds a section under a department.
func (s *DepartmentService) CreateSection(ctx context.Context, actor *domain.User, departmentID, name string) (*domain.Section, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	dept, err := s.getDepartment(ctx, actor.TenantID, departmentID)
	if err != nil {
		return nil, err
	}
	section := &domain.Section{
		TenantID:     actor.TenantID,
		DepartmentID: dept.ID,
		Name:         name,
		IsActive:     true,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, apperrors.MapError(err)
	}
	return section, nil
}

// ListSections lists the sections of one department.
func (s *DepartmentService) ListSections(ctx context.Context, actor *domain.User, departmentID string) ([]domain.Section, error) {
	if _, err := s.getDepartment(ctx, actor.TenantID, departmentID); err != nil {
		return nil, err
	}
	sections, err := s.sections.ListByDepartment(ctx, actor.TenantID, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sections, nil
}

// AddMember puts a staff user into a department. Requesters cannot be
// members; membership is what grants agents visibility.
func (s *DepartmentService) AddMember(ctx context.Context, actor *domain.User, departmentID, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.getDepartment(ctx, actor.TenantID, departmentID); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if !user.Role.IsStaff() {
		return apperrors.NewInvalidRelationship("only staff may join departments", map[string]any{"user_id": userID})
	}
	return apperrors.MapError(s.departments.AddMember(ctx, actor.TenantID, departmentID, user.ID))
}

// RemoveMember drops a membership.
func (s *DepartmentService) RemoveMember(ctx context.Context, actor *domain.User, departmentID, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return apperrors.MapError(s.departments.RemoveMember(ctx, actor.TenantID, departmentID, userID))
}

func (s *DepartmentService) getDepartment(ctx context.Context, tenantID, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

func requireAdmin(actor *domain.User) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewPermissionDenied("admin role required")
	}
	return nil
}
