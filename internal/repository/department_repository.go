package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskforge/helpdesk/internal/domain"
)

// DepartmentRepository manages departments and their staff memberships.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Department, error)
	ListActive(ctx context.Context, tenantID string) ([]domain.Department, error)
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Department, error)
	AddMember(ctx context.Context, tenantID, departmentID, userID string) error
	RemoveMember(ctx context.Context, tenantID, departmentID, userID string) error
	IsMember(ctx context.Context, tenantID, departmentID, userID string) (bool, error)
	ListMemberDepartmentIDs(ctx context.Context, tenantID, userID string) ([]string, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) q(ctx context.Context) Querier {
	return querier(ctx, r.pool)
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (tenant_id, name, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.q(ctx).QueryRow(ctx, query,
		dept.TenantID,
		dept.Name,
		dept.Description,
		dept.IsActive,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4 AND tenant_id=$5`
	cmd, err := r.q(ctx).Exec(ctx, query,
		dept.Name,
		dept.Description,
		dept.IsActive,
		dept.ID,
		dept.TenantID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Department, error) {
	const query = `
        SELECT id, tenant_id, name, description, is_active, created_at, updated_at
        FROM departments WHERE id=$1 AND tenant_id=$2`
	var dept domain.Department
	if err := r.q(ctx).QueryRow(ctx, query, id, tenantID).Scan(
		&dept.ID,
		&dept.TenantID,
		&dept.Name,
		&dept.Description,
		&dept.IsActive,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) ListActive(ctx context.Context, tenantID string) ([]domain.Department, error) {
	const query = `
        SELECT id, tenant_id, name, description, is_active, created_at, updated_at
        FROM departments WHERE tenant_id=$1 AND is_active = TRUE ORDER BY name ASC`
	rows, err := r.q(ctx).Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
        SELECT id, tenant_id, name, description, is_active, created_at, updated_at
        FROM departments WHERE tenant_id=$1 AND id = ANY($2::uuid[])`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) AddMember(ctx context.Context, tenantID, departmentID, userID string) error {
	const query = `
        INSERT INTO department_members (tenant_id, department_id, user_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (department_id, user_id) DO NOTHING`
	_, err := r.q(ctx).Exec(ctx, query, tenantID, departmentID, userID)
	return err
}

func (r *departmentRepository) RemoveMember(ctx context.Context, tenantID, departmentID, userID string) error {
	const query = `
        DELETE FROM department_members WHERE tenant_id=$1 AND department_id=$2 AND user_id=$3`
	_, err := r.q(ctx).Exec(ctx, query, tenantID, departmentID, userID)
	return err
}

func (r *departmentRepository) IsMember(ctx context.Context, tenantID, departmentID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM department_members
            WHERE tenant_id=$1 AND department_id=$2 AND user_id=$3
        )`
	var exists bool
	if err := r.q(ctx).QueryRow(ctx, query, tenantID, departmentID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *departmentRepository) ListMemberDepartmentIDs(ctx context.Context, tenantID, userID string) ([]string, error) {
	const query = `
        SELECT department_id FROM department_members
        WHERE tenant_id=$1 AND user_id=$2`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.TenantID, &dept.Name, &dept.Description, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
