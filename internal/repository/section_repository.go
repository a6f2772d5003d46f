package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskforge/helpdesk/internal/domain"
)

// SectionRepository manages sections under departments.
type SectionRepository interface {
	Create(ctx context.Context, section *domain.Section) error
	Update(ctx context.Context, section *domain.Section) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Section, error)
	ListByDepartment(ctx context.Context, tenantID, departmentID string) ([]domain.Section, error)
}

type sectionRepository struct {
	pool *pgxpool.Pool
}

// NewSectionRepository builds the repository.
func NewSectionRepository(pool *pgxpool.Pool) SectionRepository {
	return &sectionRepository{pool: pool}
}

func (r *sectionRepository) q(ctx context.Context) Querier {
	return querier(ctx, r.pool)
}

func (r *sectionRepository) Create(ctx context.Context, section *domain.Section) error {
	const query = `
        INSERT INTO sections (tenant_id, department_id, name, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.q(ctx).QueryRow(ctx, query,
		section.TenantID,
		section.DepartmentID,
		section.Name,
		section.IsActive,
	).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)
}

func (r *sectionRepository) Update(ctx context.Context, section *domain.Section) error {
	const query = `
        UPDATE sections SET name=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3 AND tenant_id=$4`
	cmd, err := r.q(ctx).Exec(ctx, query,
		section.Name,
		section.IsActive,
		section.ID,
		section.TenantID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sectionRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Section, error) {
	const query = `
        SELECT id, tenant_id, department_id, name, is_active, created_at, updated_at
        FROM sections WHERE id=$1 AND tenant_id=$2`
	var section domain.Section
	if err := r.q(ctx).QueryRow(ctx, query, id, tenantID).Scan(
		&section.ID,
		&section.TenantID,
		&section.DepartmentID,
		&section.Name,
		&section.IsActive,
		&section.CreatedAt,
		&section.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepository) ListByDepartment(ctx context.Context, tenantID, departmentID string) ([]domain.Section, error) {
	const query = `
        SELECT id, tenant_id, department_id, name, is_active, created_at, updated_at
        FROM sections WHERE tenant_id=$1 AND department_id=$2 ORDER BY name ASC`
	rows, err := r.q(ctx).Query(ctx, query, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Section
	for rows.Next() {
		var section domain.Section
		if err := rows.Scan(
			&section.ID,
			&section.TenantID,
			&section.DepartmentID,
			&section.Name,
			&section.IsActive,
			&section.CreatedAt,
			&section.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, section)
	}
	return result, rows.Err()
}
