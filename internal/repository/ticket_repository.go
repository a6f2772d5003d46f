package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskforge/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters. TenantID is mandatory: no read
// ever crosses tenant boundaries.
type TicketFilter struct {
	TenantID      string
	RequesterID   *string
	AssigneeID    *string
	DepartmentIDs []string
	SectionID     *string
	Statuses      []domain.TicketStatus
	Priorities    []domain.TicketPriority
	SearchTerm    *string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, tenantID, id string) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListResolvedInRange(ctx context.Context, tenantID string, from, to time.Time, departmentIDs []string) ([]domain.Ticket, error)
	CloseIdleResolved(ctx context.Context, tenantID *string, cutoff time.Time) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) q(ctx context.Context) Querier {
	return querier(ctx, r.pool)
}

const ticketColumns = `id, tenant_id, requester_id, assignee_id, department_id, section_id,
               subject, description, status, priority, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (tenant_id, requester_id, assignee_id, department_id, section_id, subject, description, status, priority, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.q(ctx).QueryRow(ctx, query,
		ticket.TenantID,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.DepartmentID,
		ticket.SectionID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ResolvedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_id=$1, department_id=$2, section_id=$3, subject=$4, description=$5,
            status=$6, priority=$7, resolved_at=$8, updated_at=NOW()
        WHERE id=$9 AND tenant_id=$10
        RETURNING updated_at`
	if err := r.q(ctx).QueryRow(ctx, query,
		ticket.AssigneeID,
		ticket.DepartmentID,
		ticket.SectionID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ResolvedAt,
		ticket.ID,
		ticket.TenantID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, tenantID, id string) error {
	cmd, err := r.q(ctx).Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 AND tenant_id=$2`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.q(ctx).QueryRow(ctx, query, id, tenantID), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	args := []any{filter.TenantID}
	clauses := []string{"tenant_id=$1"}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.DepartmentIDs) > 0 {
		args = append(args, filter.DepartmentIDs)
		clauses = append(clauses, fmt.Sprintf("department_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.SectionID != nil {
		args = append(args, *filter.SectionID)
		clauses = append(clauses, fmt.Sprintf("section_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListResolvedInRange(ctx context.Context, tenantID string, from, to time.Time, departmentIDs []string) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE tenant_id=$1 AND status IN ('RESOLVED','CLOSED')
          AND resolved_at >= $2 AND resolved_at <= $3`, ticketColumns)
	args := []any{tenantID, from, to}
	if len(departmentIDs) > 0 {
		args = append(args, departmentIDs)
		base += fmt.Sprintf(" AND department_id = ANY($%d::uuid[])", len(args))
	}
	base += " ORDER BY resolved_at ASC"

	rows, err := r.q(ctx).Query(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// CloseIdleResolved bulk-closes tickets left RESOLVED past the cutoff. The
// predicate keeps the sweep idempotent and safe against tickets resolved
// after the cutoff was computed.
func (r *ticketRepository) CloseIdleResolved(ctx context.Context, tenantID *string, cutoff time.Time) (int64, error) {
	query := `UPDATE tickets SET status='CLOSED', updated_at=NOW()
        WHERE status='RESOLVED' AND updated_at <= $1`
	args := []any{cutoff}
	if tenantID != nil {
		args = append(args, *tenantID)
		query += " AND tenant_id=$2"
	}
	cmd, err := r.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.DepartmentID,
		&ticket.SectionID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
