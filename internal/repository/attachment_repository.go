package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskforge/helpdesk/internal/domain"
)

// AttachmentRepository stores comment attachment metadata. Blob storage is
// external; only references live here.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.CommentAttachment) error
	ListByComment(ctx context.Context, commentID string) ([]domain.CommentAttachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository builds the repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) q(ctx context.Context) Querier {
	return querier(ctx, r.pool)
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.CommentAttachment) error {
	const query = `
        INSERT INTO comment_attachments (comment_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q(ctx).QueryRow(ctx, query,
		attachment.CommentID,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByComment(ctx context.Context, commentID string) ([]domain.CommentAttachment, error) {
	const query = `
        SELECT id, comment_id, storage_key, file_name, mime_type, size_bytes, created_at
        FROM comment_attachments WHERE comment_id=$1 ORDER BY created_at ASC`
	rows, err := r.q(ctx).Query(ctx, query, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CommentAttachment
	for rows.Next() {
		var att domain.CommentAttachment
		if err := rows.Scan(
			&att.ID,
			&att.CommentID,
			&att.StorageKey,
			&att.FileName,
			&att.MimeType,
			&att.SizeBytes,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
