package dto

import (
	"time"

	"github.com/deskforge/helpdesk/internal/domain"
)

// CreateTicketRequest is the payload for opening a ticket.
type CreateTicketRequest struct {
	Subject      string  `json:"subject"`
	Description  string  `json:"description"`
	DepartmentID string  `json:"department_id"`
	SectionID    *string `json:"section_id"`
	Priority     string  `json:"priority"`
}

// UpdateTicketRequest is a partial patch. A null value on a nullable field
// means "clear it"; an absent field means "leave it alone". The Provided
// flags are set by a presence-aware unmarshal in the handler.
type UpdateTicketRequest struct {
	Subject      *string `json:"subject"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssigneeID   *string `json:"assignee_id"`
	DepartmentID *string `json:"department_id"`
	SectionID    *string `json:"section_id"`

	AssigneeProvided   bool `json:"-"`
	DepartmentProvided bool `json:"-"`
	SectionProvided    bool `json:"-"`
}

// AssignTicketRequest sets the assignee.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// CreateCommentRequest appends a comment to a ticket.
type CreateCommentRequest struct {
	Content     string              `json:"content"`
	IsInternal  bool                `json:"is_internal"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest carries attachment metadata on a comment.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// TicketSummary is the listing shape.
type TicketSummary struct {
	ID           string                `json:"id"`
	RequesterID  string                `json:"requester_id"`
	AssigneeID   *string               `json:"assignee_id"`
	DepartmentID *string               `json:"department_id"`
	SectionID    *string               `json:"section_id"`
	Subject      string                `json:"subject"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
}

// TicketDetailResponse is the single-ticket shape with its comment thread.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse is one comment in a thread.
type CommentResponse struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"author_id"`
	Content     string               `json:"content"`
	IsInternal  bool                 `json:"is_internal"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse is attachment metadata on a comment.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// HistoryEntryResponse is one ledger row.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Kind      string    `json:"kind"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}
