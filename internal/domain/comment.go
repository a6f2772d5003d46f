package domain

import "time"

// Comment is a message attached to a ticket. Internal comments are visible
// to staff only and never trigger status transitions.
type Comment struct {
	ID          string
	TenantID    string
	TicketID    string
	AuthorID    string
	Content     string
	IsInternal  bool
	Attachments []CommentAttachment
	CreatedAt   time.Time
}

// CommentAttachment stores metadata for files referenced by a comment.
// Blob storage and streaming are handled outside this service.
type CommentAttachment struct {
	ID         string
	CommentID  string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
