package domain

import "time"

// HistoryKind captures which ticket field a ledger entry records.
type HistoryKind string

const (
	HistoryStatusChanged      HistoryKind = "STATUS_CHANGED"
	HistoryPriorityChanged    HistoryKind = "PRIORITY_CHANGED"
	HistoryDepartmentAssigned HistoryKind = "DEPARTMENT_ASSIGNED"
	HistorySectionAssigned    HistoryKind = "SECTION_ASSIGNED"
	HistoryAgentAssigned      HistoryKind = "AGENT_ASSIGNED"
)

// Display fallbacks used for ledger values when a reference is absent.
// Entries compare by these display values, not raw ids.
const (
	UnassignedLabel = "unassigned"
	NoneLabel       = "none"
)

// HistoryEntry is one immutable record of a field change on a ticket.
// Entries are written only when the displayed value actually changed and
// are never updated or deleted.
type HistoryEntry struct {
	ID        string
	TicketID  string
	ActorID   string
	Kind      HistoryKind
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}
