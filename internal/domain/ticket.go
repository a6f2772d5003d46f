package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status may be
// explicitly set to any other by an authorized actor; the automatic
// transitions layered on top live in transitions.go.
type TicketStatus string

const (
	TicketStatusOpen             TicketStatus = "OPEN"
	TicketStatusInProgress       TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingRequester TicketStatus = "WAITING_REQUESTER"
	TicketStatusWaitingAgent     TicketStatus = "WAITING_AGENT"
	TicketStatusOnHold           TicketStatus = "ON_HOLD"
	TicketStatusResolved         TicketStatus = "RESOLVED"
	TicketStatusClosed           TicketStatus = "CLOSED"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingRequester,
		TicketStatusWaitingAgent, TicketStatusOnHold, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// IsResolvedState reports whether tickets in s count as resolved for
// analytics purposes.
func IsResolvedState(s TicketStatus) bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. ResolvedAt is set the first
// time the ticket reaches RESOLVED or CLOSED and cleared when it is
// reopened; it is the timestamp analytics buckets on.
type Ticket struct {
	ID           string
	TenantID     string
	RequesterID  string
	AssigneeID   *string
	DepartmentID *string
	SectionID    *string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
}
