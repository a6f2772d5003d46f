package domain

// CommentEvent captures the facts about a freshly posted comment that drive
// silent status transitions. The transition table is pure so it can be
// exercised without a store.
type CommentEvent struct {
	AuthorIsStaff     bool
	AuthorIsRequester bool
	TicketHasAssignee bool
	IsInternal        bool
}

// StatusOnAssignment is the status every assignment forces, regardless of
// the ticket's prior state.
const StatusOnAssignment = TicketStatusInProgress

// NextStatusOnComment returns the status a ticket moves to as a side effect
// of the given comment, and whether any transition fires at all. Internal
// comments never transition; neither do tickets already ON_HOLD, RESOLVED,
// or CLOSED. These silent transitions are deliberately not audited in the
// history ledger.
func NextStatusOnComment(current TicketStatus, ev CommentEvent) (TicketStatus, bool) {
	if ev.IsInternal {
		return current, false
	}
	switch current {
	case TicketStatusOnHold, TicketStatusResolved, TicketStatusClosed:
		return current, false
	}
	if ev.AuthorIsStaff && ev.TicketHasAssignee {
		switch current {
		case TicketStatusWaitingAgent, TicketStatusInProgress, TicketStatusOpen:
			return TicketStatusWaitingRequester, true
		}
	}
	if ev.AuthorIsRequester {
		switch current {
		case TicketStatusWaitingRequester, TicketStatusInProgress, TicketStatusOpen:
			return TicketStatusWaitingAgent, true
		}
	}
	return current, false
}
