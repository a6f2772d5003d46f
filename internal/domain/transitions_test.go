package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusOnComment(t *testing.T) {
	staffReply := CommentEvent{AuthorIsStaff: true, TicketHasAssignee: true}
	requesterReply := CommentEvent{AuthorIsRequester: true}

	cases := []struct {
		name       string
		current    TicketStatus
		event      CommentEvent
		wantStatus TicketStatus
		wantFired  bool
	}{
		{"staff reply on open assigned ticket", TicketStatusOpen, staffReply, TicketStatusWaitingRequester, true},
		{"staff reply on in-progress ticket", TicketStatusInProgress, staffReply, TicketStatusWaitingRequester, true},
		{"staff reply on waiting-agent ticket", TicketStatusWaitingAgent, staffReply, TicketStatusWaitingRequester, true},
		{"staff reply without assignee", TicketStatusOpen, CommentEvent{AuthorIsStaff: true}, TicketStatusOpen, false},
		{"requester reply on open ticket", TicketStatusOpen, requesterReply, TicketStatusWaitingAgent, true},
		{"requester reply on in-progress ticket", TicketStatusInProgress, requesterReply, TicketStatusWaitingAgent, true},
		{"requester reply on waiting-requester ticket", TicketStatusWaitingRequester, requesterReply, TicketStatusWaitingAgent, true},
		{"requester reply on waiting-agent ticket", TicketStatusWaitingAgent, requesterReply, TicketStatusWaitingAgent, false},
		{"on-hold is inert for staff", TicketStatusOnHold, staffReply, TicketStatusOnHold, false},
		{"resolved is inert for requester", TicketStatusResolved, requesterReply, TicketStatusResolved, false},
		{"closed is inert", TicketStatusClosed, staffReply, TicketStatusClosed, false},
		{"internal staff comment never fires", TicketStatusOpen, CommentEvent{AuthorIsStaff: true, TicketHasAssignee: true, IsInternal: true}, TicketStatusOpen, false},
		{"internal requester comment never fires", TicketStatusWaitingRequester, CommentEvent{AuthorIsRequester: true, IsInternal: true}, TicketStatusWaitingRequester, false},
		{"staff rule wins when staff member is requester", TicketStatusOpen, CommentEvent{AuthorIsStaff: true, AuthorIsRequester: true, TicketHasAssignee: true}, TicketStatusWaitingRequester, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fired := NextStatusOnComment(tc.current, tc.event)
			assert.Equal(t, tc.wantStatus, got)
			assert.Equal(t, tc.wantFired, fired)
		})
	}
}

func TestIsResolvedState(t *testing.T) {
	assert.True(t, IsResolvedState(TicketStatusResolved))
	assert.True(t, IsResolvedState(TicketStatusClosed))
	assert.False(t, IsResolvedState(TicketStatusOnHold))
	assert.False(t, IsResolvedState(TicketStatusWaitingAgent))
}
