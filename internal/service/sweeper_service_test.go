package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/events"
)

func seedSweeperTicket(t *testing.T, repo *stubTicketRepo, tenantID string, status domain.TicketStatus, updatedAt time.Time) string {
	t.Helper()
	ticket := &domain.Ticket{
		TenantID:    tenantID,
		RequesterID: "user-someone",
		Subject:     "stale",
		Description: "stale",
		Status:      status,
		Priority:    domain.TicketPriorityMedium,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	repo.mu.Lock()
	repo.tickets[ticket.ID].UpdatedAt = updatedAt
	repo.mu.Unlock()
	return ticket.ID
}

func TestSweepClosesOnlyIdleResolvedTickets(t *testing.T) {
	repo := newStubTicketRepo()
	dispatcher := &recordingDispatcher{}
	sweeper := NewSweeperService(repo, 7*24*time.Hour, dispatcher, nil, nil)

	old := time.Now().UTC().Add(-8 * 24 * time.Hour)
	fresh := time.Now().UTC().Add(-time.Hour)
	idleID := seedSweeperTicket(t, repo, "tenant-1", domain.TicketStatusResolved, old)
	freshID := seedSweeperTicket(t, repo, "tenant-1", domain.TicketStatusResolved, fresh)
	openID := seedSweeperTicket(t, repo, "tenant-1", domain.TicketStatusOpen, old)

	closed, err := sweeper.SweepIdleResolved(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	swept, err := repo.GetByID(context.Background(), "tenant-1", idleID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, swept.Status)

	untouched, err := repo.GetByID(context.Background(), "tenant-1", freshID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, untouched.Status)

	stillOpen, err := repo.GetByID(context.Background(), "tenant-1", openID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stillOpen.Status)

	sweptEvents := dispatcher.byType(events.EventTicketsSwept)
	require.Len(t, sweptEvents, 1)
	payload, ok := sweptEvents[0].Payload.(events.TicketsSweptPayload)
	require.True(t, ok)
	assert.Equal(t, int64(1), payload.Closed)
	assert.True(t, sweptEvents[0].Actor.System)
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := newStubTicketRepo()
	dispatcher := &recordingDispatcher{}
	sweeper := NewSweeperService(repo, 7*24*time.Hour, dispatcher, nil, nil)

	old := time.Now().UTC().Add(-30 * 24 * time.Hour)
	seedSweeperTicket(t, repo, "tenant-1", domain.TicketStatusResolved, old)

	first, err := sweeper.SweepIdleResolved(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := sweeper.SweepIdleResolved(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Len(t, dispatcher.byType(events.EventTicketsSwept), 1, "no-op sweeps publish nothing")
}

func TestSweepScopedToTenant(t *testing.T) {
	repo := newStubTicketRepo()
	sweeper := NewSweeperService(repo, 7*24*time.Hour, nil, nil, nil)

	old := time.Now().UTC().Add(-8 * 24 * time.Hour)
	firstID := seedSweeperTicket(t, repo, "tenant-1", domain.TicketStatusResolved, old)
	secondID := seedSweeperTicket(t, repo, "tenant-2", domain.TicketStatusResolved, old)

	tenant := "tenant-1"
	closed, err := sweeper.SweepIdleResolved(context.Background(), &tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	swept, err := repo.GetByID(context.Background(), "tenant-1", firstID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, swept.Status)

	other, err := repo.GetByID(context.Background(), "tenant-2", secondID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, other.Status)
}
