package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskforge/helpdesk/internal/events"
	"github.com/deskforge/helpdesk/internal/observability"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// SweeperService closes tickets that sat in RESOLVED past the idle cutoff.
// The sweep is a bulk predicate update: running it twice in a row is a
// no-op, and it never writes ledger entries.
type SweeperService struct {
	tickets    repository.TicketRepository
	idleCutoff time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSweeperService constructs the service.
func NewSweeperService(tickets repository.TicketRepository, idleCutoff time.Duration, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *SweeperService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweeperService{
		tickets:    tickets,
		idleCutoff: idleCutoff,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// SweepIdleResolved closes every RESOLVED ticket untouched since the idle
// cutoff. A nil tenantID sweeps all tenants; the returned count is the
// number of tickets closed by this run.
func (s *SweeperService) SweepIdleResolved(ctx context.Context, tenantID *string) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.idleCutoff)
	closed, err := s.tickets.CloseIdleResolved(ctx, tenantID, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if closed == 0 {
		return 0, nil
	}

	s.metrics.RecordSweep(closed)
	s.logger.Info("closed idle resolved tickets",
		zap.Int64("closed", closed),
		zap.Time("cutoff", cutoff),
	)
	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketsSwept,
			Actor:     events.Actor{System: true},
			Timestamp: time.Now(),
			Payload:   events.TicketsSweptPayload{Closed: closed},
		}
		if tenantID != nil {
			event.TenantID = *tenantID
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
	return closed, nil
}
