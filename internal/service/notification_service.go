package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/deskforge/helpdesk/internal/config"
	"github.com/deskforge/helpdesk/internal/events"
)

// NotificationService turns domain events into outbound notifications.
// Delivery is a stub: it logs the message it would send, carrying the
// configured channel endpoints so a real sender can slot in later.
type NotificationService struct {
	dispatcher events.Dispatcher
	cfg        config.NotificationConfig
	logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, cfg: cfg, logger: logger}
}

// RegisterHandlers subscribes the notification handlers to the dispatcher.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	s.dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	s.dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	s.dispatcher.Subscribe(events.EventTicketCommentAdded, s.onCommentAdded)
	s.dispatcher.Subscribe(events.EventTicketsSwept, s.onTicketsSwept)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.deliver(event, "ticket created",
		zap.String("subject", payload.Subject),
		zap.String("priority", string(payload.Priority)),
	)
	return nil
}

func (s *NotificationService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	// Silent flips come from comment activity; they stay out of the
	// participants' inboxes.
	if payload.Silent {
		return nil
	}
	s.deliver(event, "ticket status changed",
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)),
	)
	return nil
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	s.deliver(event, "ticket assigned", zap.String("assignee_id", payload.AssigneeID))
	return nil
}

func (s *NotificationService) onCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return nil
	}
	if payload.IsInternal {
		return nil
	}
	s.deliver(event, "new comment on ticket", zap.String("preview", payload.Preview))
	return nil
}

func (s *NotificationService) onTicketsSwept(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketsSweptPayload)
	if !ok {
		return nil
	}
	s.deliver(event, "idle resolved tickets closed", zap.Int64("closed", payload.Closed))
	return nil
}

func (s *NotificationService) deliver(event events.Event, message string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("event_id", event.ID),
		zap.String("tenant_id", event.TenantID),
		zap.String("ticket_id", event.TicketID),
		zap.String("email_from", s.cfg.EmailFrom),
	)
	if s.cfg.WebhookURL != "" {
		fields = append(fields, zap.String("webhook_url", s.cfg.WebhookURL))
	}
	s.logger.Info("notification: "+message, fields...)
}
