package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/events"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// TicketService is the lifecycle engine: it validates and applies ticket
// mutations, derives auto-transitions from comment activity, and writes the
// history ledger. Every logical mutation and its derived side effects commit
// as one transaction.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	departments repository.DepartmentRepository
	sections    repository.SectionRepository
	users       repository.UserRepository
	history     repository.HistoryRepository
	scope       *ScopeResolver
	tx          repository.TxManager
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	DepartmentRepo repository.DepartmentRepository
	SectionRepo    repository.SectionRepository
	UserRepo       repository.UserRepository
	HistoryRepo    repository.HistoryRepository
	TxManager      repository.TxManager
	Dispatcher     events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		departments: deps.DepartmentRepo,
		sections:    deps.SectionRepo,
		users:       deps.UserRepo,
		history:     deps.HistoryRepo,
		scope:       NewScopeResolver(deps.DepartmentRepo),
		tx:          deps.TxManager,
		dispatcher:  deps.Dispatcher,
	}
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Subject      string
	Description  string
	DepartmentID string
	SectionID    *string
	Priority     domain.TicketPriority
}

// TicketUpdateInput is a partial patch. Nil pointers leave fields untouched;
// the Clear flags distinguish "unset the field" from "leave it alone".
type TicketUpdateInput struct {
	Subject         *string
	Description     *string
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
	AssigneeID      *string
	ClearAssignee   bool
	DepartmentID    *string
	ClearDepartment bool
	SectionID       *string
	ClearSection    bool
}

func (in TicketUpdateInput) touchesPrivileged() bool {
	return in.Status != nil || in.Priority != nil ||
		in.AssigneeID != nil || in.ClearAssignee ||
		in.DepartmentID != nil || in.ClearDepartment ||
		in.SectionID != nil || in.ClearSection
}

// TicketListFilter describes listing parameters before scope resolution.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CommentAttachmentInput defines attachment metadata on a new comment.
type CommentAttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// Create opens a ticket for the acting user. Status is forced to OPEN and
// priority defaults to MEDIUM.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("subject and description required", nil)
	}
	dept, err := s.getDepartment(ctx, actor.TenantID, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, apperrors.NewConflict("department inactive", map[string]any{"department_id": dept.ID})
	}
	if input.SectionID != nil {
		section, err := s.getSection(ctx, actor.TenantID, *input.SectionID)
		if err != nil {
			return nil, err
		}
		if section.DepartmentID != dept.ID {
			return nil, apperrors.NewInvalidRelationship("section not part of department", map[string]any{
				"section_id":    section.ID,
				"department_id": dept.ID,
			})
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	deptID := dept.ID
	ticket := &domain.Ticket{
		TenantID:     actor.TenantID,
		RequesterID:  actor.ID,
		DepartmentID: &deptID,
		SectionID:    input.SectionID,
		Subject:      strings.TrimSpace(input.Subject),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload: events.TicketCreatedPayload{
			DepartmentID: ticket.DepartmentID,
			SectionID:    ticket.SectionID,
			Priority:     ticket.Priority,
			Subject:      ticket.Subject,
		},
	})
	return ticket, nil
}

// Update applies a partial patch under the role rules: requesters may edit
// only subject/description of their own tickets; staff may change anything.
// One history entry is written per privileged field whose display value
// actually changed, atomically with the ticket row.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID string, patch TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() {
		if ticket.RequesterID != actor.ID {
			return nil, apperrors.NewPermissionDenied("not the ticket requester")
		}
		if patch.touchesPrivileged() {
			return nil, apperrors.NewPermissionDenied("requesters may only edit subject and description")
		}
		applyText(ticket, patch)
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishUpdated(ctx, actor, ticket, []string{"subject", "description"})
		return ticket, nil
	}

	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
	}

	// Resolve the resulting department before anything that depends on it.
	newDeptID := ticket.DepartmentID
	if patch.ClearDepartment {
		newDeptID = nil
	} else if patch.DepartmentID != nil {
		dept, err := s.getDepartment(ctx, actor.TenantID, *patch.DepartmentID)
		if err != nil {
			return nil, err
		}
		id := dept.ID
		newDeptID = &id
	}

	// Sections are validated against the resulting department; a section
	// that no longer fits is disconnected, never left dangling.
	newSectionID := ticket.SectionID
	switch {
	case patch.ClearSection:
		newSectionID = nil
	case patch.SectionID != nil:
		if newDeptID == nil {
			return nil, apperrors.NewInvalidRelationship("section requires a department", nil)
		}
		section, err := s.getSection(ctx, actor.TenantID, *patch.SectionID)
		if err != nil {
			return nil, err
		}
		if section.DepartmentID != *newDeptID {
			return nil, apperrors.NewInvalidRelationship("section not part of department", map[string]any{
				"section_id":    section.ID,
				"department_id": *newDeptID,
			})
		}
		id := section.ID
		newSectionID = &id
	case newSectionID != nil:
		if newDeptID == nil {
			newSectionID = nil
		} else if !sameID(ticket.DepartmentID, newDeptID) {
			section, err := s.sections.GetByID(ctx, actor.TenantID, *newSectionID)
			if err != nil || section.DepartmentID != *newDeptID {
				newSectionID = nil
			}
		}
	}

	newAssigneeID := ticket.AssigneeID
	assigneeSet := false
	if patch.ClearAssignee {
		newAssigneeID = nil
	} else if patch.AssigneeID != nil {
		assignee, err := s.validateAssignee(ctx, actor, newDeptID, *patch.AssigneeID)
		if err != nil {
			return nil, err
		}
		id := assignee.ID
		newAssigneeID = &id
		assigneeSet = true
	}

	// Display labels are captured before mutation so the ledger compares by
	// what a reader would see, not raw ids.
	var changes []fieldDiff
	oldStatus := ticket.Status
	if patch.Priority != nil {
		changes = appendDiff(changes, domain.HistoryPriorityChanged, string(ticket.Priority), string(*patch.Priority))
		ticket.Priority = *patch.Priority
	}
	if patch.DepartmentID != nil || patch.ClearDepartment {
		oldLabel := s.departmentLabel(ctx, actor.TenantID, ticket.DepartmentID)
		newLabel := s.departmentLabel(ctx, actor.TenantID, newDeptID)
		changes = appendDiff(changes, domain.HistoryDepartmentAssigned, oldLabel, newLabel)
	}
	if !sameID(ticket.SectionID, newSectionID) || patch.SectionID != nil || patch.ClearSection {
		oldLabel := s.sectionLabel(ctx, actor.TenantID, ticket.SectionID)
		newLabel := s.sectionLabel(ctx, actor.TenantID, newSectionID)
		changes = appendDiff(changes, domain.HistorySectionAssigned, oldLabel, newLabel)
	}
	if patch.AssigneeID != nil || patch.ClearAssignee {
		oldLabel := s.assigneeLabel(ctx, actor.TenantID, ticket.AssigneeID)
		newLabel := s.assigneeLabel(ctx, actor.TenantID, newAssigneeID)
		changes = appendDiff(changes, domain.HistoryAgentAssigned, oldLabel, newLabel)
	}

	ticket.DepartmentID = newDeptID
	ticket.SectionID = newSectionID
	ticket.AssigneeID = newAssigneeID
	applyText(ticket, patch)
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if assigneeSet {
		// Assignment always forces IN_PROGRESS, whatever the patch said.
		ticket.Status = domain.StatusOnAssignment
	}
	if ticket.Status != oldStatus {
		changes = appendDiff(changes, domain.HistoryStatusChanged, string(oldStatus), string(ticket.Status))
	}
	touchResolvedAt(ticket, oldStatus)

	if err := s.applyMutation(ctx, actor, ticket, changes); err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(changes))
	for _, change := range changes {
		changed = append(changed, string(change.kind))
	}
	s.publishUpdated(ctx, actor, ticket, changed)
	if ticket.Status != oldStatus {
		s.publishStatusChanged(ctx, actor, ticket, oldStatus, false)
	}
	return ticket, nil
}

// Assign sets the ticket assignee and forces the status to IN_PROGRESS.
// One AGENT_ASSIGNED ledger entry is written when the assignee display name
// changes.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewPermissionDenied("staff role required")
	}
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.validateAssignee(ctx, actor, ticket.DepartmentID, assigneeID)
	if err != nil {
		return nil, err
	}

	oldLabel := s.assigneeLabel(ctx, actor.TenantID, ticket.AssigneeID)
	oldStatus := ticket.Status
	id := assignee.ID
	ticket.AssigneeID = &id
	ticket.Status = domain.StatusOnAssignment
	touchResolvedAt(ticket, oldStatus)

	var changes []fieldDiff
	changes = appendDiff(changes, domain.HistoryAgentAssigned, oldLabel, assignee.Name)

	if err := s.applyMutation(ctx, actor, ticket, changes); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload:  events.TicketAssignedPayload{AssigneeID: assignee.ID},
	})
	if ticket.Status != oldStatus {
		s.publishStatusChanged(ctx, actor, ticket, oldStatus, false)
	}
	return ticket, nil
}

// AddComment appends a comment and applies the comment-driven transition
// rule. The silent status flip, when it fires, commits atomically with the
// comment and writes no ledger entry.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string, isInternal bool, attachments []CommentAttachmentInput) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewPermissionDenied("not the ticket requester")
	}
	if isInternal && !actor.Role.IsStaff() {
		return nil, apperrors.NewPermissionDenied("internal comments are staff only")
	}

	comment := &domain.Comment{
		TenantID:   ticket.TenantID,
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    strings.TrimSpace(content),
		IsInternal: isInternal,
	}

	event := domain.CommentEvent{
		AuthorIsStaff:     actor.Role.IsStaff(),
		AuthorIsRequester: ticket.RequesterID == actor.ID,
		TicketHasAssignee: ticket.AssigneeID != nil,
		IsInternal:        isInternal,
	}
	oldStatus := ticket.Status
	next, fired := domain.NextStatusOnComment(ticket.Status, event)

	err = s.withinTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		for _, att := range attachments {
			record := &domain.CommentAttachment{
				CommentID:  comment.ID,
				StorageKey: att.StorageKey,
				FileName:   att.FileName,
				MimeType:   att.MimeType,
				SizeBytes:  att.SizeBytes,
			}
			if err := s.attachments.Create(ctx, record); err != nil {
				return err
			}
			comment.Attachments = append(comment.Attachments, *record)
		}
		if fired {
			ticket.Status = next
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorID:   actor.ID,
			IsInternal: isInternal,
			Preview:    stringPreview(comment.Content, 120),
		},
	})
	if fired {
		s.publishStatusChanged(ctx, actor, ticket, oldStatus, true)
	}
	return comment, nil
}

// Delete removes a ticket. Requesters and agents may delete only tickets
// they requested; admins are unrestricted. Comments and attachments cascade
// away with the row.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && ticket.RequesterID != actor.ID {
		return apperrors.NewPermissionDenied("only the requester or an admin may delete a ticket")
	}
	if err := s.tickets.Delete(ctx, actor.TenantID, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
	})
	return nil
}

// Get fetches a ticket with its comment thread. Internal comments are
// filtered out for non-staff callers.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkReadAccess(ctx, actor, ticket); err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, actor.TenantID, ticket.ID, actor.Role.IsStaff())
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	for i := range comments {
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		comments[i].Attachments = attachments
	}
	return ticket, comments, nil
}

// List returns tickets visible to the actor: requesters see their own,
// agents see their departments, supervisors and admins see the tenant.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		TenantID:    actor.TenantID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !actor.Role.IsStaff() {
		requesterID := actor.ID
		repoFilter.RequesterID = &requesterID
	} else {
		scope, err := s.scope.Resolve(ctx, actor)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if scope.Empty() {
			return []domain.Ticket{}, nil
		}
		repoFilter.DepartmentIDs = scope.DepartmentIDs
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// History returns the ordered ledger for a ticket.
func (s *TicketService) History(ctx context.Context, actor *domain.User, ticketID string) ([]domain.HistoryEntry, error) {
	ticket, err := s.getTicket(ctx, actor.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// fieldDiff is one ledger-bound change, compared by display value.
type fieldDiff struct {
	kind     domain.HistoryKind
	oldValue string
	newValue string
}

func appendDiff(changes []fieldDiff, kind domain.HistoryKind, oldValue, newValue string) []fieldDiff {
	if oldValue == newValue {
		return changes
	}
	return append(changes, fieldDiff{kind: kind, oldValue: oldValue, newValue: newValue})
}

// applyMutation persists the ticket and its ledger entries as one unit.
func (s *TicketService) applyMutation(ctx context.Context, actor *domain.User, ticket *domain.Ticket, changes []fieldDiff) error {
	err := s.withinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		for _, change := range changes {
			entry := &domain.HistoryEntry{
				TicketID: ticket.ID,
				ActorID:  actor.ID,
				Kind:     change.kind,
				OldValue: change.oldValue,
				NewValue: change.newValue,
			}
			if err := s.history.Create(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTx(ctx, fn)
}

func (s *TicketService) getTicket(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) getDepartment(ctx context.Context, tenantID, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

func (s *TicketService) getSection(ctx context.Context, tenantID, id string) (*domain.Section, error) {
	section, err := s.sections.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("section", map[string]any{"section_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return section, nil
}

func (s *TicketService) validateAssignee(ctx context.Context, actor *domain.User, departmentID *string, assigneeID string) (*domain.User, error) {
	assignee, err := s.users.GetByID(ctx, actor.TenantID, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", map[string]any{"assignee_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"assignee_id": assigneeID})
	}
	if !assignee.Role.Assignable() {
		return nil, apperrors.NewInvalidRelationship("assignee must hold the agent or admin role", map[string]any{"assignee_id": assigneeID})
	}
	if actor.Role != domain.RoleAdmin && departmentID != nil {
		member, err := s.departments.IsMember(ctx, actor.TenantID, *departmentID, assignee.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !member {
			return nil, apperrors.NewInvalidRelationship("assignee outside ticket department", map[string]any{
				"assignee_id":   assigneeID,
				"department_id": *departmentID,
			})
		}
	}
	return assignee, nil
}

func (s *TicketService) checkReadAccess(ctx context.Context, actor *domain.User, ticket *domain.Ticket) error {
	if ticket.RequesterID == actor.ID {
		return nil
	}
	if !actor.Role.IsStaff() {
		return apperrors.NewPermissionDenied("not the ticket requester")
	}
	if actor.Role != domain.RoleAgent {
		return nil
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID {
		return nil
	}
	if ticket.DepartmentID == nil {
		return apperrors.NewPermissionDenied("ticket outside your departments")
	}
	member, err := s.departments.IsMember(ctx, actor.TenantID, *ticket.DepartmentID, actor.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !member {
		return apperrors.NewPermissionDenied("ticket outside your departments")
	}
	return nil
}

func (s *TicketService) assigneeLabel(ctx context.Context, tenantID string, id *string) string {
	if id == nil {
		return domain.UnassignedLabel
	}
	user, err := s.users.GetByID(ctx, tenantID, *id)
	if err != nil {
		return domain.UnassignedLabel
	}
	return user.Name
}

func (s *TicketService) departmentLabel(ctx context.Context, tenantID string, id *string) string {
	if id == nil {
		return domain.NoneLabel
	}
	dept, err := s.departments.GetByID(ctx, tenantID, *id)
	if err != nil {
		return domain.NoneLabel
	}
	return dept.Name
}

func (s *TicketService) sectionLabel(ctx context.Context, tenantID string, id *string) string {
	if id == nil {
		return domain.NoneLabel
	}
	section, err := s.sections.GetByID(ctx, tenantID, *id)
	if err != nil {
		return domain.NoneLabel
	}
	return section.Name
}

func applyText(ticket *domain.Ticket, patch TicketUpdateInput) {
	if patch.Subject != nil && strings.TrimSpace(*patch.Subject) != "" {
		ticket.Subject = strings.TrimSpace(*patch.Subject)
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		ticket.Description = strings.TrimSpace(*patch.Description)
	}
}

// touchResolvedAt keeps the resolution timestamp in sync with the status:
// set on the first entry into a resolved state, cleared on reopen.
func touchResolvedAt(ticket *domain.Ticket, oldStatus domain.TicketStatus) {
	if ticket.Status == oldStatus {
		return
	}
	if domain.IsResolvedState(ticket.Status) {
		if ticket.ResolvedAt == nil {
			now := time.Now().UTC()
			ticket.ResolvedAt = &now
		}
		return
	}
	ticket.ResolvedAt = nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *TicketService) publishUpdated(ctx context.Context, actor *domain.User, ticket *domain.Ticket, changed []string) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload:  events.TicketUpdatedPayload{ChangedFields: changed},
	})
}

func (s *TicketService) publishStatusChanged(ctx context.Context, actor *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus, silent bool) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    userActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Silent:    silent,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(user *domain.User) events.Actor {
	id := user.ID
	role := user.Role
	return events.Actor{UserID: &id, Role: &role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
