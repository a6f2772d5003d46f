package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/events"
	"github.com/deskforge/helpdesk/internal/repository"
)

// In-memory repository stubs shared by the service tests.

type stubTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *stubTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *stubTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.TenantID != ticket.TenantID {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *stubTicketRepo) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok || stored.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *stubTicketRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok || stored.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *stubTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.TenantID != filter.TenantID {
			continue
		}
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if len(filter.DepartmentIDs) > 0 {
			if ticket.DepartmentID == nil || !containsString(filter.DepartmentIDs, *ticket.DepartmentID) {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(ticket.Subject), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *stubTicketRepo) ListResolvedInRange(_ context.Context, tenantID string, from, to time.Time, departmentIDs []string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.TenantID != tenantID || !domain.IsResolvedState(ticket.Status) || ticket.ResolvedAt == nil {
			continue
		}
		if ticket.ResolvedAt.Before(from) || ticket.ResolvedAt.After(to) {
			continue
		}
		if len(departmentIDs) > 0 {
			if ticket.DepartmentID == nil || !containsString(departmentIDs, *ticket.DepartmentID) {
				continue
			}
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *stubTicketRepo) CloseIdleResolved(_ context.Context, tenantID *string, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var closed int64
	for _, ticket := range r.tickets {
		if tenantID != nil && ticket.TenantID != *tenantID {
			continue
		}
		if ticket.Status != domain.TicketStatusResolved || ticket.UpdatedAt.After(cutoff) {
			continue
		}
		ticket.Status = domain.TicketStatusClosed
		ticket.UpdatedAt = time.Now().UTC()
		closed++
	}
	return closed, nil
}

type stubCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.Comment
}

func (r *stubCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	comment.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *stubCommentRepo) ListByTicket(_ context.Context, tenantID, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TenantID != tenantID || comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		out = append(out, comment)
	}
	return out, nil
}

type stubAttachmentRepo struct {
	mu          sync.Mutex
	seq         int
	attachments []domain.CommentAttachment
}

func (r *stubAttachmentRepo) Create(_ context.Context, attachment *domain.CommentAttachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	attachment.ID = fmt.Sprintf("attachment-%d", r.seq)
	attachment.CreatedAt = time.Now().UTC()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *stubAttachmentRepo) ListByComment(_ context.Context, commentID string) ([]domain.CommentAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CommentAttachment
	for _, attachment := range r.attachments {
		if attachment.CommentID == commentID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

type stubHistoryRepo struct {
	mu      sync.Mutex
	seq     int
	entries []domain.HistoryEntry
}

func (r *stubHistoryRepo) Create(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("history-%d", r.seq)
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HistoryEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *stubHistoryRepo) byTicket(ticketID string) []domain.HistoryEntry {
	entries, _ := r.ListByTicket(context.Background(), ticketID)
	return entries
}

type stubDepartmentRepo struct {
	mu          sync.Mutex
	seq         int
	departments map[string]*domain.Department
	members     map[string][]string // departmentID -> userIDs
}

func newStubDepartmentRepo() *stubDepartmentRepo {
	return &stubDepartmentRepo{
		departments: map[string]*domain.Department{},
		members:     map[string][]string{},
	}
}

func (r *stubDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	dept.ID = fmt.Sprintf("dept-%d", r.seq)
	dept.CreatedAt = time.Now().UTC()
	copied := *dept
	r.departments[dept.ID] = &copied
	return nil
}

func (r *stubDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *dept
	r.departments[dept.ID] = &copied
	return nil
}

func (r *stubDepartmentRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dept, ok := r.departments[id]
	if !ok || dept.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	return &copied, nil
}

func (r *stubDepartmentRepo) ListActive(_ context.Context, tenantID string) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Department
	for _, dept := range r.departments {
		if dept.TenantID == tenantID && dept.IsActive {
			out = append(out, *dept)
		}
	}
	return out, nil
}

func (r *stubDepartmentRepo) ListByIDs(_ context.Context, tenantID string, ids []string) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Department
	for _, id := range ids {
		if dept, ok := r.departments[id]; ok && dept.TenantID == tenantID {
			out = append(out, *dept)
		}
	}
	return out, nil
}

func (r *stubDepartmentRepo) AddMember(_ context.Context, _, departmentID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[departmentID] = append(r.members[departmentID], userID)
	return nil
}

func (r *stubDepartmentRepo) RemoveMember(_ context.Context, _, departmentID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.members[departmentID][:0]
	for _, member := range r.members[departmentID] {
		if member != userID {
			kept = append(kept, member)
		}
	}
	r.members[departmentID] = kept
	return nil
}

func (r *stubDepartmentRepo) IsMember(_ context.Context, _, departmentID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return containsString(r.members[departmentID], userID), nil
}

func (r *stubDepartmentRepo) ListMemberDepartmentIDs(_ context.Context, _, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for deptID, userIDs := range r.members {
		if containsString(userIDs, userID) {
			out = append(out, deptID)
		}
	}
	return out, nil
}

type stubSectionRepo struct {
	mu       sync.Mutex
	seq      int
	sections map[string]*domain.Section
}

func newStubSectionRepo() *stubSectionRepo {
	return &stubSectionRepo{sections: map[string]*domain.Section{}}
}

func (r *stubSectionRepo) Create(_ context.Context, section *domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	section.ID = fmt.Sprintf("section-%d", r.seq)
	section.CreatedAt = time.Now().UTC()
	copied := *section
	r.sections[section.ID] = &copied
	return nil
}

func (r *stubSectionRepo) Update(_ context.Context, section *domain.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[section.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *section
	r.sections[section.ID] = &copied
	return nil
}

func (r *stubSectionRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	section, ok := r.sections[id]
	if !ok || section.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *section
	return &copied, nil
}

func (r *stubSectionRepo) ListByDepartment(_ context.Context, tenantID, departmentID string) ([]domain.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Section
	for _, section := range r.sections {
		if section.TenantID == tenantID && section.DepartmentID == departmentID {
			out = append(out, *section)
		}
	}
	return out, nil
}

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, tenantID, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, tenantID, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.TenantID == tenantID && user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) ListByIDs(_ context.Context, tenantID string, ids []string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok && user.TenantID == tenantID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *stubUserRepo) add(user domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := user
	r.users[user.ID] = &copied
	return &copied
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

func containsStatus(haystack []domain.TicketStatus, needle domain.TicketStatus) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}
