package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskforge/helpdesk/internal/domain"
)

type analyticsFixture struct {
	service     *AnalyticsService
	tickets     *stubTicketRepo
	users       *stubUserRepo
	departments *stubDepartmentRepo

	supervisor *domain.User
	agent      *domain.User
	deptA      string
	deptB      string
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	fix := &analyticsFixture{
		tickets:     newStubTicketRepo(),
		users:       newStubUserRepo(),
		departments: newStubDepartmentRepo(),
	}
	fix.service = NewAnalyticsService(AnalyticsDependencies{
		TicketRepo:     fix.tickets,
		UserRepo:       fix.users,
		DepartmentRepo: fix.departments,
	})

	deptA := &domain.Department{TenantID: "tenant-1", Name: "Support", IsActive: true}
	require.NoError(t, fix.departments.Create(context.Background(), deptA))
	deptB := &domain.Department{TenantID: "tenant-1", Name: "Billing", IsActive: true}
	require.NoError(t, fix.departments.Create(context.Background(), deptB))
	fix.deptA = deptA.ID
	fix.deptB = deptB.ID

	fix.supervisor = fix.users.add(domain.User{ID: "user-super", TenantID: "tenant-1", Name: "Sam Supervisor", Role: domain.RoleSupervisor, IsActive: true})
	fix.agent = fix.users.add(domain.User{ID: "user-agent", TenantID: "tenant-1", Name: "Amir Agent", Role: domain.RoleAgent, IsActive: true})
	require.NoError(t, fix.departments.AddMember(context.Background(), "tenant-1", deptA.ID, fix.agent.ID))
	return fix
}

// addResolved seeds a resolved ticket directly through the repository.
func (f *analyticsFixture) addResolved(t *testing.T, departmentID string, assigneeID *string, created, resolved time.Time) {
	t.Helper()
	deptID := departmentID
	ticket := &domain.Ticket{
		TenantID:     "tenant-1",
		RequesterID:  "user-someone",
		AssigneeID:   assigneeID,
		DepartmentID: &deptID,
		Subject:      "done",
		Description:  "done",
		Status:       domain.TicketStatusResolved,
		Priority:     domain.TicketPriorityMedium,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	ticket.CreatedAt = created
	ticket.ResolvedAt = &resolved
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	// Update stamps UpdatedAt but must not disturb the seeded CreatedAt
	// used for the resolution duration.
	stored, err := f.tickets.GetByID(context.Background(), "tenant-1", ticket.ID)
	require.NoError(t, err)
	require.Equal(t, created, stored.CreatedAt)
}

func TestReportZeroFillsBuckets(t *testing.T) {
	fix := newAnalyticsFixture(t)
	agentID := fix.agent.ID
	fix.addResolved(t, fix.deptA, &agentID,
		time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 10, 20, 0, 0, 0, time.UTC))
	fix.addResolved(t, fix.deptA, &agentID,
		time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC))

	report, err := fix.service.Report(context.Background(), fix.supervisor, AnalyticsQuery{
		From: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
		Mode: ViewModeMonthly,
	})
	require.NoError(t, err)

	require.Len(t, report.General, 3)
	assert.Equal(t, PeriodCount{Period: "2026-01", Count: 1}, report.General[0])
	assert.Equal(t, PeriodCount{Period: "2026-02", Count: 0}, report.General[1])
	assert.Equal(t, PeriodCount{Period: "2026-03", Count: 1}, report.General[2])
	assert.Equal(t, 2, report.TotalResolved)
	// 12h and 24h resolutions average to 18h.
	assert.Equal(t, 18.0, report.AverageResolutionHours)
}

func TestReportGroupsByPersonAndDepartment(t *testing.T) {
	fix := newAnalyticsFixture(t)
	agentID := fix.agent.ID
	created := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	fix.addResolved(t, fix.deptA, &agentID, created, created.Add(10*time.Hour))
	fix.addResolved(t, fix.deptA, &agentID, created, created.Add(20*time.Hour))
	fix.addResolved(t, fix.deptB, nil, created, created.Add(6*time.Hour))

	report, err := fix.service.Report(context.Background(), fix.supervisor, AnalyticsQuery{
		From: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
		Mode: ViewModeDaily,
	})
	require.NoError(t, err)

	require.Len(t, report.ByPerson, 2)
	assert.Equal(t, fix.agent.ID, report.ByPerson[0].Key)
	assert.Equal(t, "Amir Agent", report.ByPerson[0].Label)
	assert.Equal(t, 2, report.ByPerson[0].Count)
	assert.Equal(t, 15.0, report.ByPerson[0].AverageHours)
	assert.Equal(t, domain.UnassignedLabel, report.ByPerson[1].Key)
	assert.Equal(t, 1, report.ByPerson[1].Count)

	require.Len(t, report.ByDepartment, 2)
	assert.Equal(t, "Support", report.ByDepartment[0].Label)
	assert.Equal(t, 2, report.ByDepartment[0].Count)
	assert.Equal(t, "Billing", report.ByDepartment[1].Label)
}

func TestReportRestrictsAgentsToTheirDepartments(t *testing.T) {
	fix := newAnalyticsFixture(t)
	created := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	fix.addResolved(t, fix.deptA, nil, created, created.Add(4*time.Hour))
	fix.addResolved(t, fix.deptB, nil, created, created.Add(4*time.Hour))

	report, err := fix.service.Report(context.Background(), fix.agent, AnalyticsQuery{
		From: created,
		To:   created.AddDate(0, 0, 30),
		Mode: ViewModeDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalResolved)
	require.Len(t, report.ByDepartment, 1)
	assert.Equal(t, "Support", report.ByDepartment[0].Label)
}

func TestReportEmptyForAgentWithoutMemberships(t *testing.T) {
	fix := newAnalyticsFixture(t)
	created := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	fix.addResolved(t, fix.deptA, nil, created, created.Add(4*time.Hour))
	loner := fix.users.add(domain.User{ID: "user-loner", TenantID: "tenant-1", Name: "Lia Loner", Role: domain.RoleAgent, IsActive: true})

	report, err := fix.service.Report(context.Background(), loner, AnalyticsQuery{
		From: created,
		To:   created.AddDate(0, 0, 2),
		Mode: ViewModeDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalResolved)
	assert.Empty(t, report.ByPerson)
	assert.Empty(t, report.ByDepartment)
	assert.Equal(t, 0.0, report.AverageResolutionHours)
	// The general series is still the zero-filled calendar.
	require.Len(t, report.General, 3)
	for _, bucket := range report.General {
		assert.Zero(t, bucket.Count)
	}
}

func TestReportRejectsNonStaff(t *testing.T) {
	fix := newAnalyticsFixture(t)
	requester := fix.users.add(domain.User{ID: "user-req", TenantID: "tenant-1", Name: "Rita", Role: domain.RoleUser, IsActive: true})

	_, err := fix.service.Report(context.Background(), requester, AnalyticsQuery{
		From: date(2026, time.May, 1),
		To:   date(2026, time.May, 2),
		Mode: ViewModeDaily,
	})
	assert.Error(t, err)
}

func TestReportRejectsReversedRange(t *testing.T) {
	fix := newAnalyticsFixture(t)
	_, err := fix.service.Report(context.Background(), fix.supervisor, AnalyticsQuery{
		From: date(2026, time.May, 2),
		To:   date(2026, time.May, 1),
		Mode: ViewModeDaily,
	})
	assert.Error(t, err)
}

func TestReportBoundaryDaysIncluded(t *testing.T) {
	fix := newAnalyticsFixture(t)
	firstInstant := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	lastInstant := time.Date(2026, time.May, 31, 23, 59, 59, 0, time.UTC)
	fix.addResolved(t, fix.deptA, nil, firstInstant.Add(-time.Hour), firstInstant)
	fix.addResolved(t, fix.deptA, nil, lastInstant.Add(-time.Hour), lastInstant)

	report, err := fix.service.Report(context.Background(), fix.supervisor, AnalyticsQuery{
		From: date(2026, time.May, 1),
		To:   date(2026, time.May, 31),
		Mode: ViewModeMonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalResolved)
}
