package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/deskforge/helpdesk/internal/domain"
	"github.com/deskforge/helpdesk/internal/observability"
	"github.com/deskforge/helpdesk/internal/repository"
	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// AnalyticsService aggregates resolved tickets into time-bucketed reports.
// Reports are cached in Redis keyed by tenant, range, mode and scope.
type AnalyticsService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	scope       *ScopeResolver
	cache       *redis.Client
	cacheTTL    time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	Cache          *redis.Client
	CacheTTL       time.Duration
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewAnalyticsService constructs the service. Cache and metrics are
// optional; a nil cache disables report caching.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		scope:       NewScopeResolver(deps.DepartmentRepo),
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// AnalyticsQuery describes a report request. From and To are calendar
// dates; both endpoints are included in the report window.
type AnalyticsQuery struct {
	From time.Time
	To   time.Time
	Mode ViewMode
}

// PeriodCount is one zero-filled bucket of the general series.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// GroupMetric is one row of a grouped breakdown.
type GroupMetric struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	AverageHours float64 `json:"average_hours"`
}

// AnalyticsReport is the full report payload.
type AnalyticsReport struct {
	ViewMode               ViewMode      `json:"view_mode"`
	From                   string        `json:"from"`
	To                     string        `json:"to"`
	General                []PeriodCount `json:"general"`
	ByPerson               []GroupMetric `json:"by_person"`
	ByDepartment           []GroupMetric `json:"by_department"`
	TotalResolved          int           `json:"total_resolved"`
	AverageResolutionHours float64       `json:"average_resolution_hours"`
}

// Report builds the resolution report visible to the actor. Agents see only
// tickets in their departments; an agent with no memberships gets an empty
// report rather than an error.
func (s *AnalyticsService) Report(ctx context.Context, actor *domain.User, query AnalyticsQuery) (*AnalyticsReport, error) {
	if !actor.Role.IsStaff() {
		return nil, apperrors.NewPermissionDenied("staff role required")
	}
	if query.To.Before(query.From) {
		return nil, apperrors.NewValidationError("range end before range start", nil)
	}

	scope, err := s.scope.Resolve(ctx, actor)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if scope.Empty() {
		return s.emptyReport(query), nil
	}

	key := s.cacheKey(actor.TenantID, query, scope)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	start, end := dayBounds(query.From, query.To)
	tickets, err := s.tickets.ListResolvedInRange(ctx, actor.TenantID, start, end, scope.DepartmentIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := s.buildReport(ctx, actor.TenantID, query, tickets)
	s.cacheSet(ctx, key, report)
	return report, nil
}

func (s *AnalyticsService) buildReport(ctx context.Context, tenantID string, query AnalyticsQuery, tickets []domain.Ticket) *AnalyticsReport {
	report := s.emptyReport(query)

	periodCounts := make(map[string]int, len(report.General))
	byPerson := make(map[string]*groupAccum)
	byDept := make(map[string]*groupAccum)
	var totalHours float64

	for i := range tickets {
		ticket := &tickets[i]
		if ticket.ResolvedAt == nil {
			continue
		}
		hours := ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		totalHours += hours
		report.TotalResolved++
		periodCounts[bucketKey(query.Mode, *ticket.ResolvedAt)]++

		personKey := domain.UnassignedLabel
		if ticket.AssigneeID != nil {
			personKey = *ticket.AssigneeID
		}
		accumulate(byPerson, personKey, hours)

		deptKey := domain.NoneLabel
		if ticket.DepartmentID != nil {
			deptKey = *ticket.DepartmentID
		}
		accumulate(byDept, deptKey, hours)
	}

	for i := range report.General {
		report.General[i].Count = periodCounts[report.General[i].Period]
	}
	if report.TotalResolved > 0 {
		report.AverageResolutionHours = roundHours(totalHours / float64(report.TotalResolved))
	}
	report.ByPerson = s.groupRows(byPerson, s.personLabels(ctx, tenantID, byPerson))
	report.ByDepartment = s.groupRows(byDept, s.departmentLabels(ctx, tenantID, byDept))
	return report
}

func (s *AnalyticsService) emptyReport(query AnalyticsQuery) *AnalyticsReport {
	keys := bucketSequence(query.Mode, query.From, query.To)
	general := make([]PeriodCount, len(keys))
	for i, key := range keys {
		general[i] = PeriodCount{Period: key}
	}
	return &AnalyticsReport{
		ViewMode:     query.Mode,
		From:         query.From.UTC().Format("2006-01-02"),
		To:           query.To.UTC().Format("2006-01-02"),
		General:      general,
		ByPerson:     []GroupMetric{},
		ByDepartment: []GroupMetric{},
	}
}

type groupAccum struct {
	count      int
	totalHours float64
}

func accumulate(groups map[string]*groupAccum, key string, hours float64) {
	accum := groups[key]
	if accum == nil {
		accum = &groupAccum{}
		groups[key] = accum
	}
	accum.count++
	accum.totalHours += hours
}

// groupRows renders accumulated groups, highest count first.
func (s *AnalyticsService) groupRows(groups map[string]*groupAccum, labels map[string]string) []GroupMetric {
	rows := make([]GroupMetric, 0, len(groups))
	for key, accum := range groups {
		label := labels[key]
		if label == "" {
			label = key
		}
		average := 0.0
		if accum.count > 0 {
			average = roundHours(accum.totalHours / float64(accum.count))
		}
		rows = append(rows, GroupMetric{
			Key:          key,
			Label:        label,
			Count:        accum.count,
			AverageHours: average,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

func (s *AnalyticsService) personLabels(ctx context.Context, tenantID string, groups map[string]*groupAccum) map[string]string {
	ids := make([]string, 0, len(groups))
	for key := range groups {
		if key != domain.UnassignedLabel {
			ids = append(ids, key)
		}
	}
	labels := map[string]string{domain.UnassignedLabel: domain.UnassignedLabel}
	if len(ids) == 0 {
		return labels
	}
	users, err := s.users.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		s.logger.Warn("resolving assignee names failed", zap.Error(err))
		return labels
	}
	for i := range users {
		labels[users[i].ID] = users[i].Name
	}
	return labels
}

func (s *AnalyticsService) departmentLabels(ctx context.Context, tenantID string, groups map[string]*groupAccum) map[string]string {
	ids := make([]string, 0, len(groups))
	for key := range groups {
		if key != domain.NoneLabel {
			ids = append(ids, key)
		}
	}
	labels := map[string]string{domain.NoneLabel: domain.NoneLabel}
	if len(ids) == 0 {
		return labels
	}
	depts, err := s.departments.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		s.logger.Warn("resolving department names failed", zap.Error(err))
		return labels
	}
	for i := range depts {
		labels[depts[i].ID] = depts[i].Name
	}
	return labels
}

func (s *AnalyticsService) cacheKey(tenantID string, query AnalyticsQuery, scope DepartmentScope) string {
	scopePart := "*"
	if scope.Restricted {
		ids := append([]string(nil), scope.DepartmentIDs...)
		sort.Strings(ids)
		scopePart = strings.Join(ids, ",")
	}
	return fmt.Sprintf("analytics:%s:%s:%s:%s:%s",
		tenantID,
		query.From.UTC().Format("2006-01-02"),
		query.To.UTC().Format("2006-01-02"),
		query.Mode,
		scopePart,
	)
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string) *AnalyticsReport {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		s.metrics.RecordAnalyticsCache(false)
		return nil
	}
	var report AnalyticsReport
	if err := json.Unmarshal(raw, &report); err != nil {
		s.metrics.RecordAnalyticsCache(false)
		return nil
	}
	s.metrics.RecordAnalyticsCache(true)
	return &report
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, report *AnalyticsReport) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("caching analytics report failed", zap.Error(err))
	}
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
