package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

const (
	QueryEmployees = "employees"
	QueryEmployers = "employers"
	QueryOverview  = "overview"

	EmailActionSummary      = "summary"
	EmailActionDraftReplies = "draft_replies"

	DefaultAnalyticsPeriod = "monthly"

	upcomingPaymentsLimit = 10
	pendingEmailsLimit    = 10
	emailSummaryWindow    = 7 * 24 * time.Hour
)

// LocalDataRepositoryInterface reads the local reporting tables.
type LocalDataRepositoryInterface interface {
	UpcomingPayments(ctx context.Context, limit int) ([]domain.PaymentSchedule, error)
	OverdueSummary(ctx context.Context) (domain.OverdueSummary, error)
	QueryEmployees(ctx context.Context, f domain.EmployeeFilter) (*domain.EmployeeQueryResult, error)
	QueryEmployers(ctx context.Context, f domain.EmployerFilter) (*domain.EmployerQueryResult, error)
	OverviewStats(ctx context.Context) (domain.OverviewStats, error)
	PendingTasks(ctx context.Context) (domain.PendingTasks, error)
	EmailSummary(ctx context.Context, since time.Time) ([]domain.EmailCategorySummary, error)
	PendingPriorities(ctx context.Context) ([]domain.PriorityCount, error)
	PendingEmails(ctx context.Context, limit int) ([]domain.PendingEmail, error)
	AnalyticsMetrics(ctx context.Context, periodType, periodValue string) ([]domain.AnalyticsMetric, error)
	AnalyticsTrends(ctx context.Context, periodType string) ([]domain.AnalyticsTrend, error)
}

type PaymentRemindersResult struct {
	UpcomingPayments []domain.PaymentSchedule `json:"upcoming_payments"`
	OverdueSummary   domain.OverdueSummary    `json:"overdue_summary"`
	TotalPending     int                      `json:"total_pending"`
}

// DatabaseQuery selects one of the local reporting views. Filters apply to the
// matching query type only.
type DatabaseQuery struct {
	QueryType string         `json:"query_type"`
	Filters   DatabaseFilter `json:"filters"`
}

type DatabaseFilter struct {
	Location           string `json:"location,omitempty"`
	Department         string `json:"department,omitempty"`
	VerificationStatus string `json:"verification_status,omitempty"`
	Industry           string `json:"industry,omitempty"`
}

type OverviewResult struct {
	Employees OverviewEmployees `json:"employees"`
	Employers OverviewEmployers `json:"employers"`
}

type OverviewEmployees struct {
	Total     int `json:"total_employees"`
	Active    int `json:"active_employees"`
	Locations int `json:"employee_locations"`
}

type OverviewEmployers struct {
	Total       int `json:"total_employers"`
	Verified    int `json:"verified_employers"`
	JobPostings int `json:"total_job_postings"`
}

type EmailSummaryResult struct {
	Summary           []domain.EmailCategorySummary `json:"summary"`
	PriorityBreakdown []domain.PriorityCount        `json:"priority_breakdown"`
	Action            string                        `json:"action"`
}

type DraftRepliesResult struct {
	PendingEmails []domain.PendingEmail `json:"pending_emails"`
	Action        string                `json:"action"`
}

type AnalyticsResult struct {
	CurrentMetrics []domain.AnalyticsMetric `json:"current_metrics"`
	Trends         []domain.AnalyticsTrend  `json:"trends"`
	Period         string                   `json:"period"`
	LastUpdated    time.Time                `json:"last_updated"`
}

// AdminService serves the admin REST views over the local reporting tables.
type AdminService struct {
	repo   LocalDataRepositoryInterface
	logger *slog.Logger
	now    func() time.Time
}

func NewAdminService(repo LocalDataRepositoryInterface, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		repo:   repo,
		logger: logger.With("component", "admin"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// PaymentReminders lists the open payroll runs, earliest due first, together
// with the overdue totals.
func (s *AdminService) PaymentReminders(ctx context.Context) (*PaymentRemindersResult, error) {
	upcoming, err := s.repo.UpcomingPayments(ctx, upcomingPaymentsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming payments: %w", err)
	}
	overdue, err := s.repo.OverdueSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue payments: %w", err)
	}
	if upcoming == nil {
		upcoming = []domain.PaymentSchedule{}
	}
	return &PaymentRemindersResult{
		UpcomingPayments: upcoming,
		OverdueSummary:   overdue,
		TotalPending:     len(upcoming),
	}, nil
}

// QueryDatabase runs an employees, employers or overview query. An empty
// query type means overview.
func (s *AdminService) QueryDatabase(ctx context.Context, q DatabaseQuery) (any, error) {
	switch strings.ToLower(strings.TrimSpace(q.QueryType)) {
	case QueryEmployees:
		res, err := s.repo.QueryEmployees(ctx, domain.EmployeeFilter{
			Location:   q.Filters.Location,
			Department: q.Filters.Department,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query employees: %w", err)
		}
		return res, nil
	case QueryEmployers:
		res, err := s.repo.QueryEmployers(ctx, domain.EmployerFilter{
			VerificationStatus: q.Filters.VerificationStatus,
			Industry:           q.Filters.Industry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query employers: %w", err)
		}
		return res, nil
	case QueryOverview, "":
		stats, err := s.repo.OverviewStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load overview: %w", err)
		}
		return &OverviewResult{
			Employees: OverviewEmployees{
				Total:     stats.TotalEmployees,
				Active:    stats.ActiveEmployees,
				Locations: stats.EmployeeLocations,
			},
			Employers: OverviewEmployers{
				Total:       stats.TotalEmployers,
				Verified:    stats.VerifiedEmployers,
				JobPostings: stats.TotalJobPostings,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%q: %w", q.QueryType, domain.ErrInvalidQueryType)
	}
}

// ProcessEmail summarizes the last week of processed mail or lists the
// pending messages that need a drafted reply.
func (s *AdminService) ProcessEmail(ctx context.Context, action string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case EmailActionSummary, "":
		summary, err := s.repo.EmailSummary(ctx, s.now().Add(-emailSummaryWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to summarize email: %w", err)
		}
		priorities, err := s.repo.PendingPriorities(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load email priorities: %w", err)
		}
		if summary == nil {
			summary = []domain.EmailCategorySummary{}
		}
		if priorities == nil {
			priorities = []domain.PriorityCount{}
		}
		return &EmailSummaryResult{Summary: summary, PriorityBreakdown: priorities, Action: "summary_generated"}, nil
	case EmailActionDraftReplies:
		pending, err := s.repo.PendingEmails(ctx, pendingEmailsLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load pending email: %w", err)
		}
		if pending == nil {
			pending = []domain.PendingEmail{}
		}
		return &DraftRepliesResult{PendingEmails: pending, Action: "drafts_ready"}, nil
	default:
		return nil, fmt.Errorf("%q: %w", action, domain.ErrInvalidAction)
	}
}

// Analytics returns the metrics recorded for the current month under period,
// plus the most recent values for trend lines.
func (s *AdminService) Analytics(ctx context.Context, period string) (*AnalyticsResult, error) {
	if period == "" {
		period = DefaultAnalyticsPeriod
	}
	now := s.now()

	metrics, err := s.repo.AnalyticsMetrics(ctx, period, now.Format("2006-01"))
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	trends, err := s.repo.AnalyticsTrends(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load trends: %w", err)
	}
	if metrics == nil {
		metrics = []domain.AnalyticsMetric{}
	}
	if trends == nil {
		trends = []domain.AnalyticsTrend{}
	}
	return &AnalyticsResult{CurrentMetrics: metrics, Trends: trends, Period: period, LastUpdated: now}, nil
}
