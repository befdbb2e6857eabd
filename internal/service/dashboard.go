package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/report"
	"golang.org/x/sync/errgroup"
)

// Dashboard resource names, used as keys of DashboardSnapshot.Errors.
const (
	ResourceJobs               = "jobs"
	ResourceJobSeekers         = "job_seekers"
	ResourceIncompleteProfiles = "incomplete_profiles"
	ResourcePayroll            = "payroll"
	ResourceOverview           = "overview"
	ResourcePendingTasks       = "pending_tasks"
	ResourceActivity           = "activity"
)

// DashboardHRSource is the slice of the HR client the dashboard reads.
type DashboardHRSource interface {
	GetAllJobs(ctx context.Context, opts hrapi.FetchOptions) ([]domain.Job, error)
	GetAllJobSeekers(ctx context.Context, opts hrapi.FetchOptions) ([]domain.JobSeeker, error)
	GetIncompleteProfiles(ctx context.Context, opts hrapi.FetchOptions) ([]domain.IncompleteProfile, error)
	GetPayrollData(ctx context.Context, opts hrapi.FetchOptions) ([]domain.PayrollRecord, error)
}

type DashboardLocalStore interface {
	OverviewStats(ctx context.Context) (domain.OverviewStats, error)
	PendingTasks(ctx context.Context) (domain.PendingTasks, error)
}

type SessionCounter interface {
	CountSessionsSince(ctx context.Context, botType string, since time.Time) (int, error)
}

type DashboardHR struct {
	TotalJobs          int `json:"total_jobs"`
	TotalJobSeekers    int `json:"total_job_seekers"`
	ActiveJobSeekers   int `json:"active_job_seekers"`
	IncompleteProfiles int `json:"incomplete_profiles"`
	AverageCompletion  int `json:"average_completion"`
	PayrollRecords     int `json:"payroll_records"`
	PendingPayroll     int `json:"pending_payroll"`
	UrgentPayroll      int `json:"urgent_payroll"`
	OverduePayroll     int `json:"overdue_payroll"`
}

type DashboardActivity struct {
	AdminSessionsToday int `json:"admin_sessions_today"`
}

// DashboardSnapshot is a best-effort view of the platform. A resource that
// could not be loaded is left zero and reported in Errors.
type DashboardSnapshot struct {
	HR           DashboardHR          `json:"hr"`
	Overview     domain.OverviewStats `json:"overview"`
	PendingTasks domain.PendingTasks  `json:"pending_tasks"`
	Activity     DashboardActivity    `json:"activity"`
	Errors       map[string]string    `json:"errors,omitempty"`
	LastUpdated  time.Time            `json:"last_updated"`
}

// DashboardService assembles the admin dashboard from the HR platform and the
// local reporting tables.
type DashboardService struct {
	hr       DashboardHRSource
	local    DashboardLocalStore
	sessions SessionCounter
	logger   *slog.Logger
	now      func() time.Time
}

func NewDashboardService(hr DashboardHRSource, local DashboardLocalStore, sessions SessionCounter, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		hr:       hr,
		local:    local,
		sessions: sessions,
		logger:   logger.With("component", "dashboard"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot loads every dashboard resource concurrently. It never fails; each
// failed resource is recorded under its name in Errors.
func (s *DashboardService) Snapshot(ctx context.Context) *DashboardSnapshot {
	now := s.now()
	snap := &DashboardSnapshot{LastUpdated: now}

	var (
		mu         sync.Mutex
		jobs       []domain.Job
		seekers    []domain.JobSeeker
		incomplete []domain.IncompleteProfile
		payroll    []domain.PayrollRecord
	)
	fail := func(resource string, err error) {
		s.logger.Warn("dashboard resource unavailable", "resource", resource, "error", err)
		mu.Lock()
		defer mu.Unlock()
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[resource] = err.Error()
	}

	opts := hrapi.FetchOptions{UseCache: true}
	var g errgroup.Group

	if s.hr != nil {
		g.Go(func() error {
			var err error
			if jobs, err = s.hr.GetAllJobs(ctx, opts); err != nil {
				fail(ResourceJobs, err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if seekers, err = s.hr.GetAllJobSeekers(ctx, opts); err != nil {
				fail(ResourceJobSeekers, err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if incomplete, err = s.hr.GetIncompleteProfiles(ctx, opts); err != nil {
				fail(ResourceIncompleteProfiles, err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if payroll, err = s.hr.GetPayrollData(ctx, opts); err != nil {
				fail(ResourcePayroll, err)
			}
			return nil
		})
	}

	if s.local != nil {
		g.Go(func() error {
			stats, err := s.local.OverviewStats(ctx)
			if err != nil {
				fail(ResourceOverview, err)
				return nil
			}
			snap.Overview = stats
			return nil
		})
		g.Go(func() error {
			tasks, err := s.local.PendingTasks(ctx)
			if err != nil {
				fail(ResourcePendingTasks, err)
				return nil
			}
			snap.PendingTasks = tasks
			return nil
		})
	}

	if s.sessions != nil {
		g.Go(func() error {
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			n, err := s.sessions.CountSessionsSince(ctx, domain.BotTypeAdmin, midnight)
			if err != nil {
				fail(ResourceActivity, err)
				return nil
			}
			snap.Activity.AdminSessionsToday = n
			return nil
		})
	}

	_ = g.Wait()

	snap.HR = summarizeHR(jobs, seekers, incomplete, payroll, now)
	return snap
}

func summarizeHR(jobs []domain.Job, seekers []domain.JobSeeker, incomplete []domain.IncompleteProfile, payroll []domain.PayrollRecord, now time.Time) DashboardHR {
	seekerStats := report.AnalyzeJobSeekers(seekers)
	payrollStats := report.AnalyzePayroll(payroll, now)

	return DashboardHR{
		TotalJobs:          len(jobs),
		TotalJobSeekers:    seekerStats.Total,
		ActiveJobSeekers:   seekerStats.Active,
		IncompleteProfiles: len(incomplete),
		AverageCompletion:  report.AverageCompletion(incomplete),
		PayrollRecords:     payrollStats.Total,
		PendingPayroll:     len(payrollStats.Upcoming),
		UrgentPayroll:      payrollStats.UrgentCount,
		OverduePayroll:     len(payrollStats.Overdue),
	}
}
