package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	employeeQueryLimit = 50
	employerQueryLimit = 50
	analyticsTrendRows = 12
)

// LocalDataRepository reads the local reporting tables: payment schedules,
// employees, employers, processed email and analytics metrics.
type LocalDataRepository struct {
	db dbtx
}

func NewLocalDataRepository(pool *pgxpool.Pool) *LocalDataRepository {
	return &LocalDataRepository{db: pool}
}

func NewLocalDataRepositoryWithTx(tx dbtx) *LocalDataRepository {
	return &LocalDataRepository{db: tx}
}

const paymentScheduleColumns = `schedule_id, employee_count, total_amount::float8, currency, due_date,
	payment_period, status, reminder_sent, created_at, reminded_at, (due_date - CURRENT_DATE)`

// PendingPaymentSchedules returns pending schedules, earliest due first.
func (r *LocalDataRepository) PendingPaymentSchedules(ctx context.Context, limit int) ([]domain.PaymentSchedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+paymentScheduleColumns+`
		 FROM payment_schedules
		 WHERE status = 'pending'
		 ORDER BY due_date ASC
		 LIMIT $1`,
		limit,
	)
}

// UpcomingPayments returns pending or processing schedules, earliest due first.
func (r *LocalDataRepository) UpcomingPayments(ctx context.Context, limit int) ([]domain.PaymentSchedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+paymentScheduleColumns+`
		 FROM payment_schedules
		 WHERE status IN ('pending', 'processing')
		 ORDER BY due_date ASC
		 LIMIT $1`,
		limit,
	)
}

func (r *LocalDataRepository) OverdueSummary(ctx context.Context) (domain.OverdueSummary, error) {
	var s domain.OverdueSummary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_amount), 0)::float8
		 FROM payment_schedules
		 WHERE due_date < CURRENT_DATE AND status = 'pending'`,
	).Scan(&s.Count, &s.Amount)
	return s, err
}

// DueReminders returns pending schedules due on or before `before` that have
// not been reminded yet.
func (r *LocalDataRepository) DueReminders(ctx context.Context, before time.Time) ([]domain.PaymentSchedule, error) {
	return r.querySchedules(ctx,
		`SELECT `+paymentScheduleColumns+`
		 FROM payment_schedules
		 WHERE status = 'pending' AND reminder_sent = FALSE
		   AND due_date >= CURRENT_DATE AND due_date <= $1::date
		 ORDER BY due_date ASC`,
		before,
	)
}

func (r *LocalDataRepository) MarkReminderSent(ctx context.Context, scheduleID string, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE payment_schedules SET reminder_sent = TRUE, reminded_at = $2 WHERE schedule_id = $1`,
		scheduleID, at,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *LocalDataRepository) querySchedules(ctx context.Context, sql string, args ...any) ([]domain.PaymentSchedule, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentSchedule
	for rows.Next() {
		var (
			s    domain.PaymentSchedule
			days int
		)
		if err := rows.Scan(&s.ID, &s.EmployeeCount, &s.TotalAmount, &s.Currency, &s.DueDate,
			&s.PaymentPeriod, &s.Status, &s.ReminderSent, &s.CreatedAt, &s.RemindedAt, &days); err != nil {
			return nil, err
		}
		s.DaysUntilDue = &days
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *LocalDataRepository) EmployeeStats(ctx context.Context) (domain.EmployeeStats, error) {
	var s domain.EmployeeStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE employment_status = 'active'),
			COUNT(DISTINCT location)
		 FROM platform_employees`,
	).Scan(&s.Total, &s.Active, &s.Locations)
	return s, err
}

// QueryEmployees lists active employees matching f, most recently hired first.
func (r *LocalDataRepository) QueryEmployees(ctx context.Context, f domain.EmployeeFilter) (*domain.EmployeeQueryResult, error) {
	where := []string{"employment_status = 'active'"}
	var args []any
	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}
	if f.Department != "" {
		args = append(args, f.Department)
		where = append(where, fmt.Sprintf("department = $%d", len(args)))
	}
	clause := "WHERE " + strings.Join(where, " AND ")

	rows, err := r.db.Query(ctx,
		`SELECT employee_id, full_name, email, location, department, position, hire_date
		 FROM platform_employees `+clause+`
		 ORDER BY hire_date DESC NULLS LAST
		 LIMIT `+fmt.Sprint(employeeQueryLimit),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.EmployeeQueryResult{Employees: []domain.Employee{}, Filters: f}
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Location, &e.Department, &e.Position, &e.HireDate); err != nil {
			return nil, err
		}
		result.Employees = append(result.Employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT location), COUNT(DISTINCT department)
		 FROM platform_employees `+clause,
		args...,
	).Scan(&result.Total, &result.Locations, &result.Departments)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryEmployers lists employers matching f, newest first.
func (r *LocalDataRepository) QueryEmployers(ctx context.Context, f domain.EmployerFilter) (*domain.EmployerQueryResult, error) {
	where := []string{"TRUE"}
	var args []any
	if f.VerificationStatus != "" {
		args = append(args, f.VerificationStatus)
		where = append(where, fmt.Sprintf("verification_status = $%d", len(args)))
	}
	if f.Industry != "" {
		args = append(args, f.Industry)
		where = append(where, fmt.Sprintf("industry = $%d", len(args)))
	}
	clause := "WHERE " + strings.Join(where, " AND ")

	rows, err := r.db.Query(ctx,
		`SELECT employer_id, company_name, email, location, industry, verification_status, job_postings_count, created_at
		 FROM platform_employers `+clause+`
		 ORDER BY created_at DESC
		 LIMIT `+fmt.Sprint(employerQueryLimit),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.EmployerQueryResult{Employers: []domain.Employer{}, Filters: f}
	for rows.Next() {
		var e domain.Employer
		if err := rows.Scan(&e.ID, &e.CompanyName, &e.Email, &e.Location, &e.Industry,
			&e.VerificationStatus, &e.JobPostingsCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		result.Employers = append(result.Employers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(job_postings_count), 0), COUNT(DISTINCT industry)
		 FROM platform_employers `+clause,
		args...,
	).Scan(&result.Total, &result.TotalJobs, &result.Industries)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *LocalDataRepository) OverviewStats(ctx context.Context) (domain.OverviewStats, error) {
	var s domain.OverviewStats
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM platform_employees),
			(SELECT COUNT(*) FROM platform_employees WHERE employment_status = 'active'),
			(SELECT COUNT(DISTINCT location) FROM platform_employees),
			(SELECT COUNT(*) FROM platform_employers),
			(SELECT COUNT(*) FROM platform_employers WHERE verification_status = 'verified'),
			(SELECT COALESCE(SUM(job_postings_count), 0) FROM platform_employers)`,
	).Scan(&s.TotalEmployees, &s.ActiveEmployees, &s.EmployeeLocations,
		&s.TotalEmployers, &s.VerifiedEmployers, &s.TotalJobPostings)
	return s, err
}

// PendingTasks counts payments due within a week, pending employer
// verifications and pending high-priority email.
func (r *LocalDataRepository) PendingTasks(ctx context.Context) (domain.PendingTasks, error) {
	var t domain.PendingTasks
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM payment_schedules
			 WHERE status = 'pending' AND due_date <= CURRENT_DATE + 7),
			(SELECT COUNT(*) FROM platform_employers WHERE verification_status = 'pending'),
			(SELECT COUNT(*) FROM email_processing
			 WHERE processing_status = 'pending' AND priority = 'high')`,
	).Scan(&t.UpcomingPayments, &t.PendingVerifications, &t.HighPriorityEmails)
	return t, err
}

// EmailSummary groups email processed since the given time.
func (r *LocalDataRepository) EmailSummary(ctx context.Context, since time.Time) ([]domain.EmailCategorySummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email_category, priority, processing_status, COUNT(*) AS count
		 FROM email_processing
		 WHERE created_at >= $1
		 GROUP BY email_category, priority, processing_status
		 ORDER BY `+priorityOrder+` DESC, count DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.EmailCategorySummary{}
	for rows.Next() {
		var s domain.EmailCategorySummary
		if err := rows.Scan(&s.Category, &s.Priority, &s.Status, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *LocalDataRepository) PendingPriorities(ctx context.Context) ([]domain.PriorityCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT priority, COUNT(*)
		 FROM email_processing
		 WHERE processing_status = 'pending'
		 GROUP BY priority
		 ORDER BY `+priorityOrder+` DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PriorityCount{}
	for rows.Next() {
		var p domain.PriorityCount
		if err := rows.Scan(&p.Priority, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PendingEmails lists pending high and medium priority email awaiting a reply.
func (r *LocalDataRepository) PendingEmails(ctx context.Context, limit int) ([]domain.PendingEmail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email_id, email_subject, sender_email, email_category, priority, content_summary
		 FROM email_processing
		 WHERE processing_status = 'pending' AND priority IN ('high', 'medium')
		 ORDER BY `+priorityOrder+` DESC, created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PendingEmail{}
	for rows.Next() {
		var e domain.PendingEmail
		if err := rows.Scan(&e.ID, &e.Subject, &e.SenderEmail, &e.Category, &e.Priority, &e.ContentSummary); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// priorityOrder ranks priority labels so that high sorts above medium and low.
const priorityOrder = `CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`

func (r *LocalDataRepository) AnalyticsMetrics(ctx context.Context, periodType, periodValue string) ([]domain.AnalyticsMetric, error) {
	rows, err := r.db.Query(ctx,
		`SELECT metric_name, metric_value, metric_type, category
		 FROM platform_analytics
		 WHERE period_type = $1 AND period_value = $2
		 ORDER BY category, metric_name`,
		periodType, periodValue,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AnalyticsMetric{}
	for rows.Next() {
		var m domain.AnalyticsMetric
		if err := rows.Scan(&m.Name, &m.Value, &m.Type, &m.Category); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AnalyticsTrends returns the headline metrics for the most recent periods.
func (r *LocalDataRepository) AnalyticsTrends(ctx context.Context, periodType string) ([]domain.AnalyticsTrend, error) {
	rows, err := r.db.Query(ctx,
		`SELECT metric_name, metric_value, period_value
		 FROM platform_analytics
		 WHERE period_type = $1
		   AND metric_name IN ('total_active_users', 'job_applications', 'successful_hires')
		 ORDER BY period_value DESC
		 LIMIT $2`,
		periodType, analyticsTrendRows,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AnalyticsTrend{}
	for rows.Next() {
		var t domain.AnalyticsTrend
		if err := rows.Scan(&t.Name, &t.Value, &t.Period); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
