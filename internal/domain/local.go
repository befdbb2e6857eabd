package domain

import "time"

// Rows read from the local reporting tables. They back the fallback paths when
// the remote HR API is unreachable and the admin REST endpoints.

type PaymentSchedule struct {
	ID            string     `json:"schedule_id"`
	EmployeeCount int        `json:"employee_count"`
	TotalAmount   float64    `json:"total_amount"`
	Currency      string     `json:"currency"`
	DueDate       time.Time  `json:"due_date"`
	PaymentPeriod string     `json:"payment_period"`
	Status        string     `json:"status"`
	ReminderSent  bool       `json:"reminder_sent"`
	CreatedAt     time.Time  `json:"created_at"`
	DaysUntilDue  *int       `json:"days_until_due,omitempty"`
	RemindedAt    *time.Time `json:"reminded_at,omitempty"`
}

type OverdueSummary struct {
	Count  int     `json:"overdue_count"`
	Amount float64 `json:"overdue_amount"`
}

type EmployeeStats struct {
	Total     int `json:"total_employees"`
	Active    int `json:"active_employees"`
	Locations int `json:"locations"`
}

type Employee struct {
	ID         string     `json:"employee_id"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Location   string     `json:"location"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

type Employer struct {
	ID                 string    `json:"employer_id"`
	CompanyName        string    `json:"company_name"`
	Email              string    `json:"email"`
	Location           string    `json:"location"`
	Industry           string    `json:"industry"`
	VerificationStatus string    `json:"verification_status"`
	JobPostingsCount   int       `json:"job_postings_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// EmployeeFilter narrows employee queries. Empty fields are ignored.
type EmployeeFilter struct {
	Location   string `json:"location,omitempty"`
	Department string `json:"department,omitempty"`
}

// EmployerFilter narrows employer queries. Empty fields are ignored.
type EmployerFilter struct {
	VerificationStatus string `json:"verification_status,omitempty"`
	Industry           string `json:"industry,omitempty"`
}

type EmployeeQueryResult struct {
	Employees   []Employee     `json:"employees"`
	Total       int            `json:"total"`
	Locations   int            `json:"locations"`
	Departments int            `json:"departments"`
	Filters     EmployeeFilter `json:"filters_applied"`
}

type EmployerQueryResult struct {
	Employers  []Employer     `json:"employers"`
	Total      int            `json:"total"`
	TotalJobs  int            `json:"total_jobs"`
	Industries int            `json:"industries"`
	Filters    EmployerFilter `json:"filters_applied"`
}

type OverviewStats struct {
	TotalEmployees    int `json:"total_employees"`
	ActiveEmployees   int `json:"active_employees"`
	EmployeeLocations int `json:"employee_locations"`
	TotalEmployers    int `json:"total_employers"`
	VerifiedEmployers int `json:"verified_employers"`
	TotalJobPostings  int `json:"total_job_postings"`
}

type PendingTasks struct {
	UpcomingPayments     int `json:"upcoming_payments"`
	PendingVerifications int `json:"pending_verifications"`
	HighPriorityEmails   int `json:"high_priority_emails"`
}

type EmailCategorySummary struct {
	Category string `json:"email_category"`
	Priority string `json:"priority"`
	Status   string `json:"processing_status"`
	Count    int    `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type PendingEmail struct {
	ID             string `json:"email_id"`
	Subject        string `json:"email_subject"`
	SenderEmail    string `json:"sender_email"`
	Category       string `json:"email_category"`
	Priority       string `json:"priority"`
	ContentSummary string `json:"content_summary"`
}

type AnalyticsMetric struct {
	Name     string  `json:"metric_name"`
	Value    float64 `json:"metric_value"`
	Type     string  `json:"metric_type"`
	Category string  `json:"category"`
}

type AnalyticsTrend struct {
	Name   string  `json:"metric_name"`
	Value  float64 `json:"metric_value"`
	Period string  `json:"period_value"`
}

// AdminUser is a platform user allowed to use the admin assistant.
type AdminUser struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
}
