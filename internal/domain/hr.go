package domain

import (
	"strings"
	"time"
)

// Records fetched from the remote HR platform. The hrapi package normalizes
// heterogeneous upstream payloads into these shapes.

// PayrollRecord is one salary payment entry.
type PayrollRecord struct {
	ID           string    `json:"id,omitempty"`
	Period       string    `json:"period"`
	Amount       float64   `json:"amount"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Email        string    `json:"email,omitempty"`
}

// IsPending reports whether the payment has not been processed yet.
func (p PayrollRecord) IsPending() bool {
	return strings.EqualFold(p.Status, "pending")
}

// JobSeeker is a worker registered on the platform.
type JobSeeker struct {
	ID         string `json:"id,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Location   string `json:"location,omitempty"`
	Category   string `json:"category,omitempty"`
	Status     string `json:"status,omitempty"`
	IsActive   bool   `json:"is_active"`
	Completion int    `json:"completion"`
}

// Active reports whether the job seeker counts as an active profile.
func (j JobSeeker) Active() bool {
	return j.Status == "active" || j.IsActive
}

// Job is a published job offer.
type Job struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Location string `json:"location,omitempty"`
	Employer string `json:"employer,omitempty"`
}

// IncompleteProfile is a job seeker who has not finished onboarding.
type IncompleteProfile struct {
	ID            string   `json:"id,omitempty"`
	FullName      string   `json:"full_name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Location      string   `json:"location,omitempty"`
	Completion    int      `json:"completion"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
