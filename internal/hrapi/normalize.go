package hrapi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// Field precedence for upstream records. The first key holding a usable value wins.
var (
	idKeys = []string{"id", "user_id", "job_seeker_id", "employee_id", "schedule_id", "payroll_id", "job_id"}

	payrollPeriodKeys = []string{"period", "payment_period", "month"}
	payrollAmountKeys = []string{"amount", "total_amount", "salary"}
	payrollDueKeys    = []string{"due_date", "dueDate", "payment_date"}
	payrollStatusKeys = []string{"status", "payment_status"}

	nameKeys       = []string{"full_name", "fullName", "name"}
	locationKeys   = []string{"location", "district", "province"}
	categoryKeys   = []string{"job_category", "category", "category_name"}
	seekerCompKeys = []string{"profile_completion", "completion_percentage"}

	profileCompKeys = []string{"completion_percentage", "profile_completion"}

	jobTitleKeys    = []string{"title", "job_title", "name"}
	jobEmployerKeys = []string{"employer", "company_name", "employer_name"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func normalizePayroll(records []map[string]any) []domain.PayrollRecord {
	out := make([]domain.PayrollRecord, 0, len(records))
	for _, r := range records {
		out = append(out, domain.PayrollRecord{
			ID:           firstString(r, idKeys...),
			Period:       firstString(r, payrollPeriodKeys...),
			Amount:       firstNumber(r, payrollAmountKeys...),
			DueDate:      firstTime(r, payrollDueKeys...),
			Status:       firstString(r, payrollStatusKeys...),
			EmployeeName: fullName(r),
			Email:        firstString(r, "email"),
		})
	}
	return out
}

func normalizeJobSeekers(records []map[string]any) []domain.JobSeeker {
	out := make([]domain.JobSeeker, 0, len(records))
	for _, r := range records {
		out = append(out, domain.JobSeeker{
			ID:         firstString(r, idKeys...),
			FullName:   fullName(r),
			Email:      firstString(r, "email"),
			Location:   firstString(r, locationKeys...),
			Category:   firstString(r, categoryKeys...),
			Status:     firstString(r, "status"),
			IsActive:   truthy(r["is_active"]),
			Completion: percentage(r, seekerCompKeys...),
		})
	}
	return out
}

func normalizeJobs(records []map[string]any) []domain.Job {
	out := make([]domain.Job, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Job{
			ID:       firstString(r, idKeys...),
			Title:    firstString(r, jobTitleKeys...),
			Category: firstString(r, categoryKeys...),
			Status:   firstString(r, "status"),
			Location: firstString(r, locationKeys...),
			Employer: firstString(r, jobEmployerKeys...),
		})
	}
	return out
}

func normalizeIncompleteProfiles(records []map[string]any) []domain.IncompleteProfile {
	out := make([]domain.IncompleteProfile, 0, len(records))
	for _, r := range records {
		out = append(out, domain.IncompleteProfile{
			ID:            firstString(r, idKeys...),
			FullName:      fullName(r),
			Email:         firstString(r, "email"),
			Location:      firstString(r, locationKeys...),
			Completion:    percentage(r, profileCompKeys...),
			MissingFields: stringList(r["missing_fields"]),
		})
	}
	return out
}

func fullName(r map[string]any) string {
	if name := firstString(r, nameKeys...); name != "" {
		return name
	}
	first := firstString(r, "first_name")
	last := firstString(r, "last_name")
	return strings.TrimSpace(first + " " + last)
}

// firstString returns the first non-empty value under keys, rendering numbers
// without a trailing fraction.
func firstString(r map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// firstNumber returns the first non-zero numeric value under keys. Numeric
// strings such as "40,000" are accepted.
func firstNumber(r map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if n, ok := toNumber(r[k]); ok && n != 0 {
			return n
		}
	}
	return 0
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func percentage(r map[string]any, keys ...string) int {
	return int(math.Round(firstNumber(r, keys...)))
}

func firstTime(r map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		s, ok := r[k].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "active":
			return true
		}
	}
	return false
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(v any) []string {
	switch l := v.(type) {
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(l, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
