package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

const (
	upcomingWindowDays = 30
	urgentWindowDays   = 2
)

// PayrollEntry is a pending payment with its distance to the due date.
type PayrollEntry struct {
	domain.PayrollRecord
	DaysUntil int
}

type PayrollAnalysis struct {
	Upcoming    []PayrollEntry
	Overdue     []domain.PayrollRecord
	Total       int
	TotalAmount float64
	UrgentCount int
}

// Urgent returns the upcoming entries due within two days.
func (a PayrollAnalysis) Urgent() []PayrollEntry {
	var out []PayrollEntry
	for _, e := range a.Upcoming {
		if e.DaysUntil <= urgentWindowDays {
			out = append(out, e)
		}
	}
	return out
}

// AnalyzePayroll splits pending records into upcoming (due in the next 30
// days, soonest first) and overdue. Records without a due date are counted in
// the totals only.
func AnalyzePayroll(records []domain.PayrollRecord, now time.Time) PayrollAnalysis {
	a := PayrollAnalysis{Total: len(records)}

	for _, r := range records {
		a.TotalAmount += r.Amount
		if !r.IsPending() || r.DueDate.IsZero() {
			continue
		}
		if r.DueDate.Before(now) {
			a.Overdue = append(a.Overdue, r)
			continue
		}
		days := DaysUntil(r.DueDate, now)
		if days <= upcomingWindowDays {
			a.Upcoming = append(a.Upcoming, PayrollEntry{PayrollRecord: r, DaysUntil: days})
		}
	}

	sort.SliceStable(a.Upcoming, func(i, j int) bool {
		return a.Upcoming[i].DaysUntil < a.Upcoming[j].DaysUntil
	})
	a.UrgentCount = len(a.Urgent())
	return a
}

// Bucket is a named count with its share of the total.
type Bucket struct {
	Name       string
	Count      int
	Percentage int
}

type JobSeekerAnalysis struct {
	Total      int
	Active     int
	Inactive   int
	Completion int
	Locations  []Bucket
	Categories []Bucket
}

func AnalyzeJobSeekers(seekers []domain.JobSeeker) JobSeekerAnalysis {
	a := JobSeekerAnalysis{Total: len(seekers)}

	locations := map[string]int{}
	categories := map[string]int{}
	completionSum := 0
	for _, s := range seekers {
		if s.Active() {
			a.Active++
		}
		completionSum += s.Completion
		locations[orDefault(s.Location, "Unknown")]++
		categories[orDefault(s.Category, "Uncategorized")]++
	}
	a.Inactive = a.Total - a.Active
	a.Completion = int(math.Round(float64(completionSum) / float64(max(a.Total, 1))))
	a.Locations = buckets(locations, a.Total)
	a.Categories = buckets(categories, a.Total)
	return a
}

type completionBand struct {
	label    string
	min, max int
}

var completionBands = []completionBand{
	{"0-25%", 0, 25},
	{"26-50%", 26, 50},
	{"51-75%", 51, 75},
	{"76-99%", 76, 99},
}

// CompletionBands counts profiles per completion band.
func CompletionBands(profiles []domain.IncompleteProfile) []Bucket {
	out := make([]Bucket, 0, len(completionBands))
	for _, band := range completionBands {
		count := 0
		for _, p := range profiles {
			if p.Completion >= band.min && p.Completion <= band.max {
				count++
			}
		}
		out = append(out, Bucket{Name: band.label, Count: count, Percentage: percent(count, len(profiles))})
	}
	return out
}

// AverageCompletion is the rounded mean completion of profiles.
func AverageCompletion(profiles []domain.IncompleteProfile) int {
	sum := 0
	for _, p := range profiles {
		sum += p.Completion
	}
	return int(math.Round(float64(sum) / float64(max(len(profiles), 1))))
}

func profileLocations(profiles []domain.IncompleteProfile) []Bucket {
	counts := map[string]int{}
	for _, p := range profiles {
		counts[orDefault(p.Location, "Unknown")]++
	}
	return buckets(counts, len(profiles))
}

func missingFieldCounts(profiles []domain.IncompleteProfile) []Bucket {
	counts := map[string]int{}
	for _, p := range profiles {
		for _, f := range p.MissingFields {
			counts[f]++
		}
	}
	return buckets(counts, len(profiles))
}

// buckets sorts by count descending, then name ascending.
func buckets(counts map[string]int, total int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for name, count := range counts {
		out = append(out, Bucket{Name: name, Count: count, Percentage: percent(count, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func top(b []Bucket, n int) []Bucket {
	if len(b) > n {
		return b[:n]
	}
	return b
}
