package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

func JobSeekers(a JobSeekerAnalysis) string {
	var b strings.Builder

	b.WriteString("📊 DATABASE QUERY RESULTS\n\n")
	b.WriteString("📈 OVERVIEW:\n")
	b.WriteString(Table([]Row{
		{"Total Job Seekers", strconv.Itoa(a.Total)},
		{"Active Profiles", strconv.Itoa(a.Active)},
		{"Inactive Profiles", strconv.Itoa(a.Inactive)},
		{"Avg Completion", strconv.Itoa(a.Completion) + "%"},
	}))
	b.WriteString("\n")

	b.WriteString("📍 TOP LOCATIONS:\n")
	for i, loc := range top(a.Locations, 5) {
		fmt.Fprintf(&b, "%d. %s: %d (%d%%)\n", i+1, loc.Name, loc.Count, loc.Percentage)
	}
	b.WriteString("\n")

	b.WriteString("💼 TOP CATEGORIES:\n")
	for i, cat := range top(a.Categories, 5) {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, cat.Name, cat.Count)
	}
	b.WriteString("\n")

	b.WriteString("💡 INSIGHTS:\n")
	b.WriteString(BulletList([]string{Insight(a)}))
	b.WriteString("\n\n")

	incomplete := a.Total - a.Total*a.Completion/100
	b.WriteString(SuggestedActions("✅ NEXT STEPS:", []string{
		"Filter by specific location or category",
		fmt.Sprintf("Send reminders to incomplete profiles (%d users)", incomplete),
		"Generate detailed analytics report",
		"Export data for external analysis",
	}))
	b.WriteString("\n\n")
	b.WriteString(`Would you like me to filter further? (e.g., "Show Kigali workers" or "Filter by category")`)

	return b.String()
}

// Insight picks the single most relevant observation about the job seekers.
func Insight(a JobSeekerAnalysis) string {
	switch {
	case a.Completion < 50:
		return fmt.Sprintf("Low completion rate (%d%%) - consider sending reminders", a.Completion)
	case len(a.Locations) > 0 && a.Locations[0].Percentage > 60:
		return fmt.Sprintf("%s dominates (%d%%) - consider expanding to other regions", a.Locations[0].Name, a.Locations[0].Percentage)
	case a.Total > 1000:
		return fmt.Sprintf("Large user base (%d) - platform is growing well", a.Total)
	default:
		return fmt.Sprintf("Active user engagement across %d locations", len(a.Locations))
	}
}

func NoJobSeekerData() string {
	return "📊 DATABASE STATUS\n\nNo job seeker records found.\n\n" +
		SuggestedActions("✅ ACTIONS:", []string{
			"Check API connection",
			"Verify database status",
			"Contact technical support",
		})
}

// LocalEmployees summarizes the local employee table.
func LocalEmployees(s domain.EmployeeStats) string {
	var b strings.Builder
	b.WriteString("Database Summary (Local Data)\n\n")
	b.WriteString(localDataNote + "\n\n")
	b.WriteString("Employee Overview:\n")
	fmt.Fprintf(&b, "- Total Employees: %d\n", s.Total)
	fmt.Fprintf(&b, "- Active: %d\n", s.Active)
	fmt.Fprintf(&b, "- Locations: %d\n\n", s.Locations)
	b.WriteString(SuggestedActions("Suggested Actions:", []string{
		"Restore API connection for real-time data",
		"Contact technical support",
		"Check system status",
	}))
	return b.String()
}
