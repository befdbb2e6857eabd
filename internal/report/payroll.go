package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

const localDataNote = "⚠️ Note: Using cached data. Real-time API unavailable."

func Payroll(a PayrollAnalysis) string {
	var b strings.Builder

	b.WriteString("💰 PAYROLL STATUS UPDATE\n\n")
	b.WriteString("📊 OVERVIEW:\n")
	b.WriteString(Table([]Row{
		{"Total Records", strconv.Itoa(a.Total)},
		{"Upcoming (30 days)", strconv.Itoa(len(a.Upcoming))},
		{"Overdue", strconv.Itoa(len(a.Overdue))},
		{"Urgent (2 days)", strconv.Itoa(a.UrgentCount)},
		{"Total Amount", Currency(a.TotalAmount)},
	}))
	b.WriteString("\n")

	if a.UrgentCount > 0 {
		b.WriteString("🚨 URGENT - DUE IN 2 DAYS:\n\n")
		for i, p := range a.Urgent() {
			fmt.Fprintf(&b, "%d. Period: %s\n", i+1, p.Period)
			fmt.Fprintf(&b, "   Amount: %s\n", Currency(p.Amount))
			fmt.Fprintf(&b, "   Due: %s (%d days)\n", Date(p.DueDate), p.DaysUntil)
			fmt.Fprintf(&b, "   Status: %s\n\n", strings.ToUpper(p.Status))
		}
	}

	if len(a.Upcoming) > 0 {
		b.WriteString("📅 UPCOMING PAYMENTS (Next 30 Days):\n\n")
		for i, p := range a.Upcoming {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Period, Currency(p.Amount))
			fmt.Fprintf(&b, "   Due: %s (%d days)\n\n", Date(p.DueDate), p.DaysUntil)
		}
	}

	if len(a.Overdue) > 0 {
		fmt.Fprintf(&b, "⚠️ OVERDUE PAYMENTS: %d\n\n", len(a.Overdue))
	}

	first := "Review payment schedules"
	if a.UrgentCount > 0 {
		first = "Process urgent payments immediately"
	}
	b.WriteString(SuggestedActions("✅ SUGGESTED ACTIONS:", []string{
		first,
		"Generate detailed payment report",
		"Send payment notifications to employees",
		"Verify bank account details",
		"Prepare payment batch files",
	}))
	b.WriteString("\n\n💡 Would you like me to:\n")
	b.WriteString(BulletList([]string{
		"Send email notifications?",
		"Generate detailed report?",
		"Filter by specific period?",
	}))

	return b.String()
}

func NoPayrollData() string {
	return "💰 PAYROLL STATUS\n\nNo payroll records found.\n\n" +
		SuggestedActions("✅ ACTIONS:", []string{
			"Check API connection",
			"Verify payroll system",
			"Contact technical support if needed",
		})
}

// LocalPayroll describes the next pending schedule from the local database.
func LocalPayroll(next domain.PaymentSchedule, now time.Time) string {
	var b strings.Builder
	b.WriteString("Payment Reminder (Local Data)\n\n")
	b.WriteString(localDataNote + "\n\n")
	b.WriteString("Upcoming Salary Payment:\n")
	fmt.Fprintf(&b, "- Period: %s\n", next.PaymentPeriod)
	fmt.Fprintf(&b, "- Due Date: %s\n", Date(next.DueDate))
	fmt.Fprintf(&b, "- Days Remaining: %d days\n", DaysUntil(next.DueDate, now))
	fmt.Fprintf(&b, "- Employees: %d\n", next.EmployeeCount)
	fmt.Fprintf(&b, "- Total Amount: %s\n\n", Currency(next.TotalAmount))
	b.WriteString(SuggestedActions("Suggested Actions:", []string{
		"Restore API connection for real-time data",
		"Generate payment report",
		"Verify bank account details",
	}))
	return b.String()
}

func LocalPayrollEmpty() string {
	return "Payment Status Update (Local Data)\n\n" +
		localDataNote + "\n\n" +
		"No pending salary payments found.\n\n" +
		"Suggested Actions:\n" +
		"- Check API connection\n" +
		"- Review completed payments\n" +
		"- Contact technical support"
}
