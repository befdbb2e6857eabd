package report

func EmailGuidance() string {
	return "✉️ Email Processing\n\n" +
		"I can categorize inbox items and draft professional replies.\n\n" +
		SuggestedActions("✅ NEXT STEPS:", []string{
			"Connect Gmail/IMAP (if not already)",
			`Tell me: "Categorize inbox" or "Draft reply to X"`,
			`Or specify: "Summarize unread in last 24h"`,
		})
}

func AnalyticsGuidance() string {
	return "📈 Analytics\n\n" +
		"I can generate dashboards, KPIs and trends (registrations, profile completion, engagement, etc.).\n\n" +
		SuggestedActions("✅ NEXT STEPS:", []string{
			`Specify timeframe (e.g., "last 30 days")`,
			"Choose metrics (e.g., signups, active users, completion rate)",
			`Ask: "Generate analytics report for last month"`,
		})
}
