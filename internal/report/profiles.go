package report

import (
	"fmt"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// ProfileAnalysis reports on incomplete profiles without contacting anyone.
func ProfileAnalysis(profiles []domain.IncompleteProfile) string {
	total := len(profiles)
	var b strings.Builder

	b.WriteString("📋 PROFILE COMPLETION ANALYSIS\n\n")
	b.WriteString("📊 SUMMARY:\n")
	fmt.Fprintf(&b, "• Total Incomplete: %d\n", total)
	fmt.Fprintf(&b, "• Average Completion: %d%%\n\n", AverageCompletion(profiles))

	b.WriteString("📈 BREAKDOWN:\n")
	for _, band := range CompletionBands(profiles) {
		fmt.Fprintf(&b, "• %s: %d users (%d%%)\n", band.Name, band.Count, band.Percentage)
	}

	b.WriteString("\n📍 TOP LOCATIONS WITH INCOMPLETE PROFILES:\n")
	b.WriteString(LocationBreakdown(profiles))
	b.WriteString("\n\n")

	b.WriteString("⚠️ COMMON MISSING FIELDS:\n")
	b.WriteString(MissingFields(profiles))
	b.WriteString("\n\n")

	b.WriteString(SuggestedActions("✅ SUGGESTED ACTIONS:", []string{
		fmt.Sprintf("Send reminder emails to all %d users", total),
		"Target users with <50% completion first",
		"Offer completion incentives",
		"Schedule follow-up reminders",
	}))
	b.WriteString("\n\n💡 Would you like me to send reminder emails now?")

	return b.String()
}

// CompletionBreakdown lists the completion bands as dash items.
func CompletionBreakdown(profiles []domain.IncompleteProfile) string {
	bands := CompletionBands(profiles)
	lines := make([]string, len(bands))
	for i, band := range bands {
		lines[i] = fmt.Sprintf("- %s: %d users (%d%%)", band.Name, band.Count, band.Percentage)
	}
	return strings.Join(lines, "\n")
}

// LocationBreakdown lists the five locations with most incomplete profiles.
func LocationBreakdown(profiles []domain.IncompleteProfile) string {
	locations := top(profileLocations(profiles), 5)
	if len(locations) == 0 {
		return "No location data available"
	}
	items := make([]string, len(locations))
	for i, loc := range locations {
		items[i] = fmt.Sprintf("%s: %d users", loc.Name, loc.Count)
	}
	return NumberedList(items)
}

// MissingFields lists the five most commonly missing profile fields.
func MissingFields(profiles []domain.IncompleteProfile) string {
	fields := top(missingFieldCounts(profiles), 5)
	if len(fields) == 0 {
		return "No specific missing fields data available"
	}
	items := make([]string, len(fields))
	for i, f := range fields {
		items[i] = fmt.Sprintf("%s: Missing in %d profiles", f.Name, f.Count)
	}
	return NumberedList(items)
}

func NoIncompleteProfiles() string {
	return "✨ PROFILE STATUS\n\n🎉 Great news! All profiles are complete!\n\n" +
		SuggestedActions("✅ ACTIONS:", []string{
			"Monitor new registrations",
			"Review profile quality",
			"Generate completion report",
		})
}

// CampaignResult summarizes a finished reminder campaign.
func CampaignResult(sent, failed int, profiles []domain.IncompleteProfile) string {
	var b strings.Builder
	b.WriteString("✉️ REMINDER CAMPAIGN COMPLETED\n\n")
	b.WriteString("📤 RESULTS:\n")
	fmt.Fprintf(&b, "• Sent: %d\n", sent)
	fmt.Fprintf(&b, "• Failed: %d\n", failed)
	fmt.Fprintf(&b, "• Success Rate: %d%%\n\n", SuccessRate(sent, failed))
	b.WriteString("📊 TARGET BREAKDOWN:\n")
	b.WriteString(CompletionBreakdown(profiles))
	b.WriteString("\n\n")
	b.WriteString(SuggestedActions("✅ NEXT STEPS:", []string{
		"Monitor open rates",
		"Track completion improvements",
		"Follow up in 7 days",
	}))
	return b.String()
}

// SuccessRate is round(sent / max(sent+failed, 1) * 100).
func SuccessRate(sent, failed int) int {
	return percent(sent, sent+failed)
}
