package client

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/spf13/cobra"
)

type DashboardHR struct {
	TotalJobs          int `json:"total_jobs"`
	TotalJobSeekers    int `json:"total_job_seekers"`
	ActiveJobSeekers   int `json:"active_job_seekers"`
	IncompleteProfiles int `json:"incomplete_profiles"`
	AverageCompletion  int `json:"average_completion"`
	PendingPayroll     int `json:"pending_payroll"`
	UrgentPayroll      int `json:"urgent_payroll"`
	OverduePayroll     int `json:"overdue_payroll"`
}

// DashboardResponse holds the parts of the dashboard the CLI prints.
type DashboardResponse struct {
	HR       DashboardHR `json:"hr"`
	Activity struct {
		AdminSessionsToday int `json:"admin_sessions_today"`
	} `json:"activity"`
	Errors map[string]string `json:"errors,omitempty"`
}

// SearchResult represents a knowledge search result.
type SearchResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

// SearchResponse represents the knowledge search API response.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// DashboardCmd creates the dashboard command.
func DashboardCmd() *cobra.Command {
	return cli.Require(&cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			resp, err := client.Get(cmd.Context(), "/admin/dashboard")
			if err != nil {
				return err
			}
			if outputJSON {
				return printRaw(cmd.OutOrStdout(), resp.Data)
			}

			var dash DashboardResponse
			if err := resp.Decode(&dash); err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), &dash)
			return nil
		},
	}, cli.RequiresAdmin)
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			resp, err := client.Post(cmd.Context(), "/admin/knowledge/search", map[string]any{
				"query": strings.Join(args, " "),
				"limit": limit,
			})
			if err != nil {
				return err
			}

			var result SearchResponse
			if err := resp.Decode(&result); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printSearchResults(cmd.OutOrStdout(), &result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")
	return cli.Require(cmd, cli.RequiresAdmin)
}

func printDashboard(out io.Writer, d *DashboardResponse) {
	fmt.Fprintf(out, "Jobs:                %d\n", d.HR.TotalJobs)
	fmt.Fprintf(out, "Job seekers:         %d (%d active)\n", d.HR.TotalJobSeekers, d.HR.ActiveJobSeekers)
	fmt.Fprintf(out, "Incomplete profiles: %d (average %d%%)\n", d.HR.IncompleteProfiles, d.HR.AverageCompletion)
	fmt.Fprintf(out, "Pending payroll:     %d (%d urgent, %d overdue)\n", d.HR.PendingPayroll, d.HR.UrgentPayroll, d.HR.OverduePayroll)
	fmt.Fprintf(out, "Admin sessions today: %d\n", d.Activity.AdminSessionsToday)

	if len(d.Errors) == 0 {
		return
	}
	keys := make([]string, 0, len(d.Errors))
	for k := range d.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(out, "\nUnavailable:")
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, d.Errors[k])
	}
}

func printSearchResults(out io.Writer, r *SearchResponse) {
	if len(r.Results) == 0 {
		fmt.Fprintf(out, "No results for %q\n", r.Query)
		return
	}
	for i, res := range r.Results {
		fmt.Fprintf(out, "%d. %s (%.2f)\n   %s\n", i+1, res.ID, res.Similarity, strings.Join(strings.Fields(res.Text), " "))
	}
}

func printRaw(out io.Writer, data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return printJSON(out, v)
}
