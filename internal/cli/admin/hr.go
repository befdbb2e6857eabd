package admin

import (
	"fmt"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/spf13/cobra"
)

// HRCmd returns the hr command group
func HRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hr",
		Short: "Inspect the HR platform connection",
	}
	cli.Require(cmd, cli.RequiresHRAPI)

	status := &cobra.Command{
		Use:   "status",
		Short: "Log in to the HR API and show the client state",
		RunE:  runHRStatus,
	}
	addOutputFlag(status)

	times := &cobra.Command{
		Use:   "response-times",
		Short: "Time authenticated requests against the HR API",
		RunE:  runHRResponseTimes,
	}
	addOutputFlag(times)

	cmd.AddCommand(status, times)
	return cmd
}

func hrClient() (*hrapi.Client, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return hrapi.NewClient(hrapi.Config{
		BaseURL:       cfg.APIBaseURL,
		LoginEndpoint: cfg.APILoginEndpoint,
		Email:         cfg.APIEmail,
		Password:      cfg.APIPassword,
		RoleID:        cfg.APIRoleID,
		Timeout:       cfg.APITimeout,
		CacheTTL:      cfg.APICacheTTL,
		Logger:        logger,
	}), nil
}

func runHRStatus(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	client, err := hrClient()
	if err != nil {
		return err
	}

	reachable := client.HealthCheck(cmd.Context())
	status := client.Status()

	out := cmd.OutOrStdout()
	if format == outputJSON {
		return printJSON(out, struct {
			hrapi.Status
			Reachable bool `json:"reachable"`
		}{status, reachable})
	}

	fmt.Fprintf(out, "Base URL:      %s\n", status.BaseURL)
	fmt.Fprintf(out, "Account:       %s (role %d)\n", status.Email, status.RoleID)
	fmt.Fprintf(out, "Reachable:     %t\n", reachable)
	fmt.Fprintf(out, "Authenticated: %t\n", status.Authenticated)
	fmt.Fprintf(out, "Token fresh:   %t\n", status.TokenFresh)
	return nil
}

func runHRResponseTimes(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	client, err := hrClient()
	if err != nil {
		return err
	}

	results := client.TestResponseTimes(cmd.Context())

	out := cmd.OutOrStdout()
	if format == outputJSON {
		return printJSON(out, results)
	}

	for _, r := range results {
		if r.OK {
			fmt.Fprintf(out, "%-12s %-28s %s\n", r.Name, r.Endpoint, r.Duration)
		} else {
			fmt.Fprintf(out, "%-12s %-28s FAILED: %s\n", r.Name, r.Endpoint, r.Error)
		}
	}
	return nil
}
