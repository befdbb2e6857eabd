package main

import (
	"fmt"
	"os"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "kozi",
		Short: "Kozi CLI - chat with the Kozi admin assistant",
		Long: `Kozi CLI talks to the Kozi admin chatbot API.

Environment variables:
  KOZI_USER_ID   Admin user id sent as X-User-ID (required)
  KOZI_API_URL   API base URL (default: http://localhost:5000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("user-id", "", "Admin user id (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.StartCmd())
	rootCmd.AddCommand(client.SendCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.EndCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.DashboardCmd())
	rootCmd.AddCommand(client.SearchCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
