package main

import (
	"fmt"
	"os"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "koziadmind",
		Short: "Kozi admin chatbot daemon and tools",
		Long:  "Kozi admin chatbot daemon for running the API server, the MCP server, migrations and knowledge base maintenance",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.KnowledgeCmd())
	rootCmd.AddCommand(admin.HRCmd())
	rootCmd.AddCommand(admin.MCPCmd())
	rootCmd.AddCommand(admin.RemindersCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
