package admin

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kozimcp "github.com/irihojaphet/kozi-chatbot-admin/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// MCPCmd returns the mcp command
func MCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the admin assistant as MCP tools on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
admin_message, knowledge_search and hr_status tools. Logs go to stderr.`,
		RunE: runMCP,
	}
	cmd.Flags().String("user-id", kozimcp.DefaultUserID, "User id recorded for messages sent through MCP")
	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	userID, _ := cmd.Flags().GetString("user-id")
	deps := kozimcp.Deps{
		Processor: a.assistant,
		Knowledge: a.loader,
		HR:        a.hr,
		UserID:    userID,
		Logger:    logger,
	}
	if a.chat != nil {
		deps.Chat = a.chat
	}
	server := kozimcp.NewServer(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting on stdio", "database", a.pool != nil)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
