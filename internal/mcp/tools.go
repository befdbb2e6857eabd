// Package mcp exposes the admin assistant as Model Context Protocol tools
// served over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "Kozi Admin Assistant"
	ServerVersion = "0.1.0"
)

// NewServer builds an MCP server with every tool registered.
func NewServer(deps Deps) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, ServerVersion)
	RegisterTools(server, deps)
	return server
}

// RegisterTools registers the admin tools with the server.
func RegisterTools(server *mcpserver.MCPServer, deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userID := deps.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	handlers := &Handlers{
		processor: deps.Processor,
		chat:      deps.Chat,
		knowledge: deps.Knowledge,
		hr:        deps.HR,
		userID:    userID,
		logger:    logger.With("component", "mcp"),
	}

	server.AddTool(mcp.Tool{
		Name:        "admin_message",
		Description: "Send a message to the Kozi admin assistant. Covers payroll, job seekers, profile completion campaigns, email and analytics questions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Admin message to process",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional chat session to record the exchange in",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.AdminMessage)

	server.AddTool(mcp.Tool{
		Name:        "knowledge_search",
		Description: "Search the Kozi knowledge base (policies, fees, profile guidance, documents).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     DefaultSearchLimit,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.KnowledgeSearch)

	server.AddTool(mcp.Tool{
		Name:        "hr_status",
		Description: "Report the HR platform connection state: reachability, token freshness and cache size.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.HRStatus)

	return handlers
}
