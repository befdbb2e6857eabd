package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	DefaultUserID      = "mcp"
	DefaultSearchLimit = 5
	maxSearchLimit     = 20
)

type MessageProcessor interface {
	ProcessAdminMessage(ctx context.Context, message, sessionID, userID string) domain.Reply
}

type ChatSender interface {
	SendMessage(ctx context.Context, sessionID, userID, message string) (domain.Reply, error)
}

type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

type HRStatusReporter interface {
	Status() hrapi.Status
	HealthCheck(ctx context.Context) bool
}

// Deps are the collaborators behind the tools. Chat is optional; without it
// messages that name a session are processed without being recorded.
type Deps struct {
	Processor MessageProcessor
	Chat      ChatSender
	Knowledge KnowledgeSearcher
	HR        HRStatusReporter
	UserID    string
	Logger    *slog.Logger
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	processor MessageProcessor
	chat      ChatSender
	knowledge KnowledgeSearcher
	hr        HRStatusReporter
	userID    string
	logger    *slog.Logger
}

// AdminMessage handles the admin_message tool
func (h *Handlers) AdminMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	sessionID := request.GetString("session_id", "")

	var reply domain.Reply
	if sessionID != "" && h.chat != nil {
		reply, err = h.chat.SendMessage(ctx, sessionID, h.userID, message)
		if err != nil {
			h.logger.Warn("admin_message failed", "session_id", sessionID, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to send message: %v", err)), nil
		}
	} else {
		reply = h.processor.ProcessAdminMessage(ctx, message, sessionID, h.userID)
	}

	return mcp.NewToolResultText(fmt.Sprintf("[%s] %s", reply.Type, reply.Message)), nil
}

// KnowledgeSearch handles the knowledge_search tool
func (h *Handlers) KnowledgeSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	if h.knowledge == nil {
		return mcp.NewToolResultError(domain.ErrEmbeddingsNotConfigured.Message), nil
	}

	limit := request.GetInt("limit", DefaultSearchLimit)
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.knowledge.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatSearchResults(query, results)), nil
}

// HRStatus handles the hr_status tool
func (h *Handlers) HRStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.hr == nil {
		return mcp.NewToolResultError("hr api client not configured"), nil
	}

	status := h.hr.Status()
	reachable := h.hr.HealthCheck(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "HR API: %s\n", status.BaseURL)
	fmt.Fprintf(&b, "Reachable: %s\n", yesNo(reachable))
	fmt.Fprintf(&b, "Authenticated: %s\n", yesNo(status.Authenticated))
	fmt.Fprintf(&b, "Token fresh: %s\n", yesNo(status.TokenFresh))
	fmt.Fprintf(&b, "Cached responses: %d", status.CacheSize)
	return mcp.NewToolResultText(b.String()), nil
}

func formatSearchResults(query string, results []domain.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No knowledge found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s) for %q:\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s (similarity %.2f)", i+1, r.ID, r.Similarity)
		if category := r.Metadata[domain.MetaCategory]; category != "" {
			fmt.Fprintf(&b, " [%s]", category)
		}
		fmt.Fprintf(&b, "\n%s\n", r.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
