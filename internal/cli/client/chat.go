package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/cli"
	"github.com/spf13/cobra"
)

// StartResponse is the data returned by POST /chat/start.
type StartResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

// Reply is the assistant answer to one message.
type Reply struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type HistoryMessage struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
	Cursor    string           `json:"cursor,omitempty"`
	HasMore   bool             `json:"has_more"`
}

// exitWords end the interactive chat loop.
var exitWords = map[string]bool{"exit": true, "quit": true, "/exit": true, "/quit": true}

// StartCmd creates the start command.
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a new admin chat session",
		Long:  "Starts a chat session and remembers it for later send, history and end commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			start, err := startSession(cmd.Context(), client)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), start)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n\n%s\n", start.SessionID, start.Message)
			return nil
		},
	}
}

// SendCmd creates the send command.
func SendCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to the admin assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			sessionID, err := resolveSession(sessionID)
			if err != nil {
				return err
			}

			reply, err := sendMessage(cmd.Context(), client, sessionID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id (default: the last started session)")
	return cli.Require(cmd, cli.RequiresSession)
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	var (
		sessionID string
		limit     int
		cursor    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the messages of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			sessionID, err := resolveSession(sessionID)
			if err != nil {
				return err
			}

			page, err := fetchHistory(cmd.Context(), client, sessionID, limit, cursor)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}
			printHistory(cmd.OutOrStdout(), page)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id (default: the last started session)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of messages")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	return cli.Require(cmd, cli.RequiresSession)
}

// EndCmd creates the end command.
func EndCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End a chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			explicit := sessionID != ""
			sessionID, err := resolveSession(sessionID)
			if err != nil {
				return err
			}

			if err := endSession(cmd.Context(), client, sessionID); err != nil {
				return err
			}
			if !explicit {
				if err := updateSession(""); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s ended\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id (default: the last started session)")
	return cli.Require(cmd, cli.RequiresSession)
}

// ChatCmd creates the interactive chat command.
func ChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the admin assistant interactively",
		Long:  "Starts a session, then sends each input line as a message until EOF or 'exit'. The session is ended on exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), client, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(ctx context.Context, client *APIClient, in io.Reader, out io.Writer) error {
	start, err := startSession(ctx, client)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n\n", start.Message)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			break
		}

		reply, err := sendMessage(ctx, client, start.SessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", reply.Message)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return endSession(ctx, client, start.SessionID)
}

func startSession(ctx context.Context, client *APIClient) (*StartResponse, error) {
	resp, err := client.Post(ctx, "/chat/start", map[string]string{"user_id": client.UserID()})
	if err != nil {
		return nil, err
	}
	var start StartResponse
	if err := resp.Decode(&start); err != nil {
		return nil, err
	}
	if err := updateSession(start.SessionID); err != nil {
		return nil, err
	}
	return &start, nil
}

func sendMessage(ctx context.Context, client *APIClient, sessionID, message string) (*Reply, error) {
	resp, err := client.Post(ctx, "/chat/message", map[string]string{
		"session_id": sessionID,
		"user_id":    client.UserID(),
		"message":    message,
	})
	if err != nil {
		return nil, err
	}
	var reply Reply
	if err := resp.Decode(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func fetchHistory(ctx context.Context, client *APIClient, sessionID string, limit int, cursor string) (*HistoryResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	path := "/chat/history/" + url.PathEscape(sessionID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var page HistoryResponse
	if err := resp.Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

func endSession(ctx context.Context, client *APIClient, sessionID string) error {
	_, err := client.Post(ctx, "/chat/end", map[string]string{"session_id": sessionID})
	return err
}

// resolveSession falls back to the session remembered by the last start.
func resolveSession(flagSession string) (string, error) {
	if flagSession != "" {
		return flagSession, nil
	}
	config, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if config == nil || config.SessionID == "" {
		return "", fmt.Errorf("no active session (run 'kozi start' or pass --session)")
	}
	return config.SessionID, nil
}

func printHistory(out io.Writer, page *HistoryResponse) {
	if len(page.Messages) == 0 {
		fmt.Fprintln(out, "No messages")
		return
	}
	for _, m := range page.Messages {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), m.Sender, m.Message)
	}
	if page.HasMore {
		fmt.Fprintf(out, "\nMore messages: --cursor %s\n", page.Cursor)
	}
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
