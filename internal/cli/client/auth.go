package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the admin identity",
		Long:  "Login, logout, and check which admin user id the kozi CLI sends",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var userID string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the admin user id",
		Long:  "Store the admin user id and API URL in the global config (~/.config/kozi/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.InOrStdin(), cmd.OutOrStdout(), userID, apiURL)
		},
	}

	cmd.Flags().StringVar(&userID, "as", "", "Admin user id")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")
			return nil
		},
	}
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which user id is in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagUser, _ := cmd.Flags().GetString("user-id")
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(cmd.OutOrStdout(), flagUser, outputJSON)
		},
	}
}

func runAuthLogin(in io.Reader, out io.Writer, userID, apiURL string) error {
	if userID == "" {
		fmt.Fprint(out, "Enter admin user id: ")
		input, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		userID = strings.TrimSpace(input)
	}

	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	config := &GlobalConfig{
		UserID: userID,
		APIURL: strings.TrimRight(apiURL, "/"),
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintln(out, "Successfully logged in")
	return nil
}

func runAuthStatus(out io.Writer, flagUserID string, outputJSON bool) error {
	source, userID := GetCredentialSource(flagUserID)

	if outputJSON {
		status := map[string]any{
			"authenticated": source != SourceNone,
			"source":        string(source),
		}
		if source != SourceNone {
			status["user_id"] = userID
		}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if source == SourceNone {
		fmt.Fprintln(out, "Not authenticated")
		fmt.Fprintln(out, "Run 'kozi auth login' to set your admin user id")
		return nil
	}

	fmt.Fprintf(out, "Authenticated: yes\n")
	fmt.Fprintf(out, "Source: %s\n", source)
	fmt.Fprintf(out, "User ID: %s\n", userID)
	return nil
}
