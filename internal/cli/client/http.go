package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const (
	envUserID = "KOZI_USER_ID"
	envAPIURL = "KOZI_API_URL"

	defaultAPIURL = "http://localhost:5000"

	userIDHeader = "X-User-ID"
)

type APIClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env → global config → default
// If cmd is nil, skips flag checking and goes directly to env → global config
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	var userID, baseURL string

	if cmd != nil {
		if flagUser, err := cmd.Flags().GetString("user-id"); err == nil && flagUser != "" {
			userID = flagUser
		}
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}

	if userID == "" {
		userID = os.Getenv(envUserID)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}

	if userID == "" || baseURL == "" {
		globalConfig, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalConfig != nil {
			if userID == "" {
				userID = globalConfig.UserID
			}
			if baseURL == "" {
				baseURL = globalConfig.APIURL
			}
		}
	}

	if userID == "" {
		return nil, fmt.Errorf("%s not set (run 'kozi auth login' or set environment variable)", envUserID)
	}

	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return NewAPIClientWithConfig(userID, baseURL), nil
}

// NewAPIClientWithConfig creates an APIClient with explicit config.
func NewAPIClientWithConfig(userID, baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			// replies may wait on the HR API and the language model
			Timeout: 60 * time.Second,
		},
	}
}

// UserID returns the admin user id sent with every request.
func (c *APIClient) UserID() string {
	return c.userID
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Decode unmarshals the data envelope into v.
func (r *APIResponse) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("empty response data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *APIClient) do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(userIDHeader, c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
			}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiResp.Error,
		}
	}

	return &apiResp, nil
}
