// Package hrapi is the client for the remote Kozi HR platform API. A Client owns
// its bearer token and response cache; construct one per process and share it.
package hrapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL       = "https://apis.kozi.rw"
	DefaultLoginEndpoint = "/login"
	DefaultRoleID        = 1
	DefaultTimeout       = 10 * time.Second
	DefaultCacheTTL      = 5 * time.Minute

	userAgent       = "Kozi-Platform/1.0"
	maxResponseSize = 32 << 20
)

// Config configures a Client. Zero values fall back to the package defaults.
type Config struct {
	BaseURL       string
	LoginEndpoint string
	Email         string
	Password      string
	RoleID        int
	Timeout       time.Duration
	CacheTTL      time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// Client talks to the HR platform on behalf of the admin assistant.
type Client struct {
	baseURL       string
	loginEndpoint string
	email         string
	password      string
	roleID        int
	timeout       time.Duration

	http   *http.Client
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time

	logins singleflight.Group
	cache  *ttlCache
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hr api %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LoginEndpoint == "" {
		cfg.LoginEndpoint = DefaultLoginEndpoint
	}
	if cfg.RoleID == 0 {
		cfg.RoleID = DefaultRoleID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		loginEndpoint: cfg.LoginEndpoint,
		email:         cfg.Email,
		password:      cfg.Password,
		roleID:        cfg.RoleID,
		timeout:       cfg.Timeout,
		http:          httpClient,
		logger:        cfg.Logger.With("component", "hrapi"),
		now:           cfg.Now,
		cache:         newTTLCache(cfg.CacheTTL, cfg.Now),
	}
}

type response struct {
	status int
	body   []byte
	token  string
}

// get performs an authenticated GET. A 401 invalidates the token, triggers one
// re-login and one retry; a second 401 is returned as an auth error.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		c.logger.Info("hr api token rejected, re-authenticating", "path", path)
		c.invalidate(resp.token)
		if err := c.ensureAuth(ctx); err != nil {
			return nil, err
		}

		resp, err = c.do(ctx, http.MethodGet, path)
		if err != nil {
			return nil, err
		}
		if resp.status == http.StatusUnauthorized {
			return nil, domain.ErrAuthFailed.Wrap(c.statusError(http.MethodGet, path, resp))
		}
	}

	if resp.status < 200 || resp.status >= 300 {
		return nil, c.statusError(http.MethodGet, path, resp)
	}
	return resp.body, nil
}

func (c *Client) do(ctx context.Context, method, path string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	token := c.currentToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	telemetry.AddBreadcrumb(ctx, "hrapi", method+" "+path)
	start := c.now()

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("hr api request failed", "method", method, "path", path, "error", err)
		return nil, domain.ErrUpstreamUnavailable.Wrap(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, domain.ErrUpstreamUnavailable.Wrap(fmt.Errorf("failed to read response body: %w", err))
	}

	c.logger.Debug("hr api response",
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)

	return &response{status: res.StatusCode, body: body, token: token}, nil
}

func (c *Client) statusError(method, path string, resp *response) *StatusError {
	body := string(resp.body)
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{Method: method, Path: path, StatusCode: resp.status, Body: body}
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
