package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// tokenRefreshSkew refreshes tokens this long before their exp claim.
const tokenRefreshSkew = 60 * time.Second

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"role_id"`
}

// Login authenticates with the configured credentials and stores the token.
func (c *Client) Login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: c.email, Password: c.password, RoleID: c.roleID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.loginEndpoint), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Info("hr api login", "endpoint", c.loginEndpoint, "email", c.email, "role_id", c.roleID)

	res, err := c.http.Do(req)
	if err != nil {
		return "", domain.ErrUpstreamUnavailable.Wrap(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", domain.ErrUpstreamUnavailable.Wrap(fmt.Errorf("failed to read login response: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("hr api login failed", "status", res.StatusCode)
		return "", domain.ErrAuthFailed.Wrap(c.statusError(http.MethodPost, c.loginEndpoint, &response{status: res.StatusCode, body: body}))
	}

	token := extractToken(body)
	if token == "" {
		return "", domain.ErrTokenMissing
	}
	expiry := tokenExpiry(token)

	c.mu.Lock()
	c.token = token
	c.expiry = expiry
	c.mu.Unlock()

	c.logger.Info("hr api login succeeded", "token_length", len(token), "has_exp", !expiry.IsZero())
	return token, nil
}

// ensureAuth logs in unless the current token is fresh. Concurrent callers
// share a single in-flight login. The login is detached from the caller that
// started it, so its cancellation only affects that caller.
func (c *Client) ensureAuth(ctx context.Context) error {
	if c.TokenFresh() {
		return nil
	}

	ch := c.logins.DoChan("login", func() (any, error) {
		if c.TokenFresh() {
			return nil, nil
		}
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.Login(loginCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return domain.ErrUpstreamUnavailable.Wrap(ctx.Err())
	}
}

// TokenFresh reports whether a token is held and is not about to expire.
// Tokens without an exp claim count as fresh; a 401 will catch them.
func (c *Client) TokenFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return false
	}
	if c.expiry.IsZero() {
		return true
	}
	return c.now().Before(c.expiry.Add(-tokenRefreshSkew))
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// invalidate clears the stored token if it is still the one that was rejected.
func (c *Client) invalidate(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == rejected {
		c.token = ""
		c.expiry = time.Time{}
	}
}

// extractToken looks for the bearer token in the response shapes the
// platform has used: token, access_token, accessToken, data.token, data.access_token.
func extractToken(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"token", "access_token", "accessToken"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}

	if data, ok := payload["data"].(map[string]any); ok {
		for _, key := range []string{"token", "access_token"} {
			if s, ok := data[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// tokenExpiry reads the exp claim without verifying the signature. A zero
// time means the token carries no usable expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
