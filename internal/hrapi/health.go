package hrapi

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 5 * time.Second

// HealthCheck performs an unauthenticated GET on the health endpoint. It never
// returns an error; any failure reads as unhealthy.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(EndpointHealth), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("hr api health check failed", "error", err)
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}

// ResponseTime is the outcome of timing one endpoint.
type ResponseTime struct {
	Name     string        `json:"name"`
	Endpoint string        `json:"endpoint"`
	OK       bool          `json:"ok"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// TestResponseTimes times an authenticated GET against the jobs and job
// seekers endpoints, one after the other.
func (c *Client) TestResponseTimes(ctx context.Context) []ResponseTime {
	probes := []struct {
		name     string
		endpoint string
	}{
		{"Jobs API", EndpointJobs},
		{"Job Seekers API", EndpointJobSeekers},
	}

	results := make([]ResponseTime, 0, len(probes))
	for _, p := range probes {
		start := c.now()
		_, err := c.get(ctx, p.endpoint)
		rt := ResponseTime{Name: p.name, Endpoint: p.endpoint, OK: err == nil}
		if err != nil {
			rt.Error = err.Error()
		} else {
			rt.Duration = c.now().Sub(start)
		}
		results = append(results, rt)
	}
	return results
}

// Status describes the client configuration and auth state.
type Status struct {
	BaseURL       string `json:"base_url"`
	Authenticated bool   `json:"authenticated"`
	TokenFresh    bool   `json:"token_fresh"`
	CacheSize     int    `json:"cache_size"`
	Email         string `json:"email"`
	RoleID        int    `json:"role_id"`
}

// Status returns a snapshot of the client state.
func (c *Client) Status() Status {
	return Status{
		BaseURL:       c.baseURL,
		Authenticated: c.currentToken() != "",
		TokenFresh:    c.TokenFresh(),
		CacheSize:     c.CacheSize(),
		Email:         c.email,
		RoleID:        c.roleID,
	}
}
