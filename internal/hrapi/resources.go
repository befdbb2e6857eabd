package hrapi

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// Upstream endpoints.
const (
	EndpointJobSeekers                 = "/admin/select_jobseekers"
	EndpointJobSeekersFallback         = "/admin/job_seekers"
	EndpointJobs                       = "/admin/select_jobss"
	EndpointIncompleteProfiles         = "/admin/job_seekers/who_did_not_complete_profile"
	EndpointIncompleteProfilesFallback = "/admin/incomplete-profiles"
	EndpointPayroll                    = "/admin/payroll"
	EndpointHealth                     = "/health"
)

// FetchOptions controls a single resource fetch.
type FetchOptions struct {
	// UseCache returns a fresh cached payload when one exists instead of
	// calling the API.
	UseCache bool
}

// GetAllJobSeekers fetches every registered job seeker, trying the fallback
// endpoint when the primary one fails.
func (c *Client) GetAllJobSeekers(ctx context.Context, opts FetchOptions) ([]domain.JobSeeker, error) {
	records, err := c.fetchWithFallback(ctx, opts, EndpointJobSeekers, EndpointJobSeekersFallback)
	if err != nil {
		return nil, err
	}
	c.logger.Info("job seekers fetched", "count", len(records))
	return normalizeJobSeekers(records), nil
}

// GetAllJobs fetches every published job.
func (c *Client) GetAllJobs(ctx context.Context, opts FetchOptions) ([]domain.Job, error) {
	records, err := c.fetchRecords(ctx, EndpointJobs, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Info("jobs fetched", "count", len(records))
	return normalizeJobs(records), nil
}

// GetIncompleteProfiles fetches job seekers who did not complete their profile.
func (c *Client) GetIncompleteProfiles(ctx context.Context, opts FetchOptions) ([]domain.IncompleteProfile, error) {
	records, err := c.fetchWithFallback(ctx, opts, EndpointIncompleteProfiles, EndpointIncompleteProfilesFallback)
	if err != nil {
		return nil, err
	}
	return normalizeIncompleteProfiles(records), nil
}

// GetPayrollData fetches payroll entries.
func (c *Client) GetPayrollData(ctx context.Context, opts FetchOptions) ([]domain.PayrollRecord, error) {
	records, err := c.fetchRecords(ctx, EndpointPayroll, opts)
	if err != nil {
		return nil, err
	}
	return normalizePayroll(records), nil
}

func (c *Client) fetchWithFallback(ctx context.Context, opts FetchOptions, primary, fallback string) ([]map[string]any, error) {
	records, err := c.fetchRecords(ctx, primary, opts)
	if err == nil {
		return records, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	c.logger.Info("primary endpoint failed, trying fallback", "primary", primary, "fallback", fallback, "error", err)
	records, fallbackErr := c.fetchRecords(ctx, fallback, opts)
	if fallbackErr != nil {
		return nil, errors.Join(err, fallbackErr)
	}
	return records, nil
}

func (c *Client) fetchRecords(ctx context.Context, endpoint string, opts FetchOptions) ([]map[string]any, error) {
	key := cacheKey(endpoint, nil)

	if opts.UseCache {
		if cached, ok := c.cache.get(key); ok {
			if records, ok := cached.([]map[string]any); ok {
				c.logger.Debug("hr api cache hit", "key", key)
				return records, nil
			}
		}
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	records, err := c.unwrap(endpoint, body)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, records)
	return records, nil
}

// unwrap accepts either a bare array or a {"data": [...]} envelope. Any other
// well-formed JSON yields an empty result; invalid JSON is a shape error.
func (c *Client) unwrap(endpoint string, body []byte) ([]map[string]any, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.ErrUnexpectedShape.Wrap(err)
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		data, ok := v["data"].([]any)
		if !ok {
			c.logger.Warn("hr api response has no data array", "endpoint", endpoint)
			return []map[string]any{}, nil
		}
		items = data
	default:
		c.logger.Warn("hr api response is not an object or array", "endpoint", endpoint)
		return []map[string]any{}, nil
	}

	records := make([]map[string]any, 0, len(items))
	skipped := 0
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		c.logger.Warn("skipped non-object records", "endpoint", endpoint, "skipped", skipped)
	}
	return records, nil
}
