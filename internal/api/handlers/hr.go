package handlers

import (
	"context"
	"net/http"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
)

type HRClient interface {
	Status() hrapi.Status
	TestResponseTimes(ctx context.Context) []hrapi.ResponseTime
	ClearCache(endpoint string)
	CacheSize() int
}

// HRHandler exposes the state of the remote HR platform client.
type HRHandler struct {
	client HRClient
}

func NewHRHandler(client HRClient) *HRHandler {
	return &HRHandler{client: client}
}

type ClearCacheRequest struct {
	Endpoint string `json:"endpoint"`
}

type ClearCacheResponse struct {
	Cleared   string `json:"cleared"`
	CacheSize int    `json:"cache_size"`
}

type ResponseTimeResult struct {
	Name       string `json:"name"`
	Endpoint   string `json:"endpoint"`
	OK         bool   `json:"ok"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type ResponseTimesResponse struct {
	Results []ResponseTimeResult `json:"results"`
	AllOK   bool                 `json:"all_ok"`
}

func (h *HRHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.client.Status())
}

func (h *HRHandler) ResponseTimes(w http.ResponseWriter, r *http.Request) {
	times := h.client.TestResponseTimes(r.Context())

	resp := ResponseTimesResponse{Results: make([]ResponseTimeResult, 0, len(times)), AllOK: true}
	for _, t := range times {
		resp.Results = append(resp.Results, ResponseTimeResult{
			Name:       t.Name,
			Endpoint:   t.Endpoint,
			OK:         t.OK,
			DurationMS: t.Duration.Milliseconds(),
			Error:      t.Error,
		})
		if !t.OK {
			resp.AllOK = false
		}
	}
	api.Success(w, http.StatusOK, resp)
}

// ClearCache drops the cached responses of one endpoint, or all of them when
// no endpoint is given.
func (h *HRHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	var req ClearCacheRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.client.ClearCache(req.Endpoint)

	cleared := req.Endpoint
	if cleared == "" {
		cleared = "all"
	}
	api.Success(w, http.StatusOK, ClearCacheResponse{Cleared: cleared, CacheSize: h.client.CacheSize()})
}
