package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

type KnowledgeService interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	Reload(ctx context.Context) (*service.LoadSummary, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type KnowledgeSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type KnowledgeSearchResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

type KnowledgeSearchResponse struct {
	Query   string                  `json:"query"`
	Results []KnowledgeSearchResult `json:"results"`
	Count   int                     `json:"count"`
}

func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.svc.Search(r.Context(), req.Query, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := KnowledgeSearchResponse{Query: req.Query, Results: make([]KnowledgeSearchResult, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, KnowledgeSearchResult{
			ID:         res.ID,
			Text:       res.Text,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		})
	}
	resp.Count = len(resp.Results)
	api.Success(w, http.StatusOK, resp)
}

// Reload clears the store and indexes every knowledge source again.
func (h *KnowledgeHandler) Reload(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reload(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, summary)
}
