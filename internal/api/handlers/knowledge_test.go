package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestKnowledgeHandler_Search_Success(t *testing.T) {
	svc := new(MockKnowledgeService)
	svc.On("Search", mock.Anything, "service fee", defaultSearchLimit).Return([]domain.SearchResult{
		{
			KnowledgeChunk: domain.KnowledgeChunk{
				ID:        "kozi-fees",
				Text:      "One-time administrative service fee: 40,000 RWF",
				Embedding: []float32{0.1, 0.2},
				Metadata:  map[string]string{domain.MetaCategory: "fees"},
			},
			Similarity: 0.82,
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/search", bytes.NewBufferString(`{"query":"service fee"}`))
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "embedding")

	var got KnowledgeSearchResponse
	decodeData(t, w, &got)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "kozi-fees", got.Results[0].ID)
	assert.Equal(t, "fees", got.Results[0].Metadata[domain.MetaCategory])
	assert.InDelta(t, 0.82, got.Results[0].Similarity, 1e-9)
}

func TestKnowledgeHandler_Search_ClampsLimit(t *testing.T) {
	svc := new(MockKnowledgeService)
	svc.On("Search", mock.Anything, "cv", maxSearchLimit).Return([]domain.SearchResult{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/search", bytes.NewBufferString(`{"query":"cv","limit":500}`))
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got KnowledgeSearchResponse
	decodeData(t, w, &got)
	assert.Empty(t, got.Results)
	assert.Equal(t, 0, got.Count)
	svc.AssertExpectations(t)
}

func TestKnowledgeHandler_Search_MissingQuery(t *testing.T) {
	svc := new(MockKnowledgeService)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/search", bytes.NewBufferString(`{"query":"  "}`))
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestKnowledgeHandler_Search_EmbeddingsNotConfigured(t *testing.T) {
	svc := new(MockKnowledgeService)
	svc.On("Search", mock.Anything, "cv", defaultSearchLimit).Return(nil, domain.ErrEmbeddingsNotConfigured)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/search", bytes.NewBufferString(`{"query":"cv"}`))
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Search(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "embedding provider not configured")
}

func TestKnowledgeHandler_Reload(t *testing.T) {
	svc := new(MockKnowledgeService)
	svc.On("Reload", mock.Anything).Return(&service.LoadSummary{SeedDocuments: 40, LocalChunks: 3, Total: 43}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/reload", nil)
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Reload(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got service.LoadSummary
	decodeData(t, w, &got)
	assert.Equal(t, 43, got.Total)
}

func TestKnowledgeHandler_Reload_Error(t *testing.T) {
	svc := new(MockKnowledgeService)
	svc.On("Reload", mock.Anything).Return(nil, domain.ErrEmbeddingsNotConfigured)

	req := httptest.NewRequest(http.MethodPost, "/admin/knowledge/reload", nil)
	w := httptest.NewRecorder()

	NewKnowledgeHandler(svc).Reload(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
