package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api/handlers"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdminLookup struct {
	mock.Mock
}

func (m *MockAdminLookup) GetActiveAdmin(ctx context.Context, userID string) (*domain.AdminUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockAdminLookup) TouchLogin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) StartSession(ctx context.Context, userID, botType string) (*service.StartSessionResult, error) {
	args := m.Called(ctx, userID, botType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StartSessionResult), args.Error(1)
}

func (m *MockChatService) SendMessage(ctx context.Context, sessionID, userID, message string) (domain.Reply, error) {
	args := m.Called(ctx, sessionID, userID, message)
	return args.Get(0).(domain.Reply), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, sessionID string, limit int, cursor string) (*service.HistoryPage, error) {
	args := m.Called(ctx, sessionID, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryPage), args.Error(1)
}

func (m *MockChatService) EndSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockHRClient struct {
	mock.Mock
}

func (m *MockHRClient) Status() hrapi.Status {
	args := m.Called()
	return args.Get(0).(hrapi.Status)
}

func (m *MockHRClient) TestResponseTimes(ctx context.Context) []hrapi.ResponseTime {
	args := m.Called(ctx)
	return args.Get(0).([]hrapi.ResponseTime)
}

func (m *MockHRClient) ClearCache(endpoint string) {
	m.Called(endpoint)
}

func (m *MockHRClient) CacheSize() int {
	args := m.Called()
	return args.Int(0)
}

func setupRouter() (http.Handler, *MockAdminLookup, *MockChatService, *MockHRClient) {
	lookup := new(MockAdminLookup)
	chatSvc := new(MockChatService)
	hrClient := new(MockHRClient)

	cfg := RouterConfig{
		AdminLookup:      lookup,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		HealthHandler:    handlers.NewHealthHandler(nil, nil),
		ChatHandler:      handlers.NewChatHandler(chatSvc),
		AdminHandler:     handlers.NewAdminHandler(nil, nil),
		KnowledgeHandler: handlers.NewKnowledgeHandler(nil),
		HRHandler:        handlers.NewHRHandler(hrClient),
	}

	return NewRouter(cfg), lookup, chatSvc, hrClient
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
}

func TestRouter_ChatRoutes_NoAuthRequired(t *testing.T) {
	router, _, chatSvc, _ := setupRouter()

	chatSvc.On("StartSession", mock.Anything, "42", "").Return(&service.StartSessionResult{
		SessionID: "admin_01jq0test",
		Message:   service.WelcomeMessage,
		Type:      domain.ReplyTypeText,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewBufferString(`{"user_id":"42"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	chatSvc.AssertExpectations(t)
}

func TestRouter_ChatHistory_URLParam(t *testing.T) {
	router, _, chatSvc, _ := setupRouter()

	chatSvc.On("History", mock.Anything, "admin_abc", 5, "").Return(&service.HistoryPage{
		SessionID: "admin_abc",
		Messages:  []*domain.ChatMessage{},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/history/admin_abc?limit=5", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	chatSvc.AssertExpectations(t)
}

func TestRouter_AdminRoutes_RequireAuth(t *testing.T) {
	router, lookup, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/payment-reminders"},
		{http.MethodPost, "/admin/database/query"},
		{http.MethodPost, "/admin/gmail/process"},
		{http.MethodGet, "/admin/analytics"},
		{http.MethodGet, "/admin/dashboard"},
		{http.MethodPost, "/admin/knowledge/search"},
		{http.MethodPost, "/admin/knowledge/reload"},
		{http.MethodGet, "/admin/hr/status"},
		{http.MethodGet, "/admin/hr/response-times"},
		{http.MethodPost, "/admin/hr/cache/clear"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	lookup.AssertNotCalled(t, "GetActiveAdmin", mock.Anything, mock.Anything)
}

func TestRouter_AdminRoutes_NonAdminForbidden(t *testing.T) {
	router, lookup, _, hrClient := setupRouter()

	lookup.On("GetActiveAdmin", mock.Anything, "17").Return(nil, domain.ErrAdminNotFound)

	req := httptest.NewRequest(http.MethodGet, "/admin/hr/status", nil)
	req.Header.Set("X-User-ID", "17")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	hrClient.AssertNotCalled(t, "Status")
}

func TestRouter_AdminRoutes_WithAdmin(t *testing.T) {
	router, lookup, _, hrClient := setupRouter()

	lookup.On("GetActiveAdmin", mock.Anything, "1").Return(&domain.AdminUser{UserID: "1", UserType: "admin"}, nil)
	lookup.On("TouchLogin", mock.Anything, "1").Return(nil)
	hrClient.On("Status").Return(hrapi.Status{BaseURL: "https://api.kozi.rw", TokenFresh: true})

	req := httptest.NewRequest(http.MethodGet, "/admin/hr/status?user_id=1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://api.kozi.rw")
	lookup.AssertExpectations(t)
	hrClient.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/kozi/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "is not a valid endpoint")
}
