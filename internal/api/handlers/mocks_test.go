package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) PaymentReminders(ctx context.Context) (*service.PaymentRemindersResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentRemindersResult), args.Error(1)
}

func (m *MockAdminService) QueryDatabase(ctx context.Context, q service.DatabaseQuery) (any, error) {
	args := m.Called(ctx, q)
	return args.Get(0), args.Error(1)
}

func (m *MockAdminService) ProcessEmail(ctx context.Context, action string) (any, error) {
	args := m.Called(ctx, action)
	return args.Get(0), args.Error(1)
}

func (m *MockAdminService) Analytics(ctx context.Context, period string) (*service.AnalyticsResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyticsResult), args.Error(1)
}

type MockDashboardProvider struct {
	mock.Mock
}

func (m *MockDashboardProvider) Snapshot(ctx context.Context) *service.DashboardSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(*service.DashboardSnapshot)
}

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockKnowledgeService) Reload(ctx context.Context) (*service.LoadSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoadSummary), args.Error(1)
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

// decodeData unwraps the {"data": ...} envelope into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}
