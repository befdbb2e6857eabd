package service

import (
	"context"
	"io"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/mailer"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/openai"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/pagination"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockHRDataSource is a mock implementation of the HR client.
type MockHRDataSource struct {
	mock.Mock
}

func (m *MockHRDataSource) GetPayrollData(ctx context.Context, opts hrapi.FetchOptions) ([]domain.PayrollRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayrollRecord), args.Error(1)
}

func (m *MockHRDataSource) GetAllJobSeekers(ctx context.Context, opts hrapi.FetchOptions) ([]domain.JobSeeker, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobSeeker), args.Error(1)
}

func (m *MockHRDataSource) GetIncompleteProfiles(ctx context.Context, opts hrapi.FetchOptions) ([]domain.IncompleteProfile, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncompleteProfile), args.Error(1)
}

func (m *MockHRDataSource) GetAllJobs(ctx context.Context, opts hrapi.FetchOptions) ([]domain.Job, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

// MockLocalData is a mock implementation of the local reporting repository.
type MockLocalData struct {
	mock.Mock
}

func (m *MockLocalData) PendingPaymentSchedules(ctx context.Context, limit int) ([]domain.PaymentSchedule, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentSchedule), args.Error(1)
}

func (m *MockLocalData) UpcomingPayments(ctx context.Context, limit int) ([]domain.PaymentSchedule, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentSchedule), args.Error(1)
}

func (m *MockLocalData) OverdueSummary(ctx context.Context) (domain.OverdueSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.OverdueSummary), args.Error(1)
}

func (m *MockLocalData) EmployeeStats(ctx context.Context) (domain.EmployeeStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.EmployeeStats), args.Error(1)
}

func (m *MockLocalData) QueryEmployees(ctx context.Context, f domain.EmployeeFilter) (*domain.EmployeeQueryResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeQueryResult), args.Error(1)
}

func (m *MockLocalData) QueryEmployers(ctx context.Context, f domain.EmployerFilter) (*domain.EmployerQueryResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployerQueryResult), args.Error(1)
}

func (m *MockLocalData) OverviewStats(ctx context.Context) (domain.OverviewStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.OverviewStats), args.Error(1)
}

func (m *MockLocalData) PendingTasks(ctx context.Context) (domain.PendingTasks, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PendingTasks), args.Error(1)
}

func (m *MockLocalData) EmailSummary(ctx context.Context, since time.Time) ([]domain.EmailCategorySummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailCategorySummary), args.Error(1)
}

func (m *MockLocalData) PendingPriorities(ctx context.Context) ([]domain.PriorityCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PriorityCount), args.Error(1)
}

func (m *MockLocalData) PendingEmails(ctx context.Context, limit int) ([]domain.PendingEmail, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingEmail), args.Error(1)
}

func (m *MockLocalData) AnalyticsMetrics(ctx context.Context, periodType, periodValue string) ([]domain.AnalyticsMetric, error) {
	args := m.Called(ctx, periodType, periodValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalyticsMetric), args.Error(1)
}

func (m *MockLocalData) AnalyticsTrends(ctx context.Context, periodType string) ([]domain.AnalyticsTrend, error) {
	args := m.Called(ctx, periodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalyticsTrend), args.Error(1)
}

// MockReminderSender is a mock implementation of ReminderSender
type MockReminderSender struct {
	mock.Mock
}

func (m *MockReminderSender) SendProfileReminder(ctx context.Context, r mailer.Recipient, completion int, missing []string) mailer.Result {
	args := m.Called(ctx, r, completion, missing)
	return args.Get(0).(mailer.Result)
}

// MockResponder is a mock implementation of ContextualResponder
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) GenerateContextualResponse(ctx context.Context, userMessage string, history []openai.ChatTurn, userCtx UserContext) (string, error) {
	args := m.Called(ctx, userMessage, history, userCtx)
	return args.String(0), args.Error(1)
}

// MockChatRepository is a mock implementation of ChatRepositoryInterface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateSession(ctx context.Context, s *domain.ChatSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockChatRepository) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatSession), args.Error(1)
}

func (m *MockChatRepository) MergeContext(ctx context.Context, id string, updates map[string]any) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockChatRepository) EndSession(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockChatRepository) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, sessionID string, limit int, cursor *pagination.Cursor) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, sessionID, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

// MockMessageProcessor is a mock implementation of MessageProcessor
type MockMessageProcessor struct {
	mock.Mock
}

func (m *MockMessageProcessor) ProcessAdminMessage(ctx context.Context, message, sessionID, userID string) domain.Reply {
	args := m.Called(ctx, message, sessionID, userID)
	return args.Get(0).(domain.Reply)
}

// MockKnowledgeSearcher is a mock implementation of KnowledgeSearcher
type MockKnowledgeSearcher struct {
	mock.Mock
}

func (m *MockKnowledgeSearcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

// MockChatCompleter is a mock implementation of ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, system string, turns []openai.ChatTurn, temperature float32) (string, error) {
	args := m.Called(ctx, system, turns, temperature)
	return args.String(0), args.Error(1)
}

// MockDocumentIndexer is a mock implementation of DocumentIndexer
type MockDocumentIndexer struct {
	mock.Mock
}

func (m *MockDocumentIndexer) AddDocument(ctx context.Context, id, text string, metadata map[string]string) error {
	args := m.Called(ctx, id, text, metadata)
	return args.Error(0)
}

func (m *MockDocumentIndexer) IndexFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	args := m.Called(ctx, path, metadata)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentIndexer) IndexReader(ctx context.Context, name string, r io.ReaderAt, size int64, metadata map[string]string) (int, error) {
	args := m.Called(ctx, name, r, size, metadata)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentIndexer) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockDocumentIndexer) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentIndexer) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockObjectSource is a mock implementation of ObjectSource
type MockObjectSource struct {
	mock.Mock
}

func (m *MockObjectSource) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *MockObjectSource) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSessionCounter is a mock implementation of SessionCounter
type MockSessionCounter struct {
	mock.Mock
}

func (m *MockSessionCounter) CountSessionsSince(ctx context.Context, botType string, since time.Time) (int, error) {
	args := m.Called(ctx, botType, since)
	return args.Int(0), args.Error(1)
}
