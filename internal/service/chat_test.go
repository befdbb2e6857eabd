package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedSessionIDs string

func (f fixedSessionIDs) NewSessionID() string { return string(f) }

var chatNow = time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC)

func newTestChatService(repo ChatRepositoryInterface, tx TxRunner, processor MessageProcessor) *ChatService {
	s := NewChatService(repo, tx, processor, nil)
	s.ids = fixedSessionIDs("admin_01jq0test")
	s.now = func() time.Time { return chatNow }
	return s
}

func TestULIDSessionIDs_NewSessionID(t *testing.T) {
	id := ULIDSessionIDs{}.NewSessionID()

	assert.True(t, strings.HasPrefix(id, domain.SessionIDPrefix))
	assert.Len(t, id, len(domain.SessionIDPrefix)+26)
	assert.Equal(t, strings.ToLower(id), id)
	assert.NotEqual(t, id, ULIDSessionIDs{}.NewSessionID())
}

func TestChatService_StartSession_InTransaction(t *testing.T) {
	txRepo := new(MockChatRepository)
	txRepo.On("CreateSession", mock.Anything, mock.MatchedBy(func(s *domain.ChatSession) bool {
		return s.ID == "admin_01jq0test" && s.UserID == "7" && s.BotType == domain.BotTypeAdmin
	})).Return(nil)
	txRepo.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *domain.ChatMessage) bool {
		return m.SessionID == "admin_01jq0test" && m.Sender == domain.SenderAssistant && m.Message == WelcomeMessage
	})).Return(nil)

	runner := &testTxRunner{repos: &testTxRepos{chat: txRepo}}
	outer := new(MockChatRepository)

	s := newTestChatService(outer, runner, nil)
	res, err := s.StartSession(context.Background(), "7", "")

	require.NoError(t, err)
	assert.True(t, runner.called)
	assert.Equal(t, "admin_01jq0test", res.SessionID)
	assert.Equal(t, WelcomeMessage, res.Message)
	assert.Equal(t, domain.ReplyTypeText, res.Type)
	txRepo.AssertExpectations(t)
	outer.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestChatService_StartSession_WithoutTransaction(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("CreateSession", mock.Anything, mock.Anything).Return(nil)
	repo.On("AddMessage", mock.Anything, mock.Anything).Return(nil)

	s := newTestChatService(repo, nil, nil)
	_, err := s.StartSession(context.Background(), "7", domain.BotTypeAdmin)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestChatService_StartSession_MissingUser(t *testing.T) {
	repo := new(MockChatRepository)

	s := newTestChatService(repo, nil, nil)
	_, err := s.StartSession(context.Background(), "", "")

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestChatService_StartSession_TransactionFails(t *testing.T) {
	runner := &testTxRunner{err: errors.New("connection reset")}

	s := newTestChatService(new(MockChatRepository), runner, nil)
	res, err := s.StartSession(context.Background(), "7", "")

	assert.Nil(t, res)
	assert.EqualError(t, err, "connection reset")
}

func TestChatService_StartSession_WelcomeMessageFails(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("CreateSession", mock.Anything, mock.Anything).Return(nil)
	repo.On("AddMessage", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	s := newTestChatService(repo, nil, nil)
	_, err := s.StartSession(context.Background(), "7", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store welcome message")
}

func TestChatService_SendMessage_Validation(t *testing.T) {
	repo := new(MockChatRepository)
	s := newTestChatService(repo, nil, new(MockMessageProcessor))

	_, err := s.SendMessage(context.Background(), "", "7", "hello")
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	_, err = s.SendMessage(context.Background(), "admin_1", "7", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	repo.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_SessionNotFound(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_missing").Return(nil, domain.ErrSessionNotFound)

	s := newTestChatService(repo, nil, new(MockMessageProcessor))
	_, err := s.SendMessage(context.Background(), "admin_missing", "7", "hello")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestChatService_SendMessage_EndedSession(t *testing.T) {
	ended := chatNow.Add(-time.Hour)
	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1", UserID: "7", EndedAt: &ended}, nil)

	processor := new(MockMessageProcessor)
	s := newTestChatService(repo, nil, processor)
	_, err := s.SendMessage(context.Background(), "admin_1", "7", "hello")

	assert.ErrorIs(t, err, domain.ErrSessionEnded)
	processor.AssertNotCalled(t, "ProcessAdminMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_PersistsBothSides(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1", UserID: "7"}, nil)
	repo.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *domain.ChatMessage) bool {
		return m.Sender == domain.SenderUser && m.Message == "Show payroll" && m.Type == domain.ReplyTypeText
	})).Return(nil).Once()
	repo.On("AddMessage", mock.Anything, mock.MatchedBy(func(m *domain.ChatMessage) bool {
		return m.Sender == domain.SenderAssistant && m.Type == domain.ReplyTypePaymentReminder
	})).Return(nil).Once()

	reply := domain.Reply{Message: "Payroll summary", Type: domain.ReplyTypePaymentReminder}
	processor := new(MockMessageProcessor)
	// user id falls back to the session owner
	processor.On("ProcessAdminMessage", mock.Anything, "Show payroll", "admin_1", "7").Return(reply)

	s := newTestChatService(repo, nil, processor)
	got, err := s.SendMessage(context.Background(), "admin_1", "", "Show payroll")

	require.NoError(t, err)
	assert.Equal(t, reply, got)
	repo.AssertExpectations(t)
	processor.AssertExpectations(t)
}

func TestChatService_SendMessage_StoreFails(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1", UserID: "7"}, nil)
	repo.On("AddMessage", mock.Anything, mock.Anything).Return(errors.New("db down"))

	processor := new(MockMessageProcessor)
	s := newTestChatService(repo, nil, processor)
	_, err := s.SendMessage(context.Background(), "admin_1", "7", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store message")
	processor.AssertNotCalled(t, "ProcessAdminMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func chatMessages(n int) []*domain.ChatMessage {
	msgs := make([]*domain.ChatMessage, n)
	for i := range msgs {
		msgs[i] = &domain.ChatMessage{
			ID:        int64(i + 1),
			SessionID: "admin_1",
			Message:   "msg",
			Sender:    domain.SenderUser,
			Type:      domain.ReplyTypeText,
			CreatedAt: chatNow.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

func TestChatService_History_HasMore(t *testing.T) {
	msgs := chatMessages(3)

	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1"}, nil)
	repo.On("ListMessages", mock.Anything, "admin_1", 3, (*pagination.Cursor)(nil)).Return(msgs, nil)

	s := newTestChatService(repo, nil, nil)
	page, err := s.History(context.Background(), "admin_1", 2, "")

	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, pagination.EncodeCursor("2", msgs[1].CreatedAt), page.Cursor)
}

func TestChatService_History_FollowsCursor(t *testing.T) {
	cursor := pagination.EncodeCursor("2", chatNow.Add(time.Minute))

	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1"}, nil)
	repo.On("ListMessages", mock.Anything, "admin_1", 3, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "2"
	})).Return(chatMessages(1), nil)

	s := newTestChatService(repo, nil, nil)
	page, err := s.History(context.Background(), "admin_1", 2, cursor)

	require.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestChatService_History_EmptyAndDefaults(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("GetSession", mock.Anything, "admin_1").Return(&domain.ChatSession{ID: "admin_1"}, nil)
	repo.On("ListMessages", mock.Anything, "admin_1", MaxHistoryPageSize+1, (*pagination.Cursor)(nil)).Return(nil, nil)

	s := newTestChatService(repo, nil, nil)
	page, err := s.History(context.Background(), "admin_1", 10000, "")

	require.NoError(t, err)
	assert.NotNil(t, page.Messages)
	assert.Empty(t, page.Messages)
}

func TestChatService_History_InvalidCursor(t *testing.T) {
	repo := new(MockChatRepository)

	s := newTestChatService(repo, nil, nil)
	_, err := s.History(context.Background(), "admin_1", 10, "%%%")

	assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
	repo.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
}

func TestChatService_EndSession(t *testing.T) {
	repo := new(MockChatRepository)
	repo.On("EndSession", mock.Anything, "admin_1", chatNow).Return(nil)

	s := newTestChatService(repo, nil, nil)

	require.NoError(t, s.EndSession(context.Background(), "admin_1"))
	assert.ErrorIs(t, s.EndSession(context.Background(), ""), domain.ErrMissingRequiredField)
	repo.AssertExpectations(t)
}
