package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/pagination"
	"github.com/oklog/ulid/v2"
)

const (
	DefaultHistoryPageSize = 50
	MaxHistoryPageSize     = 200
)

// ChatRepositoryInterface persists chat sessions and messages.
type ChatRepositoryInterface interface {
	CreateSession(ctx context.Context, s *domain.ChatSession) error
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)
	MergeContext(ctx context.Context, id string, updates map[string]any) error
	EndSession(ctx context.Context, id string, at time.Time) error
	AddMessage(ctx context.Context, m *domain.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string, limit int, cursor *pagination.Cursor) ([]*domain.ChatMessage, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)
}

// MessageProcessor produces the assistant reply for one admin message.
type MessageProcessor interface {
	ProcessAdminMessage(ctx context.Context, message, sessionID, userID string) domain.Reply
}

// SessionIDGenerator creates chat session identifiers.
type SessionIDGenerator interface {
	NewSessionID() string
}

// ULIDSessionIDs generates admin_<ulid> identifiers.
type ULIDSessionIDs struct{}

func (ULIDSessionIDs) NewSessionID() string {
	return domain.SessionIDPrefix + strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())
}

type StartSessionResult struct {
	SessionID string           `json:"session_id"`
	Message   string           `json:"message"`
	Type      domain.ReplyType `json:"type"`
}

type HistoryPage struct {
	SessionID string                `json:"session_id"`
	Messages  []*domain.ChatMessage `json:"messages"`
	Cursor    string                `json:"cursor,omitempty"`
	HasMore   bool                  `json:"has_more"`
}

// ChatService manages admin chat sessions around the message processor.
type ChatService struct {
	repo      ChatRepositoryInterface
	txRunner  TxRunner
	processor MessageProcessor
	ids       SessionIDGenerator
	logger    *slog.Logger
	now       func() time.Time
}

func NewChatService(repo ChatRepositoryInterface, txRunner TxRunner, processor MessageProcessor, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		repo:      repo,
		txRunner:  txRunner,
		processor: processor,
		ids:       ULIDSessionIDs{},
		logger:    logger.With("component", "chat"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// StartSession creates a session and stores the welcome message with it.
func (s *ChatService) StartSession(ctx context.Context, userID, botType string) (*StartSessionResult, error) {
	now := s.now()
	session, err := domain.NewChatSession(s.ids.NewSessionID(), userID, botType, now)
	if err != nil {
		return nil, err
	}

	welcome := &domain.ChatMessage{
		SessionID: session.ID,
		Message:   WelcomeMessage,
		Sender:    domain.SenderAssistant,
		Type:      domain.ReplyTypeText,
		CreatedAt: now,
	}

	create := func(repo ChatRepositoryInterface) error {
		if err := repo.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		if err := repo.AddMessage(ctx, welcome); err != nil {
			return fmt.Errorf("failed to store welcome message: %w", err)
		}
		return nil
	}

	if s.txRunner != nil {
		err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error { return create(repos.Chat()) })
	} else {
		err = create(s.repo)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat session started", "session_id", session.ID, "user_id", userID, "bot_type", session.BotType)
	return &StartSessionResult{SessionID: session.ID, Message: WelcomeMessage, Type: domain.ReplyTypeText}, nil
}

// SendMessage stores the admin message, processes it and stores the reply.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, userID, message string) (domain.Reply, error) {
	if sessionID == "" {
		return domain.Reply{}, fmt.Errorf("session_id: %w", domain.ErrMissingRequiredField)
	}
	if strings.TrimSpace(message) == "" {
		return domain.Reply{}, domain.ErrEmptyMessage
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, err
	}
	if session.IsEnded() {
		return domain.Reply{}, domain.ErrSessionEnded
	}
	if userID == "" {
		userID = session.UserID
	}

	userMsg := &domain.ChatMessage{
		SessionID: sessionID,
		Message:   message,
		Sender:    domain.SenderUser,
		Type:      domain.ReplyTypeText,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddMessage(ctx, userMsg); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to store message: %w", err)
	}

	reply := s.processor.ProcessAdminMessage(ctx, message, sessionID, userID)

	assistantMsg := &domain.ChatMessage{
		SessionID: sessionID,
		Message:   reply.Message,
		Sender:    domain.SenderAssistant,
		Type:      reply.Type,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddMessage(ctx, assistantMsg); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to store reply: %w", err)
	}

	return reply, nil
}

// History returns one page of the session's messages in chronological order.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int, cursor string) (*HistoryPage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id: %w", domain.ErrMissingRequiredField)
	}
	if limit <= 0 {
		limit = DefaultHistoryPageSize
	}
	if limit > MaxHistoryPageSize {
		limit = MaxHistoryPageSize
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, sessionID, limit+1, decoded)
	if err != nil {
		return nil, err
	}

	page := &HistoryPage{SessionID: sessionID, Messages: msgs}
	if len(msgs) > limit {
		page.Messages = msgs[:limit]
		page.HasMore = true
		page.Cursor = pagination.CreateNextCursor(page.Messages, limit,
			func(m *domain.ChatMessage) string { return strconv.FormatInt(m.ID, 10) },
			func(m *domain.ChatMessage) time.Time { return m.CreatedAt },
		)
	}
	if page.Messages == nil {
		page.Messages = []*domain.ChatMessage{}
	}
	return page, nil
}

// EndSession marks the session as ended.
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id: %w", domain.ErrMissingRequiredField)
	}
	if err := s.repo.EndSession(ctx, sessionID, s.now()); err != nil {
		return err
	}
	s.logger.Info("chat session ended", "session_id", sessionID)
	return nil
}
