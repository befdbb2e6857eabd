package domain

import (
	"fmt"
	"time"
)

// ReplyType classifies an assistant reply for the chat front end.
type ReplyType string

const (
	ReplyTypeText            ReplyType = "text"
	ReplyTypePaymentReminder ReplyType = "payment_reminder"
	ReplyTypeDatabaseQuery   ReplyType = "database_query"
	ReplyTypeEmailSummary    ReplyType = "email_summary"
	ReplyTypeAnalytics       ReplyType = "analytics"
)

// IsValid reports whether the reply type is one of the known values.
func (t ReplyType) IsValid() bool {
	switch t {
	case ReplyTypeText, ReplyTypePaymentReminder, ReplyTypeDatabaseQuery, ReplyTypeEmailSummary, ReplyTypeAnalytics:
		return true
	}
	return false
}

// ParseReplyType converts a stored value into a ReplyType. Empty values map to text.
func ParseReplyType(s string) (ReplyType, error) {
	if s == "" {
		return ReplyTypeText, nil
	}
	t := ReplyType(s)
	if !t.IsValid() {
		return "", ErrInvalidReplyType
	}
	return t, nil
}

// Reply is the structured answer produced for one admin message.
type Reply struct {
	Message string    `json:"message"`
	Type    ReplyType `json:"type"`
}

// TextReply builds a plain text reply.
func TextReply(message string) Reply {
	return Reply{Message: message, Type: ReplyTypeText}
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

const (
	BotTypeAdmin = "admin"

	// SessionIDPrefix prefixes every admin chat session identifier.
	SessionIDPrefix = "admin_"
)

// ChatSession is one admin conversation.
type ChatSession struct {
	ID        string
	UserID    string
	BotType   string
	Context   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
	EndedAt   *time.Time
}

// IsEnded reports whether the session has been closed.
func (s *ChatSession) IsEnded() bool {
	return s.EndedAt != nil
}

// ChatMessage is one entry of a session's ordered message log.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	Sender    Sender    `json:"sender"`
	Type      ReplyType `json:"type"`
	CreatedAt time.Time `json:"timestamp"`
}

// NewChatSession creates a ChatSession and validates required fields.
func NewChatSession(id, userID, botType string, now time.Time) (*ChatSession, error) {
	if id == "" {
		return nil, fmt.Errorf("session id: %w", ErrMissingRequiredField)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id: %w", ErrMissingRequiredField)
	}
	if botType == "" {
		botType = BotTypeAdmin
	}
	return &ChatSession{
		ID:        id,
		UserID:    userID,
		BotType:   botType,
		Context:   map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MergeContext copies updates into the session context, overwriting existing keys.
func (s *ChatSession) MergeContext(updates map[string]any) {
	if s.Context == nil {
		s.Context = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		s.Context[k] = v
	}
}
