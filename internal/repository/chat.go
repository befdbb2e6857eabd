package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository persists admin chat sessions and their message logs.
type ChatRepository struct {
	db dbtx
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: pool}
}

func NewChatRepositoryWithTx(tx pgx.Tx) *ChatRepository {
	return &ChatRepository{db: tx}
}

func (r *ChatRepository) CreateSession(ctx context.Context, s *domain.ChatSession) error {
	contextJSON, err := json.Marshal(contextOrEmpty(s.Context))
	if err != nil {
		return fmt.Errorf("failed to encode session context: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO chat_sessions (session_id, user_id, bot_type, context, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.BotType, contextJSON, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *ChatRepository) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	var (
		s           domain.ChatSession
		contextJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT session_id, user_id, bot_type, context, created_at, updated_at, ended_at
		 FROM chat_sessions WHERE session_id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.BotType, &contextJSON, &s.CreatedAt, &s.UpdatedAt, &s.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	s.Context = map[string]any{}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &s.Context); err != nil {
			return nil, fmt.Errorf("failed to decode session context: %w", err)
		}
	}
	return &s, nil
}

// MergeContext shallow-merges updates into the stored session context.
func (r *ChatRepository) MergeContext(ctx context.Context, id string, updates map[string]any) error {
	updatesJSON, err := json.Marshal(contextOrEmpty(updates))
	if err != nil {
		return fmt.Errorf("failed to encode context update: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE chat_sessions SET context = context || $2::jsonb, updated_at = NOW() WHERE session_id = $1`,
		id, updatesJSON,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *ChatRepository) EndSession(ctx context.Context, id string, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE chat_sessions SET ended_at = $2, updated_at = $2 WHERE session_id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// AddMessage appends m to its session and sets m.ID.
func (r *ChatRepository) AddMessage(ctx context.Context, m *domain.ChatMessage) error {
	msgType := m.Type
	if msgType == "" {
		msgType = domain.ReplyTypeText
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_messages (session_id, message, sender, message_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		m.SessionID, m.Message, string(m.Sender), string(msgType), m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE chat_sessions SET updated_at = $2 WHERE session_id = $1`, m.SessionID, m.CreatedAt)
	return err
}

// ListMessages returns up to limit messages in chronological order, starting
// after cursor when one is given.
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string, limit int, cursor *pagination.Cursor) ([]*domain.ChatMessage, error) {
	if cursor == nil {
		return r.queryMessages(ctx,
			`SELECT id, session_id, message, sender, message_type, created_at
			 FROM chat_messages WHERE session_id = $1
			 ORDER BY created_at, id
			 LIMIT $2`,
			sessionID, limit,
		)
	}

	lastID, err := strconv.ParseInt(cursor.LastID, 10, 64)
	if err != nil {
		return nil, pagination.ErrInvalidCursor
	}
	return r.queryMessages(ctx,
		`SELECT id, session_id, message, sender, message_type, created_at
		 FROM chat_messages
		 WHERE session_id = $1 AND (created_at, id) > ($3::timestamptz, $4::bigint)
		 ORDER BY created_at, id
		 LIMIT $2`,
		sessionID, limit, cursor.Timestamp, lastID,
	)
}

// RecentMessages returns the last limit messages in chronological order.
func (r *ChatRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	msgs, err := r.queryMessages(ctx,
		`SELECT id, session_id, message, sender, message_type, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CountSessionsSince counts sessions of botType created at or after since.
func (r *ChatRepository) CountSessionsSince(ctx context.Context, botType string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE bot_type = $1 AND created_at >= $2`,
		botType, since,
	).Scan(&n)
	return n, err
}

func (r *ChatRepository) queryMessages(ctx context.Context, sql string, args ...any) ([]*domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var (
			m       domain.ChatMessage
			sender  string
			msgType string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Message, &sender, &msgType, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Sender = domain.Sender(sender)
		if t, err := domain.ParseReplyType(msgType); err == nil {
			m.Type = t
		} else {
			m.Type = domain.ReplyTypeText
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func contextOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
