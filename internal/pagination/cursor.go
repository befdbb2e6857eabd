// Package pagination encodes keyset cursors for chronological listings.
package pagination

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// Cursor is the position after which the next page starts.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

var ErrInvalidCursor = domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor format")

// EncodeCursor returns an opaque, URL-safe cursor for the given position.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// decodes to nil, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	lastID, ts, ok := strings.Cut(string(decoded), "|")
	if !ok || lastID == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: lastID, Timestamp: timestamp}, nil
}

// CreateNextCursor returns the cursor after the last of items, or "" when the
// page was not full.
func CreateNextCursor[T any](items []T, limit int, getID func(T) string, getTimestamp func(T) time.Time) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	lastItem := items[len(items)-1]
	return EncodeCursor(getID(lastItem), getTimestamp(lastItem))
}
