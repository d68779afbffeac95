// Package transcript archives the chat messages shown to each client
// session.
package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/db"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/render"
)

// Entry is one archived chat message.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Role      llm.Role  `json:"role"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages persistence of chat transcripts.
type Store struct {
	db *db.DB
}

// NewStore creates a new transcript store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Append adds msg to the end of the session's transcript.
func (s *Store) Append(ctx context.Context, sessionID string, msg advisor.ChatMessage) (*Entry, error) {
	e := Entry{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      msg.Role,
		Text:      msg.Text,
		HTML:      msg.HTML,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO chat_transcripts (id, session_id, seq, role, content, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_transcripts WHERE session_id = ?), ?, ?, ?)
		 RETURNING seq`,
		e.ID, e.SessionID, e.SessionID, string(e.Role), e.Text, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return nil, fmt.Errorf("inserting transcript entry: %w", err)
	}
	return &e, nil
}

// List returns the session's transcript in display order.
func (s *Store) List(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seq, role, content, created_at
		 FROM chat_transcripts WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var role string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &role, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transcript entry: %w", err)
		}
		e.Role = llm.Role(role)
		e.HTML = render.Markdown(e.Text)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes the session's transcript.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_transcripts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	return nil
}

// Recorder returns an advisor.Recorder that appends to sessionID.
func (s *Store) Recorder(sessionID string) advisor.Recorder {
	return sessionRecorder{store: s, sessionID: sessionID}
}

type sessionRecorder struct {
	store     *Store
	sessionID string
}

func (r sessionRecorder) Record(ctx context.Context, msg advisor.ChatMessage) error {
	_, err := r.store.Append(ctx, r.sessionID, msg)
	return err
}
