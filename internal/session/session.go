// Package session manages conversation history per session id.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nansc/internal/logging"
	"nansc/internal/store"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// Info summarizes a session.
type Info struct {
	ID        string    `json:"id"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryStore persists turns.
type HistoryStore interface {
	AppendTurn(ctx context.Context, t store.Turn) error
	LoadTurns(ctx context.Context, sessionID string, limit int) ([]store.Turn, error)
	ListSessions(ctx context.Context) ([]store.SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is usable as a session id. Any non-blank id is
// accepted so operators can name sessions; generated ids are UUIDs.
func ValidID(id string) bool {
	return strings.TrimSpace(id) != "" && len(id) <= 128
}

// Manager reads and writes session history.
type Manager struct {
	store HistoryStore
}

// NewManager creates a manager over st.
func NewManager(st HistoryStore) *Manager {
	return &Manager{store: st}
}

// Append records a message.
func (m *Manager) Append(ctx context.Context, id, role, content string) error {
	if !ValidID(id) {
		return fmt.Errorf("invalid session id %q", id)
	}
	if err := m.store.AppendTurn(ctx, store.Turn{SessionID: id, Role: role, Content: content}); err != nil {
		logging.SessionError("Append to %s failed: %v", id, err)
		return err
	}
	logging.SessionDebug("Appended %s message to %s (%d chars)", role, id, len(content))
	return nil
}

// History returns a session's messages in order; limit > 0 keeps the most
// recent ones. An unknown session has no history.
func (m *Manager) History(ctx context.Context, id string, limit int) ([]Message, error) {
	turns, err := m.store.LoadTurns(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, len(turns))
	for i, t := range turns {
		out[i] = Message{Role: t.Role, Content: t.Content, Time: t.CreatedAt}
	}
	return out, nil
}

// List returns all sessions, most recently active first.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	sessions, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(sessions))
	for i, s := range sessions {
		out[i] = Info{ID: s.ID, Messages: s.Turns, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
	}
	return out, nil
}

// Reset deletes a session's history. It reports whether the session existed.
func (m *Manager) Reset(ctx context.Context, id string) (bool, error) {
	existed, err := m.store.DeleteSession(ctx, id)
	if err != nil {
		return false, err
	}
	logging.Session("Reset session %s (existed=%v)", id, existed)
	return existed, nil
}
