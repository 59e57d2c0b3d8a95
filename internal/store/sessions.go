package store

import (
	"context"
	"fmt"
	"time"

	"nansc/internal/logging"
)

// =============================================================================
// SESSION HISTORY
// =============================================================================

// Turn is one message in a conversation.
type Turn struct {
	SessionID string
	Role      string // user, assistant
	Content   string
	CreatedAt time.Time
}

// SessionInfo summarizes a stored session.
type SessionInfo struct {
	ID        string
	Turns     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendTurn adds a turn to a session, creating the session on first use.
func (s *Store) AppendTurn(ctx context.Context, t Turn) error {
	if t.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	ts := t.CreatedAt.UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		t.SessionID, ts, ts,
	); err != nil {
		logging.StoreError("Failed to upsert session %s: %v", t.SessionID, err)
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO session_turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		t.SessionID, t.Role, t.Content, ts,
	); err != nil {
		logging.StoreError("Failed to append turn to %s: %v", t.SessionID, err)
		return fmt.Errorf("append turn: %w", err)
	}
	return tx.Commit()
}

// LoadTurns returns a session's turns in chronological order. A positive
// limit keeps only the most recent turns.
func (s *Store) LoadTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT session_id, role, content, created_at FROM (
		SELECT id, session_id, role, content, created_at FROM session_turns
		WHERE session_id = ? ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		var ts int64
		if err := rows.Scan(&t.SessionID, &t.Role, &t.Content, &ts); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(0, ts)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListSessions returns all sessions, most recently active first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.created_at, s.updated_at, COUNT(t.id)
		 FROM sessions s LEFT JOIN session_turns t ON t.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC, s.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var si SessionInfo
		var created, updated int64
		if err := rows.Scan(&si.ID, &created, &updated, &si.Turns); err != nil {
			return nil, err
		}
		si.CreatedAt = time.Unix(0, created)
		si.UpdatedAt = time.Unix(0, updated)
		out = append(out, si)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its turns. It reports whether the
// session existed.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_turns WHERE session_id = ?", sessionID); err != nil {
		return false, fmt.Errorf("delete turns: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	logging.StoreDebug("DeleteSession %s existed=%v", sessionID, n > 0)
	return n > 0, nil
}
