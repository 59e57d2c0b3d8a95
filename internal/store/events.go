package store

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// TELEMETRY EVENTS
// =============================================================================

// Event is a persisted telemetry record.
type Event struct {
	ID        int64
	Kind      string
	SessionID string
	Message   string
	Detail    string
	CreatedAt time.Time
}

// RecordEvent appends an event.
func (s *Store) RecordEvent(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO telemetry_events (kind, session_id, message, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		e.Kind, e.SessionID, e.Message, e.Detail, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit of the newest events, oldest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 15
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, COALESCE(session_id, ''), message, COALESCE(detail, ''), created_at FROM (
			SELECT * FROM telemetry_events ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.Kind, &e.SessionID, &e.Message, &e.Detail, &ts); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventCounts returns the number of events per kind.
func (s *Store) EventCounts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM telemetry_events GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("event counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
