// Package usage records model token consumption per model, operation and
// session, persisted as JSON next to the console database.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nansc/internal/logging"
)

// Operations reported by the model client.
const (
	OpChat     = "chat"
	OpTools    = "tools"
	OpDocument = "document"
)

// saveDelay coalesces bursts of Track calls into one write.
const saveDelay = 5 * time.Second

type contextKey struct{}
type sessionKey struct{}

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu       sync.Mutex
	data     UsageData
	filePath string
	timer    *time.Timer
}

// NewTracker creates a tracker persisting to <dir>/usage.json. A corrupt
// file is logged and replaced by empty counters.
func NewTracker(dir string) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}

	t := &Tracker{
		filePath: filepath.Join(dir, "usage.json"),
		data:     UsageData{Version: "1.0"},
	}
	if err := t.Load(); err != nil {
		logging.Get(logging.CategoryAPI).Warn("Ignoring unreadable usage file %s: %v", t.filePath, err)
		t.data = UsageData{Version: "1.0"}
	}
	t.data.Aggregate.init()
	return t, nil
}

func (a *AggregatedStats) init() {
	if a.ByModel == nil {
		a.ByModel = make(map[string]TokenCounts)
	}
	if a.ByOperation == nil {
		a.ByOperation = make(map[string]TokenCounts)
	}
	if a.BySession == nil {
		a.BySession = make(map[string]TokenCounts)
	}
}

// Path returns the persistence file.
func (t *Tracker) Path() string {
	return t.filePath
}

// Load reads the usage data from disk. A missing file is not an error.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &t.data)
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records one model response. The session comes from ctx.
func (t *Tracker) Track(ctx context.Context, model string, input, output int, operation string) {
	sessionID := SessionFromContext(ctx)
	if sessionID == "" {
		sessionID = "unknown"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	agg := &t.data.Aggregate
	agg.Total.Add(input, output)
	agg.Requests++
	addToMap(agg.ByModel, model, input, output)
	addToMap(agg.ByOperation, operation, input, output)
	addToMap(agg.BySession, sessionID, input, output)

	if t.timer == nil {
		t.timer = time.AfterFunc(saveDelay, t.flush)
	}
}

func (t *Tracker) flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = nil
	if err := t.saveLocked(); err != nil {
		logging.Get(logging.CategoryAPI).Warn("Failed to save usage: %v", err)
	}
}

// Close cancels a pending delayed save and writes the data now.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	return t.saveLocked()
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByOperation = copyTokenCountsMap(stats.ByOperation)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}

// WithSession tags ctx with the session whose turn is running.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session set by WithSession, or "".
func SessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey{}).(string)
	return s
}
