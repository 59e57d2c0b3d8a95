// Package telemetry records console activity: requests, tool use and errors.
// Events are kept in memory for the live view and optionally persisted.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"nansc/internal/logging"
	"nansc/internal/store"
)

// EventType classifies a telemetry event.
type EventType string

const (
	EventRequest EventType = "REQUEST"
	EventToolUse EventType = "TOOL_USE"
	EventError   EventType = "ERROR"
	EventInfo    EventType = "INFO"
)

// DefaultLogLines is how many events the log view shows.
const DefaultLogLines = 15

// MaxEvents bounds the in-memory history; older events live only in the sink.
const MaxEvents = 256

// Event is one recorded occurrence.
type Event struct {
	Time      time.Time `json:"time"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Details   string    `json:"details"`
}

// String formats the event as a log line.
func (e Event) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Time.Format("15:04:05"), e.Type, e.Details)
}

// Metrics are the console's running counters.
type Metrics struct {
	Requests  int `json:"requests"`
	ToolUsage int `json:"tool_usage"`
	Errors    int `json:"errors"`
}

// Sink persists events.
type Sink interface {
	RecordEvent(ctx context.Context, e store.Event) error
}

type contextKey struct{}

// Service collects events.
type Service struct {
	mu      sync.Mutex
	events  []Event
	metrics Metrics
	sink    Sink
	now     func() time.Time
}

// NewService creates a service. sink may be nil.
func NewService(sink Sink) *Service {
	return &Service{sink: sink, now: time.Now}
}

// Log records an event and updates the counters. Persistence failures are
// logged, never returned.
func (s *Service) Log(ctx context.Context, typ EventType, sessionID, details string) {
	e := Event{Time: s.now(), Type: typ, SessionID: sessionID, Details: details}

	s.mu.Lock()
	if len(s.events) >= MaxEvents {
		n := copy(s.events, s.events[len(s.events)-MaxEvents+1:])
		s.events = s.events[:n]
	}
	s.events = append(s.events, e)
	switch typ {
	case EventRequest:
		s.metrics.Requests++
	case EventToolUse:
		s.metrics.ToolUsage++
	case EventError:
		s.metrics.Errors++
	}
	sink := s.sink
	s.mu.Unlock()

	logging.Telemetry("%s", e.String())

	if sink != nil {
		err := sink.RecordEvent(ctx, store.Event{
			Kind:      string(typ),
			SessionID: sessionID,
			Message:   details,
			CreatedAt: e.Time,
		})
		if err != nil {
			logging.Get(logging.CategoryTelemetry).Warn("Failed to persist event: %v", err)
		}
	}
}

// Metrics returns a copy of the counters.
func (s *Service) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Events returns the last n events, oldest first. n <= 0 returns every
// retained event.
func (s *Service) Events(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && len(s.events) > n {
		start = len(s.events) - n
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// Logs renders the last DefaultLogLines events, one per line.
func (s *Service) Logs() string {
	return FormatEvents(s.Events(DefaultLogLines))
}

// Clear drops in-memory events. Counters are kept.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// FormatEvents renders events one per line.
func FormatEvents(events []Event) string {
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// FromStore converts persisted events.
func FromStore(events []store.Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = Event{Time: e.CreatedAt, Type: EventType(e.Kind), SessionID: e.SessionID, Details: e.Message}
	}
	return out
}

// MetricsFromCounts builds counters from per-kind totals.
func MetricsFromCounts(counts map[string]int) Metrics {
	return Metrics{
		Requests:  counts[string(EventRequest)],
		ToolUsage: counts[string(EventToolUse)],
		Errors:    counts[string(EventError)],
	}
}

// NewContext returns a new context carrying the service.
func NewContext(ctx context.Context, s *Service) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves the service from the context, or nil.
func FromContext(ctx context.Context) *Service {
	s, _ := ctx.Value(contextKey{}).(*Service)
	return s
}
