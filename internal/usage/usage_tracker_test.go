package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestTracker_TrackAggregatesAndPersists(t *testing.T) {
	dir := t.TempDir()
	tracker, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	ctx := WithSession(context.Background(), "sess_1")
	tracker.Track(ctx, "gemini-2.5-flash", 10, 5, OpChat)
	tracker.Track(ctx, "gemini-2.5-flash", 2, 3, OpTools)
	tracker.Track(context.Background(), "gemini-2.5-pro", 1, 0, OpDocument)

	stats := tracker.Stats()
	if stats.Total.Input != 13 || stats.Total.Output != 8 || stats.Total.Total != 21 {
		t.Fatalf("Total=%+v, want input=13 output=8 total=21", stats.Total)
	}
	if stats.Requests != 3 {
		t.Fatalf("Requests=%d, want 3", stats.Requests)
	}
	if got := stats.ByModel["gemini-2.5-flash"]; got.Total != 20 {
		t.Fatalf("ByModel[flash]=%+v, want total=20", got)
	}
	if got := stats.ByOperation[OpChat]; got.Total != 15 {
		t.Fatalf("ByOperation[chat]=%+v, want total=15", got)
	}
	if got := stats.BySession["sess_1"]; got.Total != 20 {
		t.Fatalf("BySession[sess_1]=%+v, want total=20", got)
	}
	if got := stats.BySession["unknown"]; got.Total != 1 {
		t.Fatalf("BySession[unknown]=%+v, want total=1", got)
	}

	// Close flushes immediately instead of waiting for the delayed save.
	if err := tracker.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "usage.json"))
	if err != nil {
		t.Fatalf("read usage.json: %v", err)
	}
	var persisted UsageData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal usage.json: %v", err)
	}
	if persisted.Aggregate.Total.Total != 21 {
		t.Fatalf("persisted total=%d, want 21", persisted.Aggregate.Total.Total)
	}

	reloaded, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("NewTracker reload: %v", err)
	}
	if reloaded.Stats().BySession["sess_1"].Total != 20 {
		t.Fatal("reloaded tracker lost session counters")
	}
}

func TestTracker_StatsIsACopy(t *testing.T) {
	tracker, err := NewTracker(t.TempDir())
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	tracker.Track(context.Background(), "m", 1, 1, OpChat)
	stats := tracker.Stats()
	stats.ByModel["m"] = TokenCounts{}
	if tracker.Stats().ByModel["m"].Total != 2 {
		t.Fatal("Stats must not alias internal maps")
	}
	tracker.Close()
}

func TestTracker_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "usage.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	tracker, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	if tracker.Stats().Requests != 0 {
		t.Fatal("expected empty counters")
	}
	tracker.Track(context.Background(), "m", 1, 1, OpChat)
	tracker.Close()
}

func TestTracker_ContextHelpers(t *testing.T) {
	tracker, err := NewTracker(t.TempDir())
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	ctx := NewContext(context.Background(), tracker)
	if got := FromContext(ctx); got != tracker {
		t.Fatalf("FromContext mismatch")
	}
	if FromContext(context.Background()) != nil {
		t.Fatal("FromContext on a bare context should be nil")
	}
	if SessionFromContext(WithSession(ctx, "abc")) != "abc" {
		t.Fatal("session not carried")
	}
}
