package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	for _, table := range []string{"chunks", "sessions", "session_turns", "telemetry_events"} {
		count, ok := stats[table]
		assert.True(t, ok, "stats missing table %s", table)
		assert.Zero(t, count)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nansc.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
	assert.FileExists(t, path)
}

func TestStoreChunkDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := Chunk{Source: "manual.md", Hash: "h1", Content: "AMHS gateway", Embedding: []float32{1, 0}}
	inserted, err := s.StoreChunk(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.StoreChunk(ctx, c)
	require.NoError(t, err)
	assert.False(t, inserted)

	has, err := s.HasChunk(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, has)

	n, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.StoreChunk(ctx, Chunk{Content: "no hash"})
	assert.Error(t, err)
}

func TestSearchChunksOrdersByDistance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		{Source: "a.md", Hash: "a", Content: "north", Embedding: []float32{0, 1}},
		{Source: "a.md", Hash: "b", Ordinal: 1, Content: "east", Embedding: []float32{1, 0}},
		{Source: "b.md", Hash: "c", Content: "north-east", Embedding: []float32{1, 1}},
		{Source: "b.md", Hash: "d", Ordinal: 1, Content: "three dims", Embedding: []float32{1, 0, 0}},
		{Source: "b.md", Hash: "e", Ordinal: 2, Content: "unembedded"},
	}
	for _, c := range chunks {
		_, err := s.StoreChunk(ctx, c)
		require.NoError(t, err)
	}

	hits, err := s.SearchChunks(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].Content)
	assert.Equal(t, "north-east", hits[1].Content)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	all, err := s.SearchChunks(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "mismatched and missing embeddings are skipped")

	_, err = s.SearchChunks(ctx, nil, 3)
	assert.Error(t, err)
}

func TestKeywordSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, content := range []string{
		"The AMHS transition procedure requires supervisor approval.",
		"Routine AFTN maintenance window.",
		"AMHS procedure for message recovery.",
	} {
		_, err := s.StoreChunk(ctx, Chunk{Source: "ops.txt", Ordinal: i, Hash: content, Content: content})
		require.NoError(t, err)
	}

	hits, err := s.KeywordSearch(ctx, "AMHS transition procedure", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Ordinal)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, 2, hits[1].Ordinal)

	hits, err = s.KeywordSearch(ctx, "a an", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestKeywordSearchTreatsWildcardsLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, content := range []string{
		"Circuit load at 100% during the exercise.",
		"Circuit load at 1000 messages per hour.",
		"Queue amhs_out is drained nightly.",
		"Queue amhsXout is a typo.",
	} {
		_, err := s.StoreChunk(ctx, Chunk{Source: "ops.txt", Ordinal: i, Hash: content, Content: content})
		require.NoError(t, err)
	}

	hits, err := s.KeywordSearch(ctx, "100%", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Ordinal)

	hits, err = s.KeywordSearch(ctx, "amhs_out", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Ordinal)
}

func TestSourcesAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, src := range []string{"b.md", "a.md", "b.md"} {
		_, err := s.StoreChunk(ctx, Chunk{Source: src, Ordinal: i, Hash: string(rune('x' + i)), Content: "c"})
		require.NoError(t, err)
	}

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SourceInfo{{Source: "a.md", Chunks: 1}, {Source: "b.md", Chunks: 2}}, sources)

	removed, err := s.DeleteSource(ctx, "b.md")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	n, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReplaceSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, h := range []string{"old1", "old2"} {
		_, err := s.StoreChunk(ctx, Chunk{Source: "ops.md", Ordinal: i, Hash: h, Content: "old"})
		require.NoError(t, err)
	}
	_, err := s.StoreChunk(ctx, Chunk{Source: "other.md", Hash: "shared", Content: "shared"})
	require.NoError(t, err)

	stored, err := s.ReplaceSource(ctx, "ops.md", []Chunk{
		{Ordinal: 0, Hash: "new1", Content: "new"},
		{Ordinal: 1, Hash: "shared", Content: "shared"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SourceInfo{{Source: "ops.md", Chunks: 1}, {Source: "other.md", Chunks: 1}}, sources)

	_, err = s.ReplaceSource(ctx, "ops.md", []Chunk{{Content: "no hash"}})
	require.Error(t, err)
	has, err := s.HasChunk(ctx, "new1")
	require.NoError(t, err)
	assert.True(t, has, "failed replace rolls back")
}

func TestSessionTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendTurn(ctx, Turn{SessionID: "s1", Role: "user", Content: "hello", CreatedAt: base}))
	require.NoError(t, s.AppendTurn(ctx, Turn{SessionID: "s1", Role: "assistant", Content: "hi", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, s.AppendTurn(ctx, Turn{SessionID: "s2", Role: "user", Content: "HECA", CreatedAt: base.Add(2 * time.Second)}))
	require.NoError(t, s.AppendTurn(ctx, Turn{SessionID: "s1", Role: "user", Content: "again", CreatedAt: base.Add(3 * time.Second)}))

	turns, err := s.LoadTurns(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "again", turns[2].Content)
	assert.True(t, turns[1].CreatedAt.Equal(base.Add(time.Second)))

	last, err := s.LoadTurns(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "hi", last[0].Content)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, 3, sessions[0].Turns)
	assert.True(t, sessions[0].CreatedAt.Equal(base))
	assert.Equal(t, "s2", sessions[1].ID)

	existed, err := s.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, existed)

	turns, err = s.LoadTurns(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)

	assert.Error(t, s.AppendTurn(ctx, Turn{Role: "user"}))
}

func TestEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		kind := "REQUEST"
		if i%5 == 0 {
			kind = "ERROR"
		}
		require.NoError(t, s.RecordEvent(ctx, Event{Kind: kind, Message: string(rune('a' + i))}))
	}

	recent, err := s.RecentEvents(ctx, 15)
	require.NoError(t, err)
	require.Len(t, recent, 15)
	assert.Equal(t, "f", recent[0].Message)
	assert.Equal(t, "t", recent[14].Message)

	counts, err := s.EventCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"REQUEST": 16, "ERROR": 4}, counts)
}

func TestCosineDistance(t *testing.T) {
	d, err := cosineDistance([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	d, err = cosineDistance([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1, d, 1e-9)

	d, err = cosineDistance(nil, []float32{1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, d)

	_, err = cosineDistance([]float32{1}, []float32{1, 2})
	assert.Error(t, err)

	v := []float32{0.25, -3, 7.5}
	back, err := decodeVector(encodeVector(v))
	require.NoError(t, err)
	assert.Equal(t, v, back)
}
