package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"nansc/internal/logging"
)

// Chunk is one indexed piece of a knowledge-base document.
type Chunk struct {
	ID        int64
	Source    string
	Ordinal   int
	Hash      string
	Content   string
	Embedding []float32
}

// ScoredChunk is a search hit. Score is a similarity: higher is better.
type ScoredChunk struct {
	Chunk
	Score float64
}

// SourceInfo summarizes the chunks stored for one document.
type SourceInfo struct {
	Source string
	Chunks int
}

// StoreChunk inserts a chunk unless one with the same content hash exists.
// It reports whether a row was written.
func (s *Store) StoreChunk(ctx context.Context, c Chunk) (bool, error) {
	if c.Hash == "" {
		return false, fmt.Errorf("chunk hash is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (source, ordinal, content_hash, content, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO NOTHING`,
		c.Source, c.Ordinal, c.Hash, c.Content, encodeVector(c.Embedding), time.Now().UnixNano(),
	)
	if err != nil {
		logging.StoreError("Failed to store chunk %s#%d: %v", c.Source, c.Ordinal, err)
		return false, fmt.Errorf("store chunk: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	logging.StoreDebug("StoreChunk %s#%d hash=%s inserted=%v", c.Source, c.Ordinal, c.Hash, n > 0)
	return n > 0, nil
}

// HasChunk reports whether a chunk with the given content hash is stored.
func (s *Store) HasChunk(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE content_hash = ?", hash).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteSource removes every chunk of a document and returns how many rows
// went away.
func (s *Store) DeleteSource(ctx context.Context, source string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("delete source: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceSource swaps a document's chunks for chunks in one transaction and
// returns how many rows were written. On error the old chunks stay in place.
// Chunks whose hash is already stored under another source are skipped.
func (s *Store) ReplaceSource(ctx context.Context, source string, chunks []Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", source); err != nil {
		return 0, fmt.Errorf("delete source: %w", err)
	}

	now := time.Now().UnixNano()
	stored := 0
	for _, c := range chunks {
		if c.Hash == "" {
			return 0, fmt.Errorf("chunk hash is required")
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (source, ordinal, content_hash, content, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(content_hash) DO NOTHING`,
			source, c.Ordinal, c.Hash, c.Content, encodeVector(c.Embedding), now,
		)
		if err != nil {
			logging.StoreError("Failed to replace chunk %s#%d: %v", source, c.Ordinal, err)
			return 0, fmt.Errorf("store chunk: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			stored++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logging.StoreDebug("ReplaceSource %s: %d of %d chunks written", source, stored, len(chunks))
	return stored, nil
}

// SearchChunks returns the k chunks nearest to query by cosine distance.
// Chunks embedded with a different dimensionality are ignored.
func (s *Store) SearchChunks(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SearchChunks")
	defer timer.Stop()

	if len(query) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if k <= 0 {
		k = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob := encodeVector(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, ordinal, content_hash, content, vec_distance_cosine(embedding, ?) AS distance
		 FROM chunks
		 WHERE embedding IS NOT NULL AND length(embedding) = ?
		 ORDER BY distance ASC, id ASC
		 LIMIT ?`,
		blob, len(blob), k,
	)
	if err != nil {
		logging.StoreError("Vector search failed: %v", err)
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var out []ScoredChunk
	for rows.Next() {
		var sc ScoredChunk
		var distance float64
		if err := rows.Scan(&sc.ID, &sc.Source, &sc.Ordinal, &sc.Hash, &sc.Content, &distance); err != nil {
			return nil, err
		}
		sc.Score = 1 - distance
		out = append(out, sc)
	}
	logging.StoreDebug("SearchChunks returned %d hits", len(out))
	return out, rows.Err()
}

// KeywordSearch ranks chunks by how many distinct query words they contain.
// It backs retrieval when no embedding engine is configured.
func (s *Store) KeywordSearch(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		k = 3
	}

	var words []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) < 3 || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(words))
	args := make([]any, len(words))
	for i, w := range words {
		clauses[i] = `LOWER(content) LIKE ? ESCAPE '\'`
		args[i] = "%" + likeEscaper.Replace(w) + "%"
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, ordinal, content_hash, content FROM chunks WHERE "+strings.Join(clauses, " OR ")+" ORDER BY id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var out []ScoredChunk
	for rows.Next() {
		var sc ScoredChunk
		if err := rows.Scan(&sc.ID, &sc.Source, &sc.Ordinal, &sc.Hash, &sc.Content); err != nil {
			return nil, err
		}
		lower := strings.ToLower(sc.Content)
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		sc.Score = float64(hits) / float64(len(words))
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// likeEscaper makes LIKE treat %, _ and \ literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// CountChunks returns the number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// ListSources returns per-document chunk counts ordered by source.
func (s *Store) ListSources(ctx context.Context) ([]SourceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT source, COUNT(*) FROM chunks GROUP BY source ORDER BY source")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceInfo
	for rows.Next() {
		var si SourceInfo
		if err := rows.Scan(&si.Source, &si.Chunks); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}
