// Package knowledge implements the console's document knowledge base:
// extraction, chunking, embedding, storage and retrieval.
package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"nansc/internal/embedding"
	"nansc/internal/logging"
	"nansc/internal/store"
)

// ChunkStore is the persistence the knowledge base needs.
type ChunkStore interface {
	StoreChunk(ctx context.Context, c store.Chunk) (bool, error)
	HasChunk(ctx context.Context, hash string) (bool, error)
	ReplaceSource(ctx context.Context, source string, chunks []store.Chunk) (int, error)
	SearchChunks(ctx context.Context, query []float32, k int) ([]store.ScoredChunk, error)
	KeywordSearch(ctx context.Context, query string, k int) ([]store.ScoredChunk, error)
	CountChunks(ctx context.Context) (int, error)
}

// Options tune chunking and retrieval.
type Options struct {
	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	ExcerptLength int
}

// DefaultOptions mirror the console defaults.
func DefaultOptions() Options {
	return Options{ChunkSize: 1000, ChunkOverlap: 100, TopK: 3, ExcerptLength: 500}
}

// IngestResult reports what one ingestion did.
type IngestResult struct {
	Source  string
	Chunks  int // chunks produced by the splitter
	Stored  int // chunks newly written
	Skipped int // chunks already present
}

// Base is the knowledge base.
type Base struct {
	store    ChunkStore
	engine   embedding.EmbeddingEngine // nil: keyword retrieval only
	reader   DocumentReader            // nil: PDFs unsupported
	splitter *Splitter
	opts     Options
}

// New creates a knowledge base. engine and reader may be nil.
func New(st ChunkStore, engine embedding.EmbeddingEngine, reader DocumentReader, opts Options) *Base {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = def.ExcerptLength
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
		opts.ChunkOverlap = def.ChunkOverlap
	}
	return &Base{
		store:    st,
		engine:   engine,
		reader:   reader,
		splitter: NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		opts:     opts,
	}
}

// Semantic reports whether retrieval uses embeddings.
func (b *Base) Semantic() bool {
	return b.engine != nil
}

// Ingest extracts, chunks and stores a document.
func (b *Base) Ingest(ctx context.Context, path string) (IngestResult, error) {
	timer := logging.StartTimer(logging.CategoryKnowledge, "Ingest")
	defer timer.Stop()

	text, err := Extract(ctx, path, b.reader)
	if err != nil {
		logging.KnowledgeWarn("Extract %s failed: %v", path, err)
		return IngestResult{Source: sourceName(path)}, err
	}
	return b.IngestText(ctx, sourceName(path), text)
}

// Reingest replaces every chunk of a document with its current content. The
// new chunks are embedded before anything is removed, so a failed reingest
// leaves the previous version searchable.
func (b *Base) Reingest(ctx context.Context, path string) (IngestResult, error) {
	source := sourceName(path)
	res := IngestResult{Source: source}
	text, err := Extract(ctx, path, b.reader)
	if err != nil {
		return res, err
	}

	chunks := b.chunk(source, text)
	res.Chunks = len(chunks)
	if err := b.embed(ctx, source, chunks); err != nil {
		logging.KnowledgeWarn("Reingest %s aborted, keeping stored chunks: %v", path, err)
		return res, err
	}
	stored, err := b.store.ReplaceSource(ctx, source, chunks)
	if err != nil {
		return res, err
	}
	res.Stored = stored
	res.Skipped = len(chunks) - stored
	logging.Knowledge("Reingested %s: %d chunks (%d stored, %d skipped)", source, res.Chunks, res.Stored, res.Skipped)
	return res, nil
}

// IngestText chunks and stores already-extracted text under source.
func (b *Base) IngestText(ctx context.Context, source, text string) (IngestResult, error) {
	res := IngestResult{Source: source}
	chunks := b.chunk(source, text)
	res.Chunks = len(chunks)
	if len(chunks) == 0 {
		return res, nil
	}

	var fresh []store.Chunk
	for _, c := range chunks {
		exists, err := b.store.HasChunk(ctx, c.Hash)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		fresh = append(fresh, c)
	}

	if err := b.embed(ctx, source, fresh); err != nil {
		return res, err
	}

	for _, c := range fresh {
		inserted, err := b.store.StoreChunk(ctx, c)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Stored++
		} else {
			res.Skipped++
		}
	}

	logging.Knowledge("Ingested %s: %d chunks (%d stored, %d skipped)", source, res.Chunks, res.Stored, res.Skipped)
	return res, nil
}

// chunk splits text and hashes each piece.
func (b *Base) chunk(source, text string) []store.Chunk {
	pieces := b.splitter.Split(text)
	chunks := make([]store.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = store.Chunk{Source: source, Ordinal: i, Hash: HashChunk(p), Content: p}
	}
	return chunks
}

// embed fills in the chunks' vectors. Without an engine it does nothing.
func (b *Base) embed(ctx context.Context, source string, chunks []store.Chunk) error {
	if b.engine == nil || len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := b.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %s: %w", source, err)
	}
	if len(vecs) != len(chunks) {
		return fmt.Errorf("embed %s: got %d vectors for %d chunks", source, len(vecs), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}
	return nil
}

// Search returns the chunks most relevant to question. Embedding failures
// fall back to keyword matching.
func (b *Base) Search(ctx context.Context, question string) ([]store.ScoredChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil
	}
	if b.engine != nil {
		vec, err := embedding.EmbedQuery(ctx, b.engine, question)
		if err == nil {
			return b.store.SearchChunks(ctx, vec, b.opts.TopK)
		}
		logging.KnowledgeWarn("Query embedding failed, using keyword search: %v", err)
	}
	return b.store.KeywordSearch(ctx, question, b.opts.TopK)
}

// Query returns the retrieved context block for question, or "" when the
// knowledge base is empty or nothing matches.
func (b *Base) Query(ctx context.Context, question string) (string, error) {
	n, err := b.store.CountChunks(ctx)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}

	hits, err := b.Search(ctx, question)
	if err != nil {
		return "", err
	}
	return FormatChunks(hits, b.opts.ExcerptLength), nil
}

// FormatChunks renders hits as numbered "Document Chunk" sections with
// excerpts of at most excerpt characters.
func FormatChunks(hits []store.ScoredChunk, excerpt int) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("Document Chunk %d:\n%s...", i+1, truncate(h.Content, excerpt))
	}
	return strings.Join(parts, "\n\n")
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func sourceName(path string) string {
	return filepath.Base(path)
}
