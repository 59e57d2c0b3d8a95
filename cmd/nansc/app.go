package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"nansc/internal/assistant"
	"nansc/internal/config"
	"nansc/internal/dispatch"
	"nansc/internal/embedding"
	"nansc/internal/knowledge"
	"nansc/internal/perception"
	"nansc/internal/reference"
	"nansc/internal/search"
	"nansc/internal/session"
	"nansc/internal/store"
	"nansc/internal/telemetry"
	"nansc/internal/tools"
	"nansc/internal/tools/ops"
	"nansc/internal/tools/research"
	"nansc/internal/usage"
)

// app is the wired console.
type app struct {
	cfg       *config.Config
	coord     *dispatch.Coordinator
	store     *store.Store
	telemetry *telemetry.Service
	sessions  *session.Manager
	kb        *knowledge.Base
	searcher  search.Searcher
	llm       *perception.GeminiClient
	registry  *tools.Registry
	usage     *usage.Tracker
	assistant *assistant.Assistant
}

// loadTable loads the airport table from the configured file, or the bundled
// one.
func loadTable(c *config.Config) (*reference.Table, error) {
	if c.Reference.AirportsPath == "" {
		return reference.Default()
	}
	data, err := os.ReadFile(c.Reference.AirportsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reference.ErrReferenceDataUnavailable, err)
	}
	return reference.Load(data)
}

// newCoordinator is all the lightweight commands need.
func newCoordinator(c *config.Config) (*dispatch.Coordinator, error) {
	table, err := loadTable(c)
	if err != nil {
		return nil, err
	}
	return dispatch.New(table), nil
}

// newSearcher returns nil when the web fallback is disabled.
func newSearcher(c *config.Config) search.Searcher {
	if !c.Search.Enabled {
		return nil
	}
	return search.New(search.Options{
		Endpoint:   c.Search.Endpoint,
		MaxResults: c.Search.MaxResults,
		Timeout:    c.GetSearchTimeout(),
	})
}

// openStore opens the console database for commands that only read state.
func openStore(c *config.Config) (*store.Store, error) {
	st, err := store.Open(c.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// newApp wires every component. A missing API key is not an error: the
// console runs in degraded mode.
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	coord, err := newCoordinator(c)
	if err != nil {
		return nil, err
	}

	st, err := openStore(c)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       c,
		coord:     coord,
		store:     st,
		telemetry: telemetry.NewService(st),
		sessions:  session.NewManager(st),
		searcher:  newSearcher(c),
		registry:  tools.NewRegistry(),
	}

	if a.usage, err = usage.NewTracker(c.Persistence.Dir); err != nil {
		st.Close()
		return nil, err
	}

	client, err := perception.NewClient(ctx, c)
	switch {
	case errors.Is(err, perception.ErrNoAPIKey):
		logger.Warn("No API key configured; running in degraded mode")
	case err != nil:
		logger.Warn("Collaborator unavailable; running in degraded mode", zap.Error(err))
	default:
		a.llm = client
	}

	var engine embedding.EmbeddingEngine
	if c.HasLLM() {
		ec := embedding.DefaultConfig()
		ec.APIKey = c.LLM.APIKey
		if c.Embedding.Model != "" {
			ec.Model = c.Embedding.Model
		}
		if c.Embedding.Dimensions > 0 {
			ec.Dimensions = c.Embedding.Dimensions
		}
		if engine, err = embedding.NewEngine(ec); err != nil {
			logger.Warn("Embeddings unavailable; knowledge search falls back to keywords", zap.Error(err))
			engine = nil
		}
	}

	var reader knowledge.DocumentReader
	if a.llm != nil {
		reader = a.llm
	}
	a.kb = knowledge.New(st, engine, reader, knowledge.Options{
		ChunkSize:     c.Knowledge.ChunkSize,
		ChunkOverlap:  c.Knowledge.ChunkOverlap,
		TopK:          c.Knowledge.TopK,
		ExcerptLength: c.Knowledge.ExcerptLength,
	})

	if err := ops.RegisterAll(a.registry, coord, a.searcher, c.Search.MaxResultChars); err != nil {
		a.Close()
		return nil, err
	}
	if err := research.RegisterAll(a.registry, a.searcher, a.kb); err != nil {
		a.Close()
		return nil, err
	}

	deps := assistant.Deps{
		Coordinator: coord,
		Tools:       a.registry,
		Knowledge:   a.kb,
		Searcher:    a.searcher,
		Sessions:    a.sessions,
		Telemetry:   a.telemetry,
		Usage:       a.usage,
	}
	if a.llm != nil {
		deps.LLM = a.llm
	}
	opts := assistant.DefaultOptions()
	opts.KnowledgeKeywords = c.Knowledge.Keywords
	opts.SearchTimeout = c.GetSearchTimeout()
	opts.MaxResultChars = c.Search.MaxResultChars
	opts.UseTools = c.LLM.MaxToolRounds > 0
	a.assistant = assistant.New(deps, opts)

	logger.Debug("Console wired",
		zap.String("db", st.Path()),
		zap.Bool("llm", a.llm != nil),
		zap.Bool("semantic_kb", a.kb.Semantic()),
		zap.Bool("web_search", a.searcher != nil),
		zap.Strings("tools", a.registry.Names()))
	return a, nil
}

// watchDir is the directory `kb watch` follows by default.
func (a *app) watchDir() string {
	if a.cfg.Knowledge.WatchDir != "" {
		return a.cfg.Knowledge.WatchDir
	}
	return filepath.Join(a.cfg.Persistence.Dir, "docs")
}

func (a *app) Close() error {
	if err := a.usage.Close(); err != nil {
		logger.Warn("Failed to save token usage", zap.Error(err))
	}
	return a.store.Close()
}
