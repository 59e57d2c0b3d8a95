package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all NANSC console configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Reasoning collaborator
	LLM LLMConfig `yaml:"llm"`

	// Document embeddings for the knowledge base
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Knowledge base chunking and retrieval
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Web-search fallback for airport misses
	Search SearchConfig `yaml:"search"`

	// Airport reference data
	Reference ReferenceConfig `yaml:"reference"`

	// Sessions, telemetry and chunks
	Persistence PersistenceConfig `yaml:"persistence"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the reasoning collaborator.
type LLMConfig struct {
	Provider      string `yaml:"provider"` // gemini
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	Timeout       string `yaml:"timeout"`
	MaxToolRounds int    `yaml:"max_tool_rounds"`
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// KnowledgeConfig configures document chunking and retrieval.
type KnowledgeConfig struct {
	ChunkSize     int      `yaml:"chunk_size"`
	ChunkOverlap  int      `yaml:"chunk_overlap"`
	TopK          int      `yaml:"top_k"`
	ExcerptLength int      `yaml:"excerpt_length"`
	Keywords      []string `yaml:"keywords"`
	WatchDir      string   `yaml:"watch_dir"`
}

// SearchConfig configures the web-search fallback.
type SearchConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint"`
	MaxResults     int    `yaml:"max_results"`
	MaxResultChars int    `yaml:"max_result_chars"`
	Timeout        string `yaml:"timeout"`
}

// ReferenceConfig points at an alternative airport table. An empty path
// uses the table compiled into the binary.
type ReferenceConfig struct {
	AirportsPath string `yaml:"airports_path"`
}

// PersistenceConfig configures where state is kept.
type PersistenceConfig struct {
	Dir          string `yaml:"dir"`
	DatabasePath string `yaml:"database_path"` // defaults to <dir>/nansc.db
}

// LoggingConfig configures the operator-facing logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "nansc",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:      "gemini",
			Model:         "gemini-2.5-flash",
			Timeout:       "120s",
			MaxToolRounds: 4,
		},

		Embedding: EmbeddingConfig{
			Model:      "gemini-embedding-001",
			Dimensions: 768,
		},

		Knowledge: KnowledgeConfig{
			ChunkSize:     1000,
			ChunkOverlap:  100,
			TopK:          3,
			ExcerptLength: 500,
		},

		Search: SearchConfig{
			Enabled:        true,
			Endpoint:       "https://html.duckduckgo.com/html/",
			MaxResults:     3,
			MaxResultChars: 800,
			Timeout:        "15s",
		},

		Persistence: PersistenceConfig{
			Dir: ".nansc",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file means defaults, still subject to env overrides
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GOOGLE_API_KEY is the genai SDK's own name; GEMINI_API_KEY wins when both are set.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if model := os.Getenv("NANSC_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("NANSC_PERSISTENCE_DIR"); dir != "" {
		c.Persistence.Dir = dir
	}
	if path := os.Getenv("NANSC_DB"); path != "" {
		c.Persistence.DatabasePath = path
	}
}

// DatabasePath returns the SQLite path, derived from the persistence
// directory when not set explicitly.
func (c *Config) DatabasePath() string {
	if c.Persistence.DatabasePath != "" {
		return c.Persistence.DatabasePath
	}
	dir := c.Persistence.Dir
	if dir == "" {
		dir = ".nansc"
	}
	return filepath.Join(dir, "nansc.db")
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetSearchTimeout returns the web-search timeout as a duration.
func (c *Config) GetSearchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Search.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// HasLLM reports whether a collaborator can be constructed.
func (c *Config) HasLLM() bool {
	return c.LLM.APIKey != ""
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini"}

// Validate validates the configuration. A missing API key is not an error:
// the console runs in degraded mode without a collaborator.
func (c *Config) Validate() error {
	if c.LLM.Provider != "" {
		validProvider := false
		for _, p := range ValidProviders {
			if c.LLM.Provider == p {
				validProvider = true
				break
			}
		}
		if !validProvider {
			return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
		}
	}

	k := c.Knowledge
	if k.ChunkSize <= 0 {
		return fmt.Errorf("knowledge.chunk_size must be positive, got %d", k.ChunkSize)
	}
	if k.ChunkOverlap < 0 || k.ChunkOverlap >= k.ChunkSize {
		return fmt.Errorf("knowledge.chunk_overlap must be in [0, %d), got %d", k.ChunkSize, k.ChunkOverlap)
	}
	if k.TopK <= 0 {
		return fmt.Errorf("knowledge.top_k must be positive, got %d", k.TopK)
	}
	if c.Search.MaxResultChars <= 0 {
		return fmt.Errorf("search.max_result_chars must be positive, got %d", c.Search.MaxResultChars)
	}
	if c.LLM.MaxToolRounds < 0 {
		return fmt.Errorf("llm.max_tool_rounds must not be negative, got %d", c.LLM.MaxToolRounds)
	}

	return nil
}
