package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "NANSC_MODEL", "NANSC_PERSISTENCE_DIR", "NANSC_DB"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 1000, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 100, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 3, cfg.Knowledge.TopK)
	assert.Equal(t, 800, cfg.Search.MaxResultChars)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, ".nansc", cfg.Persistence.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "nansc.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "gemini-2.5-pro"
	cfg.Knowledge.TopK = 5
	cfg.Search.Enabled = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", loaded.LLM.Model)
	assert.Equal(t, 5, loaded.Knowledge.TopK)
	assert.False(t, loaded.Search.Enabled)
	// Untouched sections keep their defaults
	assert.Equal(t, 1000, loaded.Knowledge.ChunkSize)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nansc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("knowledge:\n  top_k: 7\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Knowledge.TopK)
	assert.Equal(t, 100, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.LLM.Provider = "openai" }},
		{"zero chunk size", func(c *Config) { c.Knowledge.ChunkSize = 0 }},
		{"overlap too large", func(c *Config) { c.Knowledge.ChunkOverlap = c.Knowledge.ChunkSize }},
		{"negative overlap", func(c *Config) { c.Knowledge.ChunkOverlap = -1 }},
		{"zero top k", func(c *Config) { c.Knowledge.TopK = 0 }},
		{"zero result cap", func(c *Config) { c.Search.MaxResultChars = 0 }},
		{"negative tool rounds", func(c *Config) { c.LLM.MaxToolRounds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("missing api key is allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = ""
		assert.NoError(t, cfg.Validate())
		assert.False(t, cfg.HasLLM())
	})
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetSearchTimeout())

	cfg.LLM.Timeout = "garbage"
	cfg.Search.Timeout = ""
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetSearchTimeout())
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(".nansc", "nansc.db"), cfg.DatabasePath())

	cfg.Persistence.Dir = "/var/lib/nansc"
	assert.Equal(t, filepath.Join("/var/lib/nansc", "nansc.db"), cfg.DatabasePath())

	cfg.Persistence.DatabasePath = "/tmp/x.db"
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath())
}
