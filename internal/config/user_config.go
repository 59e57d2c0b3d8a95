package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// UserConfig holds per-user overrides from .nansc/config.json. The file may
// contain comments and trailing commas.
type UserConfig struct {
	// Provider selection (gemini)
	Provider string `json:"provider,omitempty"`

	// API keys
	APIKey       string `json:"api_key,omitempty"` // Legacy: single key
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	// Optional model override
	Model string `json:"model,omitempty"`

	// Theme for the chat TUI ("light" or "dark")
	Theme string `json:"theme,omitempty"`

	// Disable the web-search fallback without editing the YAML config
	SearchEnabled *bool `json:"search_enabled,omitempty"`

	// Categorised file logging; read directly by internal/logging
	Logging *UserLoggingConfig `json:"logging,omitempty"`
}

// UserLoggingConfig mirrors the logging section consumed by internal/logging.
type UserLoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Level      string          `json:"level,omitempty"`
	JSONFormat bool            `json:"json_format,omitempty"`
	Categories map[string]bool `json:"categories,omitempty"`
}

// DefaultUserConfigPath returns the user config path inside the persistence dir.
func DefaultUserConfigPath(dir string) string {
	if dir == "" {
		dir = ".nansc"
	}
	return filepath.Join(dir, "config.json")
}

// LoadUserConfig loads the user config. A missing file yields an empty config.
func LoadUserConfig(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &cfg, nil
}

// Save writes the user config as indented JSON.
func (c *UserConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// GetActiveProvider returns the provider and key the user config selects.
func (c *UserConfig) GetActiveProvider() (provider string, apiKey string) {
	provider = c.Provider
	if provider == "" {
		provider = "gemini"
	}
	apiKey = c.GeminiAPIKey
	if apiKey == "" {
		apiKey = c.APIKey
	}
	return provider, apiKey
}

// ApplyTo layers the user overrides onto cfg. Values already taken from the
// environment are kept.
func (c *UserConfig) ApplyTo(cfg *Config) {
	provider, key := c.GetActiveProvider()
	if key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
		cfg.LLM.Provider = provider
	}
	if c.Model != "" && os.Getenv("NANSC_MODEL") == "" {
		cfg.LLM.Model = c.Model
	}
	if c.SearchEnabled != nil {
		cfg.Search.Enabled = *c.SearchEnabled
	}
}
