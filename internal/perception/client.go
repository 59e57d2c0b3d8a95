// Package perception talks to the reasoning collaborator: the Gemini model
// that phrases answers, may call the console's tools, and reads binary
// documents for the knowledge base.
package perception

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nansc/internal/config"
	"nansc/internal/tools"
)

const defaultSystemPrompt = "You are the NANSC Operations Console assistant. Respond in English. Be concise and ground answers in the supplied tool results."

var (
	// ErrNoAPIKey is returned when no collaborator key is configured.
	ErrNoAPIKey = errors.New("API key not configured")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrToolRoundLimit is returned when the model keeps calling tools past
	// the configured number of rounds without answering.
	ErrToolRoundLimit = errors.New("tool round limit reached")
)

// LLMClient defines the interface for the reasoning collaborator.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ToolCaller is implemented by clients that support function calling. The
// client executes requested calls against registry and feeds the results
// back until the model answers.
type ToolCaller interface {
	CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, registry *tools.Registry) (*ToolResponse, error)
}

// ToolCall records one function call made during a turn.
type ToolCall struct {
	Name       string         `json:"name"`
	Args       map[string]any `json:"args,omitempty"`
	Result     string         `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// ToolResponse is the final answer plus the calls that produced it.
type ToolResponse struct {
	Text   string     `json:"text"`
	Calls  []ToolCall `json:"calls,omitempty"`
	Rounds int        `json:"rounds"`
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	MaxToolRounds   int
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-2.5-flash",
		Timeout:         120 * time.Second,
		MaxOutputTokens: 8192,
		MaxToolRounds:   4,
	}
}

// NewClient builds the collaborator described by cfg. It returns ErrNoAPIKey
// when no key is configured so callers can fall back to degraded mode.
func NewClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if !cfg.HasLLM() {
		return nil, ErrNoAPIKey
	}
	switch cfg.LLM.Provider {
	case "", "gemini":
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	gc := DefaultGeminiConfig(cfg.LLM.APIKey)
	if cfg.LLM.Model != "" {
		gc.Model = cfg.LLM.Model
	}
	gc.Timeout = cfg.GetLLMTimeout()
	gc.MaxToolRounds = cfg.LLM.MaxToolRounds
	return NewGeminiClient(ctx, gc)
}
