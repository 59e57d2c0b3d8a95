// Package tools holds the operations the reasoning collaborator may invoke
// during a turn: airport lookup, address conversion, web search and the
// knowledge base.
//
// Architecture:
//
//	Registry.All() → function declarations → model function call → Registry.Execute() → Tool.Execute()
package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ToolCategory classifies tools.
type ToolCategory string

const (
	// CategoryAirport covers ICAO location indicator lookups.
	CategoryAirport ToolCategory = "/airport"

	// CategoryAddressing covers AFTN→AMHS conversion.
	CategoryAddressing ToolCategory = "/addressing"

	// CategoryResearch covers web search.
	CategoryResearch ToolCategory = "/research"

	// CategoryKnowledge covers the procedures knowledge base.
	CategoryKnowledge ToolCategory = "/knowledge"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one operation the collaborator can call.
type Tool struct {
	// Name is the unique identifier sent to the model.
	Name string

	// Description explains what the tool does.
	// Used for LLM tool calling and the `tools` command.
	Description string

	// Category classifies the tool.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority orders tools within a category (default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the string output from the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}

// StringArg returns args[key] as a trimmed string.
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgType, key, v)
	}
	return strings.TrimSpace(s), nil
}

// IntArg returns args[key] as an int, or def when absent. JSON numbers
// arrive as float64; command-line arguments arrive as strings.
func IntArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidArgType, key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidArgType, key, v)
	}
}
