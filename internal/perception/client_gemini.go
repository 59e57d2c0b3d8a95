package perception

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"nansc/internal/logging"
	"nansc/internal/tools"
	"nansc/internal/usage"
)

// generator is the part of genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// minRequestGap spaces consecutive requests from one client.
const minRequestGap = 100 * time.Millisecond

const documentPrompt = "Extract the full text of this document as plain text. " +
	"Keep headings, numbered procedures and table rows on their own lines. " +
	"Do not summarise or add commentary."

// GeminiClient implements LLMClient and ToolCaller on the Gemini API.
type GeminiClient struct {
	models          generator
	model           string
	timeout         time.Duration
	maxOutputTokens int32
	maxToolRounds   int

	mu          sync.Mutex
	lastRequest time.Time
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiClient(client.Models, config), nil
}

func newGeminiClient(models generator, config GeminiConfig) *GeminiClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxOut := config.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 8192
	}
	return &GeminiClient{
		models:          models,
		model:           model,
		timeout:         timeout,
		maxOutputTokens: int32(maxOut),
		maxToolRounds:   config.MaxToolRounds,
	}
}

// GetModel returns the model name.
func (c *GeminiClient) GetModel() string {
	return c.model
}

// withTimeout applies the client timeout when ctx has no deadline.
func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// throttle reserves the next request slot and waits for it outside the lock.
// It returns early with ctx's error when the turn is cancelled.
func (c *GeminiClient) throttle(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	slot := c.lastRequest.Add(minRequestGap)
	if slot.Before(now) {
		slot = now
	}
	c.lastRequest = slot
	c.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *GeminiClient) generationConfig(systemPrompt string, decls []*genai.FunctionDeclaration) *genai.GenerateContentConfig {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   c.maxOutputTokens,
	}
	if len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

func (c *GeminiClient) generate(ctx context.Context, operation string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, fmt.Errorf("gemini request cancelled: %w", err)
	}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		logging.APIError("[Gemini] request failed: model=%s err=%v", c.model, err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	if resp.UsageMetadata != nil {
		in, out := int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount)
		logging.APIDebug("[Gemini] %s usage: input=%d output=%d", operation, in, out)
		if tracker := usage.FromContext(ctx); tracker != nil {
			tracker.Track(ctx, c.model, in, out, operation)
		}
	}
	return resp, nil
}

// Complete sends a prompt with the default system prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "Gemini.CompleteWithSystem")
	defer timer.Stop()
	logging.APIDebug("[Gemini] CompleteWithSystem: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	resp, err := c.generate(ctx, usage.OpChat, genai.Text(userPrompt), c.generationConfig(systemPrompt, nil))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// CompleteWithTools lets the model call registry tools for up to the
// configured number of rounds before it must answer.
func (c *GeminiClient) CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, registry *tools.Registry) (*ToolResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	all := registry.All()
	logging.APIDebug("[Gemini] CompleteWithTools: model=%s tools=%d max_rounds=%d", c.model, len(all), c.maxToolRounds)

	cfg := c.generationConfig(systemPrompt, FunctionDeclarations(all))
	contents := genai.Text(userPrompt)
	out := &ToolResponse{}

	for round := 0; ; round++ {
		resp, err := c.generate(ctx, usage.OpTools, contents, cfg)
		if err != nil {
			return nil, err
		}
		out.Rounds = round + 1

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			out.Text = strings.TrimSpace(resp.Text())
			if out.Text == "" {
				return nil, ErrEmptyResponse
			}
			return out, nil
		}
		if round >= c.maxToolRounds {
			logging.APIError("[Gemini] model still calling tools after %d rounds", out.Rounds)
			return nil, fmt.Errorf("%w (%d)", ErrToolRoundLimit, c.maxToolRounds)
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			rec, payload := executeCall(ctx, registry, call)
			out.Calls = append(out.Calls, rec)

			part := genai.NewPartFromFunctionResponse(call.Name, payload)
			part.FunctionResponse.ID = call.ID
			parts = append(parts, part)
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

// executeCall runs one function call. Tool failures go back to the model as
// an "error" field rather than aborting the turn.
func executeCall(ctx context.Context, registry *tools.Registry, call *genai.FunctionCall) (ToolCall, map[string]any) {
	rec := ToolCall{Name: call.Name, Args: call.Args}
	res, err := registry.Execute(ctx, call.Name, call.Args)
	if res != nil {
		rec.DurationMs = res.DurationMs
	}
	if err != nil {
		rec.Error = err.Error()
		logging.APIDebug("[Gemini] tool %s failed: %v", call.Name, err)
		return rec, map[string]any{"error": err.Error()}
	}
	rec.Result = res.Result
	return rec, map[string]any{"output": res.Result}
}

// ReadDocument asks the model to transcribe a binary document. It lets the
// knowledge base ingest PDFs.
func (c *GeminiClient) ReadDocument(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	logging.APIDebug("[Gemini] ReadDocument: mime=%s bytes=%d", mimeType, len(data))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(documentPrompt),
		}, genai.RoleUser),
	}

	resp, err := c.generate(ctx, usage.OpDocument, contents, &genai.GenerateContentConfig{MaxOutputTokens: c.maxOutputTokens})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
