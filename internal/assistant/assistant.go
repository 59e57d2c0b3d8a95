// Package assistant runs one operator turn: knowledge lookup, code dispatch,
// web fallback for unknown airports, and the collaborator call.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nansc/internal/dispatch"
	"nansc/internal/intent"
	"nansc/internal/logging"
	"nansc/internal/perception"
	"nansc/internal/search"
	"nansc/internal/session"
	"nansc/internal/telemetry"
	"nansc/internal/tools"
	"nansc/internal/usage"
)

// Knowledge answers procedure questions from ingested manuals.
type Knowledge interface {
	Query(ctx context.Context, question string) (string, error)
}

// Deps are the collaborators of an Assistant. Only Coordinator is required.
type Deps struct {
	Coordinator *dispatch.Coordinator
	LLM         perception.LLMClient
	Tools       *tools.Registry
	Knowledge   Knowledge
	Searcher    search.Searcher
	Sessions    *session.Manager
	Telemetry   *telemetry.Service
	Usage       *usage.Tracker
}

// Options tune a turn.
type Options struct {
	KnowledgeKeywords []string
	SearchTimeout     time.Duration
	MaxResultChars    int
	HistoryTurns      int
	UseTools          bool
}

// DefaultOptions returns the console defaults.
func DefaultOptions() Options {
	return Options{
		SearchTimeout:  15 * time.Second,
		MaxResultChars: search.DefaultMaxChars,
		HistoryTurns:   10,
		UseTools:       true,
	}
}

// Reply is the outcome of one turn. Text is always set; Err records a
// failure that Text already explains.
type Reply struct {
	SessionID     string                `json:"session_id"`
	Text          string                `json:"text"`
	Results       []dispatch.Result     `json:"results,omitempty"`
	Fallbacks     []search.Fallback     `json:"fallbacks,omitempty"`
	UsedKnowledge bool                  `json:"used_knowledge"`
	ToolCalls     []perception.ToolCall `json:"tool_calls,omitempty"`
	Degraded      bool                  `json:"degraded"`
	Duration      time.Duration         `json:"duration"`
	Err           error                 `json:"-"`
}

// Assistant processes operator messages.
type Assistant struct {
	deps Deps
	opts Options
}

// New creates an assistant. A nil Telemetry gets an in-memory service.
func New(deps Deps, opts Options) *Assistant {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NewService(nil)
	}
	if opts.MaxResultChars <= 0 {
		opts.MaxResultChars = search.DefaultMaxChars
	}
	return &Assistant{deps: deps, opts: opts}
}

// Telemetry returns the service the assistant reports to.
func (a *Assistant) Telemetry() *telemetry.Service {
	return a.deps.Telemetry
}

// Degraded reports whether turns are answered without a model.
func (a *Assistant) Degraded() bool {
	return a.deps.LLM == nil
}

// Process answers one message for sessionID.
func (a *Assistant) Process(ctx context.Context, sessionID, message string) *Reply {
	start := time.Now()
	reply := &Reply{SessionID: sessionID}
	if strings.TrimSpace(message) == "" {
		reply.Text = EmptyMessageReply
		return reply
	}

	tel := a.deps.Telemetry
	ctx = telemetry.NewContext(ctx, tel)
	if a.deps.Usage != nil {
		ctx = usage.NewContext(ctx, a.deps.Usage)
	}
	ctx = usage.WithSession(ctx, sessionID)
	tel.Log(ctx, telemetry.EventRequest, sessionID, truncate(message, 80))

	timer := logging.StartTimer(logging.CategorySession, "Assistant.Process")
	defer timer.Stop()

	history := a.history(ctx, sessionID)

	prompt := message
	if a.deps.Knowledge != nil && intent.NeedsKnowledge(message, a.opts.KnowledgeKeywords) {
		excerpts, err := a.deps.Knowledge.Query(ctx, message)
		if err != nil {
			logging.KnowledgeWarn("Knowledge query failed: %v", err)
		} else if excerpts != "" {
			reply.UsedKnowledge = true
			prompt = withKnowledge(excerpts, message)
		}
	}

	// Codes come from the operator's words, not the quoted manuals.
	reply.Results = a.deps.Coordinator.Dispatch(message)
	for _, r := range reply.Results {
		tel.Log(ctx, telemetry.EventToolUse, sessionID, fmt.Sprintf("%s %s -> %s", r.Kind, r.Token, r.Outcome))
	}

	reply.Fallbacks = a.fallbacks(ctx, dispatch.Misses(reply.Results))
	summary := fallbackSummary(reply.Fallbacks)

	if a.deps.LLM == nil {
		reply.Degraded = true
		reply.Text = DegradedReply
		if block := dispatch.RenderWith(reply.Results, summary); block != "" {
			reply.Text = block + "\n\n" + DegradedReply
		}
		tel.Log(ctx, telemetry.EventInfo, sessionID, "answered in degraded mode")
		a.record(ctx, sessionID, message, reply.Text)
		reply.Duration = time.Since(start)
		return reply
	}

	full := withHistory(history, dispatch.AugmentWith(prompt, reply.Results, summary))
	text, calls, err := a.complete(ctx, full)
	reply.ToolCalls = calls
	if err != nil {
		tel.Log(ctx, telemetry.EventError, sessionID, err.Error())
		reply.Err = err
		reply.Text = "System Error: " + err.Error()
		reply.Duration = time.Since(start)
		return reply
	}

	reply.Text = text
	a.record(ctx, sessionID, message, text)
	reply.Duration = time.Since(start)
	return reply
}

// complete calls the collaborator, with tools when it supports them.
func (a *Assistant) complete(ctx context.Context, prompt string) (string, []perception.ToolCall, error) {
	if tc, ok := a.deps.LLM.(perception.ToolCaller); ok && a.opts.UseTools && a.deps.Tools != nil && a.deps.Tools.Count() > 0 {
		resp, err := tc.CompleteWithTools(ctx, SystemPrompt, prompt, a.deps.Tools)
		if err != nil {
			return "", nil, err
		}
		return resp.Text, resp.Calls, nil
	}
	text, err := a.deps.LLM.CompleteWithSystem(ctx, SystemPrompt, prompt)
	return text, nil, err
}

// fallbacks searches the web for each missed code concurrently. Results keep
// the order of codes.
func (a *Assistant) fallbacks(ctx context.Context, codes []string) []search.Fallback {
	if a.deps.Searcher == nil || len(codes) == 0 {
		return nil
	}

	out := make([]search.Fallback, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		g.Go(func() error {
			sctx := gctx
			if a.opts.SearchTimeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(gctx, a.opts.SearchTimeout)
				defer cancel()
			}
			out[i] = search.AirportFallback(sctx, a.deps.Searcher, code, a.opts.MaxResultChars)
			return nil
		})
	}
	_ = g.Wait()

	for _, fb := range out {
		logging.Search("Fallback for %s: %s", fb.Code, fb.Status)
	}
	return out
}

func (a *Assistant) history(ctx context.Context, sessionID string) []session.Message {
	if a.deps.Sessions == nil || sessionID == "" || a.opts.HistoryTurns <= 0 {
		return nil
	}
	history, err := a.deps.Sessions.History(ctx, sessionID, a.opts.HistoryTurns)
	if err != nil {
		logging.SessionError("Load history for %s: %v", sessionID, err)
		return nil
	}
	return history
}

// record appends the exchange to the session. Failures are logged only.
func (a *Assistant) record(ctx context.Context, sessionID, message, answer string) {
	if a.deps.Sessions == nil || sessionID == "" {
		return
	}
	err := errors.Join(
		a.deps.Sessions.Append(ctx, sessionID, session.RoleUser, message),
		a.deps.Sessions.Append(ctx, sessionID, session.RoleAssistant, answer),
	)
	if err != nil {
		a.deps.Telemetry.Log(ctx, telemetry.EventError, sessionID, "session history: "+err.Error())
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
