package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nansc/internal/session"
)

// =============================================================================
// COMMAND HANDLING
// =============================================================================

const helpText = `## Commands

| Command | Action |
|---|---|
| /help | Show this help |
| /new | Start a new session |
| /reset | Clear the current session's stored history |
| /session | Show the current session id |
| /stats | Show request, tool-use and error counters |
| /logs | Show recent events |
| /clear-logs | Clear the event view |
| /clear | Clear the screen |
| /quit | Exit |`

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	switch parts[0] {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/help":
		m.say(helpText)

	case "/clear":
		m.history = nil

	case "/new":
		m.sessionID = session.NewID()
		m.turnCount = 0
		m.history = nil
		m.say(fmt.Sprintf("Started new session: `%s`", m.sessionID))

	case "/session":
		m.say(fmt.Sprintf("Session `%s`, %d turns this run.", m.sessionID, m.turnCount))

	case "/reset":
		if m.sessions == nil {
			m.say("Session history is not persisted.")
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		existed, err := m.sessions.Reset(ctx, m.sessionID)
		cancel()
		switch {
		case err != nil:
			m.say(fmt.Sprintf("Reset failed: %v", err))
		case !existed:
			m.say("Nothing stored for this session yet.")
		default:
			m.turnCount = 0
			m.say(fmt.Sprintf("Cleared the history of session `%s`.", m.sessionID))
		}

	case "/stats":
		if m.assistant == nil {
			m.say("No assistant configured.")
			break
		}
		mt := m.assistant.Telemetry().Metrics()
		m.say(fmt.Sprintf("## System Metrics\n\n- Requests: **%d**\n- Tool usage: **%d**\n- Errors: **%d**", mt.Requests, mt.ToolUsage, mt.Errors))

	case "/logs":
		if m.assistant == nil {
			m.say("No assistant configured.")
			break
		}
		logs := m.assistant.Telemetry().Logs()
		if logs == "" {
			m.say("No events recorded.")
			break
		}
		m.say("```\n" + logs + "\n```")

	case "/clear-logs":
		if m.assistant != nil {
			m.assistant.Telemetry().Clear()
		}
		m.say("Event view cleared.")

	default:
		m.say(fmt.Sprintf("Unknown command `%s`. Type `/help` for commands.", parts[0]))
	}

	m.refresh()
	return m, nil
}

// say appends an assistant-side note that is not part of a turn.
func (m *Model) say(content string) {
	m.history = append(m.history, Message{Role: "system", Content: content, Time: time.Now()})
}
