// Package chat provides the interactive TUI for the NANSC console.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"nansc/cmd/nansc/ui"
	"nansc/internal/assistant"
	"nansc/internal/logging"
	"nansc/internal/session"
	"nansc/internal/telemetry"
)

// Processor runs one assistant turn.
type Processor interface {
	Process(ctx context.Context, sessionID, message string) *assistant.Reply
	Telemetry() *telemetry.Service
	Degraded() bool
}

// Config holds what the chat needs from the wired console.
type Config struct {
	Assistant Processor
	Sessions  *session.Manager // optional: enables /reset
	SessionID string           // empty starts a new session
	Styles    ui.Styles
	Timeout   time.Duration // per turn; 0 means none
}

// Message is one entry in the on-screen history.
type Message struct {
	Role    string // user, assistant, system
	Content string
	Time    time.Time
}

// replyMsg carries a finished turn back to Update.
type replyMsg struct {
	reply *assistant.Reply
}

// Model is the bubbletea model of the chat interface.
type Model struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	history   []Message
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool

	// Session State
	sessionID string
	turnCount int

	// Backend
	assistant Processor
	sessions  *session.Manager
	timeout   time.Duration
}

const (
	headerHeight = 1
	footerHeight = 1
	inputHeight  = 3
)

// New creates the chat model.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "ICAO code, AFTN address or question... (Enter to send, /help for commands)"
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Spinner

	id := cfg.SessionID
	if id == "" {
		id = session.NewID()
	}

	m := Model{
		textinput: ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		styles:    cfg.Styles,
		sessionID: id,
		assistant: cfg.Assistant,
		sessions:  cfg.Sessions,
		timeout:   cfg.Timeout,
	}
	m.renderer = newRenderer(80)

	welcome := "Welcome to the **NANSC Operations Console**. Type an ICAO code (e.g. `HECA`), an AFTN address (e.g. `HECAYFYX`) or a question. `/help` lists commands."
	if m.assistant != nil && m.assistant.Degraded() {
		welcome += "\n\n*No API key configured: answers are limited to local lookups.*"
	}
	m.history = append(m.history, Message{Role: "assistant", Content: welcome, Time: time.Now()})
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("Markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}

// SessionID returns the current session id.
func (m Model) SessionID() string {
	return m.sessionID
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - headerHeight - footerHeight - inputHeight
		if vpHeight < 3 {
			vpHeight = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
		m.textinput.Width = msg.Width - 6
		m.renderer = newRenderer(msg.Width - 4)
		m.ready = true
		m.refresh()

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.isLoading = false
		m.turnCount++
		m.err = msg.reply.Err
		m.history = append(m.history, Message{Role: "assistant", Content: msg.reply.Text, Time: time.Now()})
		m.refresh()
		return m, nil
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit sends the input as a turn or runs a slash command.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.history = append(m.history, Message{Role: "user", Content: input, Time: time.Now()})
	m.err = nil
	m.refresh()

	if m.assistant == nil {
		m.history = append(m.history, Message{Role: "system", Content: "No assistant configured.", Time: time.Now()})
		m.refresh()
		return m, nil
	}

	m.isLoading = true
	return m, tea.Batch(m.spinner.Tick, m.processInput(input))
}

// processInput runs the turn off the UI goroutine.
func (m Model) processInput(input string) tea.Cmd {
	proc, id, limit := m.assistant, m.sessionID, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if limit > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, limit)
			defer cancel()
		}
		logging.UI("Turn %s: %d chars", id, len(input))
		return replyMsg{reply: proc.Process(ctx, id, input)}
	}
}

// Run starts the chat program on the terminal.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
