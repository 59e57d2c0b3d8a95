package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("Operator") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		case "system":
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")

		default:
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("NANSC") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

// refresh redraws the viewport and scrolls to the newest message.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" NANSC Operations Console ")
	mode := m.styles.Badge.Render("LIVE")
	if m.assistant == nil || m.assistant.Degraded() {
		mode = m.styles.Warning.Render(" LOCAL ONLY ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", mode)
}

func (m Model) renderFooter() string {
	status := fmt.Sprintf("session %s · %d turns · /help · Esc to quit", shortID(m.sessionID), m.turnCount)
	if m.isLoading {
		status = m.spinner.View() + " Processing... " + status
	}
	if m.err != nil {
		status = m.styles.Error.Render("last turn failed") + " · " + status
	}
	return m.styles.Footer.Render(status)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		inputStyle.Render(m.textinput.View()),
		m.renderFooter(),
	)
}
