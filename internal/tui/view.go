package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/irvelervel/apr21-chat/internal/client"
	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// maxVisibleMessages bounds the rendered tail of the chat log when the
// terminal height is unknown.
const maxVisibleMessages = 20

// View renders the chat screen: status line, chat log beside the
// online-users panel, and the active input form.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.styles.title.Render("apr21 chat"),
		m.statusLine(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderLog(), m.renderPresence()),
		"",
		m.renderInput(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	style := m.styles.status
	switch m.controller.State() {
	case client.StateIdentified:
		style = m.styles.statusOnline
	case client.StateDisconnected:
		style = m.styles.statusError
	}
	return style.Render(fmt.Sprintf("[%s] %s", m.controller.State(), m.statusMsg))
}

func (m Model) renderLog() string {
	messages := m.controller.Log().Messages()
	if len(messages) == 0 {
		return m.styles.empty.Render("No messages yet.")
	}

	visible := m.visibleMessageCount()
	if len(messages) > visible {
		messages = messages[len(messages)-visible:]
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, m.renderMessage(msg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) visibleMessageCount() int {
	if m.height == 0 {
		return maxVisibleMessages
	}
	// Reserve rows for title, status, input, and spacing.
	visible := m.height - 7
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (m Model) renderMessage(msg protocol.Message) string {
	senderStyle := m.styles.sender
	if msg.Sender == m.controller.Username() {
		senderStyle = m.styles.ownSender
	}

	stamp := time.UnixMilli(msg.Timestamp).Format("15:04:05")
	return fmt.Sprintf("%s %s %s",
		m.styles.timestamp.Render(stamp),
		senderStyle.Render(msg.Sender+":"),
		m.styles.text.Render(msg.Text),
	)
}

func (m Model) renderPresence() string {
	lines := []string{m.styles.panelHeader.Render("online")}

	users := m.controller.Presence()
	if len(users) == 0 {
		lines = append(lines, m.styles.empty.Render("nobody yet"))
	}
	for _, user := range users {
		lines = append(lines, m.styles.panelEntry.Render(user.Username))
	}

	return m.styles.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderInput() string {
	switch m.controller.State() {
	case client.StateConnected:
		return m.styles.prompt.Render("username> ") + m.usernameInput.View()
	case client.StateIdentified:
		return m.styles.prompt.Render("message> ") + m.messageInput.View()
	default:
		return m.styles.empty.Render("(inputs disabled while disconnected)")
	}
}
