// Package tui renders the terminal chat client: a username prompt, the chat
// log, an online-users panel, and a message composer. It is a thin view
// layer; all session logic lives in the client package, and the controller is
// only ever mutated inside the bubbletea update loop, which gives the single
// sequential event stream the session design assumes.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/irvelervel/apr21-chat/internal/client"
	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// Inbound messages for the update loop.
type (
	sessionOpenedMsg struct{ session *client.Session }
	dialFailedMsg    struct{ err error }
	envelopeMsg      struct{ env protocol.Envelope }
	disconnectedMsg  struct{ err error }
	presenceMsg      struct{ users []protocol.OnlineUser }
	presenceErrMsg   struct{ err error }
	sendFailedMsg    struct{ err error }
)

// Model is the bubbletea model for the chat client.
type Model struct {
	serverURL  string
	controller *client.Controller
	session    *client.Session
	presence   *client.PresenceClient

	usernameInput textinput.Model
	messageInput  textinput.Model
	styles        styles

	width    int
	height   int
	statusMsg string
	quitting  bool
}

// NewModel creates the client model. initialUsername, when non-empty, is
// pre-filled into the username prompt.
func NewModel(serverURL, initialUsername string) Model {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "Set username here"
	usernameInput.CharLimit = 64
	usernameInput.SetValue(initialUsername)

	messageInput := textinput.New()
	messageInput.Placeholder = "Write message here"
	messageInput.CharLimit = 1024

	return Model{
		serverURL:     serverURL,
		controller:    client.NewController(),
		presence:      client.NewPresenceClient(serverURL),
		usernameInput: usernameInput,
		messageInput:  messageInput,
		styles:        newStyles(),
		statusMsg:     "connecting...",
	}
}

// Init dials the server.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.dialCmd(), textinput.Blink)
}

func (m Model) dialCmd() tea.Cmd {
	serverURL := m.serverURL
	return func() tea.Msg {
		session, err := client.Dial(context.Background(), serverURL)
		if err != nil {
			return dialFailedMsg{err: err}
		}
		return sessionOpenedMsg{session: session}
	}
}

func (m Model) receiveCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		env, err := session.Receive()
		if err != nil {
			return disconnectedMsg{err: err}
		}
		return envelopeMsg{env: env}
	}
}

func (m Model) fetchPresenceCmd() tea.Cmd {
	presence := m.presence
	return func() tea.Msg {
		users, err := presence.Fetch(context.Background())
		if err != nil {
			return presenceErrMsg{err: err}
		}
		return presenceMsg{users: users}
	}
}

func (m Model) sendCmd(frame []byte) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.Send(frame); err != nil {
			return sendFailedMsg{err: err}
		}
		return nil
	}
}

// Update drives the session state machine from UI and transport events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionOpenedMsg:
		m.session = msg.session
		m.controller.HandleConnected()
		m.statusMsg = "connected, pick a username"
		m.usernameInput.Focus()
		return m, m.receiveCmd()

	case dialFailedMsg:
		m.statusMsg = "connection failed: " + msg.err.Error()
		return m, nil

	case disconnectedMsg:
		m.controller.HandleDisconnected()
		m.statusMsg = "disconnected"
		m.usernameInput.Blur()
		m.messageInput.Blur()
		return m, nil

	case envelopeMsg:
		cmds := []tea.Cmd{m.receiveCmd()}
		wasIdentified := m.controller.State() == client.StateIdentified
		if m.controller.HandleEnvelope(msg.env) == client.EffectRefreshPresence {
			cmds = append(cmds, m.fetchPresenceCmd())
		}
		if !wasIdentified && m.controller.State() == client.StateIdentified {
			m.statusMsg = "logged in as " + m.controller.Username()
			m.usernameInput.Blur()
			m.messageInput.Focus()
		}
		return m, tea.Batch(cmds...)

	case presenceMsg:
		m.controller.ReplacePresence(msg.users)
		return m, nil

	case presenceErrMsg:
		// Panel keeps its last known state; surface the failure only.
		m.statusMsg = "presence query failed: " + msg.err.Error()
		return m, nil

	case sendFailedMsg:
		m.statusMsg = "send failed: " + msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		if m.session != nil {
			_ = m.session.Close()
		}
		return m, tea.Quit

	case tea.KeyEnter:
		return m.handleSubmit()
	}

	return m.updateInputs(msg)
}

// handleSubmit routes the enter key to whichever form is active.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	switch m.controller.State() {
	case client.StateConnected:
		frame, err := m.controller.ClaimUsername(m.usernameInput.Value())
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		m.statusMsg = "waiting for confirmation..."
		return m, m.sendCmd(frame)

	case client.StateIdentified:
		_, frame, err := m.controller.ComposeMessage(m.messageInput.Value())
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		// Optimistic append already happened; the emit may still fail.
		m.messageInput.Reset()
		return m, m.sendCmd(frame)
	}

	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.usernameInput, cmd = m.usernameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.messageInput, cmd = m.messageInput.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
