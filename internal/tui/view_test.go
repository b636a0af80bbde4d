package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irvelervel/apr21-chat/internal/client"
	"github.com/irvelervel/apr21-chat/internal/protocol"
)

func loggedInEnvelope() protocol.Envelope {
	return protocol.Envelope{Event: protocol.EventLoggedIn}
}

// identifiedModel returns a model whose session has completed the username
// handshake as "alice".
func identifiedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel("http://localhost:8080", "")
	m.controller.HandleConnected()
	_, err := m.controller.ClaimUsername("alice")
	require.NoError(t, err)
	m.controller.HandleEnvelope(loggedInEnvelope())
	require.Equal(t, client.StateIdentified, m.controller.State())
	return m
}

func TestViewWhileDisconnected(t *testing.T) {
	m := NewModel("http://localhost:8080", "")

	output := m.View()

	assert.Contains(t, output, "apr21 chat")
	assert.Contains(t, output, "connecting...")
	assert.Contains(t, output, "inputs disabled while disconnected")
}

func TestViewShowsUsernamePromptWhenConnected(t *testing.T) {
	m := NewModel("http://localhost:8080", "")
	m.controller.HandleConnected()

	output := m.View()

	assert.Contains(t, output, "username>")
	assert.Contains(t, output, "No messages yet.")
	assert.Contains(t, output, "nobody yet")
}

func TestViewShowsChatAndPresenceWhenIdentified(t *testing.T) {
	m := identifiedModel(t)
	m.controller.ReplacePresence([]protocol.OnlineUser{
		{ID: "1", Username: "alice"},
		{ID: "2", Username: "bob"},
	})
	_, _, err := m.controller.ComposeMessage("hello bob")
	require.NoError(t, err)

	output := m.View()

	assert.Contains(t, output, "message>")
	assert.Contains(t, output, "alice:")
	assert.Contains(t, output, "hello bob")
	assert.Contains(t, output, "bob")
	assert.NotContains(t, output, "No messages yet.")
	assert.NotContains(t, output, "nobody yet")
}

func TestViewWhileQuitting(t *testing.T) {
	m := NewModel("http://localhost:8080", "")
	m.quitting = true

	assert.Empty(t, m.View())
}

func TestRenderMessageMarksOwnSender(t *testing.T) {
	m := identifiedModel(t)

	own := m.renderMessage(protocol.NewMessage("alice", "mine"))
	other := m.renderMessage(protocol.NewMessage("bob", "theirs"))

	assert.Contains(t, own, "alice:")
	assert.Contains(t, other, "bob:")
}
