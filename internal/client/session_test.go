package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

func loggedInEnvelope(t *testing.T) protocol.Envelope {
	t.Helper()
	frame, err := protocol.Encode(protocol.EventLoggedIn, nil)
	require.NoError(t, err)
	env, err := protocol.Decode(frame)
	require.NoError(t, err)
	return env
}

func messageEnvelope(t *testing.T, msg protocol.Message) protocol.Envelope {
	t.Helper()
	frame, err := protocol.Encode(protocol.EventMessage, msg)
	require.NoError(t, err)
	env, err := protocol.Decode(frame)
	require.NoError(t, err)
	return env
}

// identifiedController walks a fresh controller through the full success
// path: connect, claim, registration confirmed.
func identifiedController(t *testing.T, username string) *Controller {
	t.Helper()
	c := NewController()
	c.HandleConnected()
	_, err := c.ClaimUsername(username)
	require.NoError(t, err)
	effect := c.HandleEnvelope(loggedInEnvelope(t))
	require.Equal(t, EffectRefreshPresence, effect)
	require.Equal(t, StateIdentified, c.State())
	return c
}

func TestControllerStartsDisconnected(t *testing.T) {
	c := NewController()
	assert.Equal(t, StateDisconnected, c.State())
	assert.Empty(t, c.Username())
	assert.Zero(t, c.Log().Len())
}

func TestConnectAcknowledgmentEnablesClaims(t *testing.T) {
	c := NewController()

	_, err := c.ClaimUsername("alice")
	assert.ErrorIs(t, err, ErrNotConnected)

	c.HandleConnected()
	assert.Equal(t, StateConnected, c.State())

	frame, err := c.ClaimUsername("alice")
	require.NoError(t, err)

	env, err := protocol.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, protocol.EventSetUsername, env.Event)
	assert.Equal(t, "alice", env.Username())
}

func TestBlankClaimRejectedLocally(t *testing.T) {
	c := NewController()
	c.HandleConnected()

	_, err := c.ClaimUsername("   ")
	assert.ErrorIs(t, err, ErrEmptyUsername)
	// The form stays usable: state is unchanged and a valid retry works.
	assert.Equal(t, StateConnected, c.State())

	_, err = c.ClaimUsername("alice")
	assert.NoError(t, err)
}

func TestRegistrationConfirmedSeedsPresence(t *testing.T) {
	c := NewController()
	c.HandleConnected()
	_, err := c.ClaimUsername("alice")
	require.NoError(t, err)

	effect := c.HandleEnvelope(loggedInEnvelope(t))
	assert.Equal(t, EffectRefreshPresence, effect)
	assert.Equal(t, StateIdentified, c.State())
	assert.Equal(t, "alice", c.Username())

	// A duplicate confirmation must not trigger another query.
	assert.Equal(t, EffectNone, c.HandleEnvelope(loggedInEnvelope(t)))
}

func TestRegistrationConfirmedIgnoredWhileDisconnected(t *testing.T) {
	c := NewController()
	assert.Equal(t, EffectNone, c.HandleEnvelope(loggedInEnvelope(t)))
	assert.Equal(t, StateDisconnected, c.State())
}

func TestComposeMessageAppendsOptimistically(t *testing.T) {
	c := identifiedController(t, "alice")

	msg, frame, err := c.ComposeMessage("hi")
	require.NoError(t, err)

	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "hi", msg.Text)
	assert.NotEmpty(t, msg.ID)
	assert.Positive(t, msg.Timestamp)

	// The local log shows the message before any acknowledgment.
	require.Equal(t, 1, c.Log().Len())
	assert.Equal(t, msg, c.Log().Messages()[0])

	env, err := protocol.Decode(frame)
	require.NoError(t, err)
	sent, err := env.DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, msg, sent)
}

func TestComposeMessageRequiresIdentity(t *testing.T) {
	c := NewController()
	c.HandleConnected()

	_, _, err := c.ComposeMessage("hi")
	assert.ErrorIs(t, err, ErrNotIdentified)

	c = identifiedController(t, "alice")
	_, _, err = c.ComposeMessage("  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestInboundMessageAppendedWhileIdentified(t *testing.T) {
	c := identifiedController(t, "alice")

	incoming := protocol.Message{ID: "m-1", Sender: "bob", Text: "hey", Timestamp: 1}
	effect := c.HandleEnvelope(messageEnvelope(t, incoming))

	assert.Equal(t, EffectNone, effect)
	require.Equal(t, 1, c.Log().Len())
	assert.Equal(t, incoming, c.Log().Messages()[0])
}

func TestInboundMessageIgnoredBeforeIdentified(t *testing.T) {
	c := NewController()
	c.HandleConnected()

	incoming := protocol.Message{ID: "m-1", Sender: "bob", Text: "hey", Timestamp: 1}
	c.HandleEnvelope(messageEnvelope(t, incoming))

	assert.Zero(t, c.Log().Len())
}

func TestMembershipHintRequiresIdentity(t *testing.T) {
	frame, err := protocol.Encode(protocol.EventUserListUpdated, nil)
	require.NoError(t, err)
	hint, err := protocol.Decode(frame)
	require.NoError(t, err)

	c := NewController()
	c.HandleConnected()
	assert.Equal(t, EffectNone, c.HandleEnvelope(hint))

	c = identifiedController(t, "alice")
	assert.Equal(t, EffectRefreshPresence, c.HandleEnvelope(hint))
}

func TestDisconnectLeavesHistoryStale(t *testing.T) {
	c := identifiedController(t, "alice")
	_, _, err := c.ComposeMessage("hi")
	require.NoError(t, err)
	c.ReplacePresence([]protocol.OnlineUser{{ID: "c-1", Username: "alice"}})

	c.HandleDisconnected()

	assert.Equal(t, StateDisconnected, c.State())
	// Visible history survives the outage even though it may be stale.
	assert.Equal(t, 1, c.Log().Len())
	assert.Len(t, c.Presence(), 1)

	_, err = c.ClaimUsername("alice")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, _, err = c.ComposeMessage("hi")
	assert.ErrorIs(t, err, ErrNotIdentified)
}

func TestUnknownEventIgnored(t *testing.T) {
	c := identifiedController(t, "alice")
	effect := c.HandleEnvelope(protocol.Envelope{Event: "typing"})
	assert.Equal(t, EffectNone, effect)
	assert.Zero(t, c.Log().Len())
}
