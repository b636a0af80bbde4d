package client

import (
	"errors"
	"strings"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// State is the client session state. The success path is
// Disconnected -> Connected -> Identified; Disconnected is reachable from any
// state on transport loss.
type State int

const (
	// StateDisconnected means no live channel exists. Both input forms are
	// disabled; the chat log and presence panel keep their last contents.
	StateDisconnected State = iota
	// StateConnected means the channel is open but no identity is bound yet.
	// Only the username form is enabled.
	StateConnected
	// StateIdentified means the server confirmed the identity claim. The
	// message form is enabled and inbound chat traffic is accepted.
	StateIdentified
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateIdentified:
		return "identified"
	default:
		return "disconnected"
	}
}

// Effect tells the caller what follow-up action an inbound event requires.
// The controller itself never performs I/O.
type Effect int

const (
	// EffectNone means no follow-up is needed.
	EffectNone Effect = iota
	// EffectRefreshPresence means the online-users panel is stale and the
	// caller should re-query the presence endpoint.
	EffectRefreshPresence
)

// State machine violations surfaced to the UI layer.
var (
	ErrNotConnected      = errors.New("client: no live connection")
	ErrAlreadyIdentified = errors.New("client: username already set")
	ErrNotIdentified     = errors.New("client: username not set yet")
	ErrEmptyUsername     = errors.New("client: username cannot be empty")
	ErrEmptyMessage      = errors.New("client: message text cannot be empty")
)

// Controller drives the client session state machine from inbound protocol
// events and produces the outbound frames for identity claims and message
// sends. It owns the local chat log and the last known presence snapshot.
//
// Controller is not safe for concurrent use: it is designed to be mutated by
// a single sequential event stream (the UI event loop).
type Controller struct {
	state    State
	username string
	log      *ChatLog
	presence []protocol.OnlineUser
}

// NewController creates a controller in the Disconnected state with an empty
// chat log.
func NewController() *Controller {
	return &Controller{
		state: StateDisconnected,
		log:   NewChatLog(),
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	return c.state
}

// Username returns the claimed username, or the empty string before a claim.
func (c *Controller) Username() string {
	return c.username
}

// Log returns the local chat log.
func (c *Controller) Log() *ChatLog {
	return c.log
}

// Presence returns the last known online-users snapshot. It may be stale; it
// is only replaced by ReplacePresence after a successful query.
func (c *Controller) Presence() []protocol.OnlineUser {
	return c.presence
}

// HandleConnected records the transport-level connect acknowledgment,
// moving Disconnected -> Connected. Any other state ignores it.
func (c *Controller) HandleConnected() {
	if c.state == StateDisconnected {
		c.state = StateConnected
	}
}

// HandleDisconnected records transport loss from any state. The chat log and
// presence snapshot are deliberately left as-is: visible history survives an
// outage even though presence may be stale.
func (c *Controller) HandleDisconnected() {
	c.state = StateDisconnected
}

// HandleEnvelope applies one inbound protocol event to the state machine and
// reports the required follow-up effect. Events that are not meaningful in
// the current state are ignored rather than treated as errors.
func (c *Controller) HandleEnvelope(env protocol.Envelope) Effect {
	switch env.Event {
	case protocol.EventLoggedIn:
		// Registration confirmed for this connection: unlock sending and
		// seed the presence panel with one query.
		if c.state != StateConnected {
			return EffectNone
		}
		c.state = StateIdentified
		return EffectRefreshPresence

	case protocol.EventMessage:
		if c.state != StateIdentified {
			return EffectNone
		}
		msg, err := env.DecodeMessage()
		if err != nil {
			return EffectNone
		}
		// The server never echoes a sender's own message back, so no
		// deduplication against optimistic appends is needed here.
		c.log.Append(msg)
		return EffectNone

	case protocol.EventUserListUpdated:
		if c.state != StateIdentified {
			return EffectNone
		}
		return EffectRefreshPresence

	default:
		return EffectNone
	}
}

// ClaimUsername validates a username and produces the setUsername frame to
// send. The state advances only when the server answers with loggedin; until
// then further claims are rejected by the server, not locally.
func (c *Controller) ClaimUsername(name string) ([]byte, error) {
	switch c.state {
	case StateDisconnected:
		return nil, ErrNotConnected
	case StateIdentified:
		return nil, ErrAlreadyIdentified
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		// Malformed claim: rejected locally, nothing is emitted.
		return nil, ErrEmptyUsername
	}

	frame, err := protocol.Encode(protocol.EventSetUsername, protocol.UsernamePayload{Username: trimmed})
	if err != nil {
		return nil, err
	}

	c.username = trimmed
	return frame, nil
}

// ComposeMessage builds a message authored by the local user, appends it to
// the chat log optimistically, and returns it together with the frame to
// send. The append and the network emit are not transactional: if the emit
// fails later, the local log still shows the message.
func (c *Controller) ComposeMessage(text string) (protocol.Message, []byte, error) {
	if c.state != StateIdentified {
		return protocol.Message{}, nil, ErrNotIdentified
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return protocol.Message{}, nil, ErrEmptyMessage
	}

	msg := protocol.NewMessage(c.username, trimmed)
	frame, err := protocol.Encode(protocol.EventMessage, msg)
	if err != nil {
		return protocol.Message{}, nil, err
	}

	c.log.Append(msg)
	return msg, frame, nil
}

// ReplacePresence swaps in a fresh presence snapshot. Called after a
// successful online-users query; on query failure the previous snapshot
// stays in place.
func (c *Controller) ReplacePresence(users []protocol.OnlineUser) {
	c.presence = users
}
