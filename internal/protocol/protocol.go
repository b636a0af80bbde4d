// Package protocol defines the JSON event envelope and payload types
// exchanged between the chat server and its clients over the WebSocket
// channel, plus the response shape of the presence read endpoint.
package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event names carried in the envelope. The set is closed: unknown events are
// ignored by both sides rather than treated as errors.
const (
	// EventSetUsername is the client's identity claim. Data: UsernamePayload.
	EventSetUsername = "setUsername"
	// EventLoggedIn confirms a registration to the claimant only. No data.
	EventLoggedIn = "loggedin"
	// EventUserListUpdated hints that the online-user set changed and the
	// recipient should re-query /online-users. No data.
	EventUserListUpdated = "userListUpdated"
	// EventMessage carries a chat message in either direction. Data: Message.
	EventMessage = "message"
)

// ErrEmptyEvent is returned when an envelope has no event name.
var ErrEmptyEvent = errors.New("protocol: envelope has no event name")

// Envelope is the outer frame of every message on the event channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UsernamePayload is the data of a setUsername event.
type UsernamePayload struct {
	Username string `json:"username"`
}

// Message is a single chat message. It is immutable once created; the server
// relays it unchanged and never inspects ID beyond logging.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// OnlineUser is one entry of the presence snapshot. ID is the server-assigned
// connection id, not a stable user identifier.
type OnlineUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// OnlineUsersResponse is the body of GET /online-users.
type OnlineUsersResponse struct {
	OnlineUsers []OnlineUser `json:"onlineUsers"`
}

// NewMessage builds a message authored by sender at the current wall clock.
// The id is a fresh UUID so it stays unique across reconnects and senders.
func NewMessage(sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Encode marshals an envelope with the given event name and payload. A nil
// payload produces an envelope without a data field.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses a raw frame into an envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	if env.Event == "" {
		return Envelope{}, ErrEmptyEvent
	}
	return env, nil
}

// Username extracts and trims the username of a setUsername envelope.
// A decode failure or blank name yields the empty string; callers treat that
// as a malformed claim and ignore it.
func (e Envelope) Username() string {
	var p UsernamePayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return ""
	}
	return strings.TrimSpace(p.Username)
}

// DecodeMessage extracts the chat message of a message envelope.
func (e Envelope) DecodeMessage() (Message, error) {
	var msg Message
	if err := json.Unmarshal(e.Data, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
