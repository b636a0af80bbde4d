// Package client implements the chat client core: the session state machine,
// the local chat log, the owned transport session, and the presence query
// client. The package is UI-agnostic; terminal rendering lives elsewhere.
package client

import "github.com/irvelervel/apr21-chat/internal/protocol"

// ChatLog is the client's append-only message sequence. Order is local
// arrival order: optimistic appends of locally-sent messages interleave with
// server-relayed messages from other participants.
//
// ChatLog is not safe for concurrent use. The controller that owns it is
// driven by a single sequential event stream, so no locking is needed.
type ChatLog struct {
	messages []protocol.Message
}

// NewChatLog creates an empty chat log.
func NewChatLog() *ChatLog {
	return &ChatLog{}
}

// Append adds a message to the end of the log. This is the only mutation the
// log supports; entries are never updated or removed.
func (l *ChatLog) Append(msg protocol.Message) {
	l.messages = append(l.messages, msg)
}

// Messages returns a copy of the log contents in arrival order.
func (l *ChatLog) Messages() []protocol.Message {
	out := make([]protocol.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len reports the number of messages in the log.
func (l *ChatLog) Len() int {
	return len(l.messages)
}
