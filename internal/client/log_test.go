package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

func TestChatLogPreservesArrivalOrder(t *testing.T) {
	log := NewChatLog()
	log.Append(protocol.Message{ID: "m-1", Sender: "alice", Text: "first"})
	log.Append(protocol.Message{ID: "m-2", Sender: "bob", Text: "second"})

	messages := log.Messages()
	assert.Equal(t, 2, log.Len())
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
}

func TestChatLogMessagesReturnsCopy(t *testing.T) {
	log := NewChatLog()
	log.Append(protocol.Message{ID: "m-1", Sender: "alice", Text: "original"})

	snapshot := log.Messages()
	snapshot[0].Text = "tampered"

	assert.Equal(t, "original", log.Messages()[0].Text)
}
