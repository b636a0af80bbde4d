// Package server manages individual WebSocket clients, handling read/write
// pumps, inbound event dispatch, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// Client represents one live connection in the chat system. The connection id
// is assigned at upgrade time; the username is bound later by the hub when an
// identity claim is accepted. username and identified are guarded by the
// hub's mutex.
type Client struct {
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	addr           string
	id             string
	username       string
	identified     bool
	closed         bool
	maxMessageSize int64
}

// NewClient creates a new Client instance with the provided WebSocket
// connection, hub reference, and client address. The client's send channel is
// buffered to handle message queuing.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := currentConfig()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Client{
		conn:           conn,
		send:           make(chan []byte, 256),
		hub:            hub,
		addr:           addr,
		id:             uuid.NewString(),
		closed:         false,
		maxMessageSize: cfg.MaxMessageSize,
	}
}

// ID returns the server-assigned connection identifier.
func (c *Client) ID() string {
	return c.id
}

// GetSendChan returns the client's send channel for reading outgoing messages.
// This channel is read-only from the caller's perspective.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
		log.Printf("Error setting initial read deadline for %s: %v", c.addr, err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			log.Printf("Error setting read deadline in pong handler for %s: %v", c.addr, err)
		}
		return nil
	})
}

// handleReadError logs appropriate error messages based on the error type
// and returns true if the read loop should break
func (c *Client) handleReadError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, websocket.ErrReadLimit) {
		log.Printf("Message from %s exceeded maximum size of %d bytes", c.addr, c.maxMessageSize)
		return true
	}

	// Check for expected close scenarios
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		log.Printf("Client %s disconnected: %v", c.addr, err)
		return true
	}

	// Check for network errors
	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		log.Printf("Client %s connection closed: %v", c.addr, err)
		return true
	}

	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig) {
		log.Printf("Unexpected WebSocket error from %s: %v", c.addr, err)
		return true
	}

	// Generic error case
	log.Printf("WebSocket read error from %s: %v", c.addr, err)
	return true
}

// dispatchFrame decodes an inbound envelope and routes it to the hub.
// Malformed frames and unknown events are ignored rather than terminating
// the connection.
func (c *Client) dispatchFrame(raw []byte) bool {
	env, err := protocol.Decode(raw)
	if err != nil {
		log.Printf("Invalid frame from %s: %v", c.addr, err)
		return false
	}

	switch env.Event {
	case protocol.EventSetUsername:
		username := env.Username()
		if username == "" {
			// Malformed claim: no event is emitted, the client may retry.
			log.Printf("Ignoring empty identity claim from %s", c.addr)
			return false
		}
		c.hub.identify <- identityClaim{client: c, username: username}
		return true

	case protocol.EventMessage:
		return c.relayMessage(env)

	default:
		log.Printf("Ignoring unknown event %q from %s", env.Event, c.addr)
		return false
	}
}

// relayMessage normalizes a chat message envelope and hands it to the hub
// for fan-out. The hub decides whether the sender is registered.
func (c *Client) relayMessage(env protocol.Envelope) bool {
	msg, err := env.DecodeMessage()
	if err != nil {
		log.Printf("Invalid message payload from %s: %v", c.addr, err)
		return false
	}

	normalized, err := protocol.Encode(protocol.EventMessage, msg)
	if err != nil {
		log.Printf("Error normalizing message from %s: %v", c.addr, err)
		return false
	}

	log.Printf("Received message %s from %s", msg.ID, c.addr)
	c.hub.broadcast <- BroadcastMessage{Sender: c, Payload: normalized}
	return true
}

func (c *Client) readPump() {
	defer func() {
		// During hub shutdown the event loop is gone; skip the unregister
		// handoff instead of blocking on it.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error closing connection in readPump: %v", err)
			}
		}
	}()

	c.setupReadConnection()

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if c.handleReadError(err) {
				break
			}
		}

		c.dispatchFrame(rawMessage)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		return c.handleMessage(message, ok)
	case <-ticker.C:
		return c.handlePing()
	case <-c.hub.ctx.Done():
		return false
	}
}

// closeConnection safely closes the WebSocket connection with proper error handling
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil {
		// Only log unexpected connection close errors
		if !isExpectedCloseError(err) {
			log.Printf("Error closing connection in writePump: %v", err)
		}
	}
}

// handleMessage processes outgoing messages and returns false if the connection should be closed
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		log.Printf("Error setting write deadline for %s: %v", c.addr, err)
		return false
	}

	if !ok {
		return c.writeCloseMessage()
	}

	return c.writeTextMessage(message)
}

// writeCloseMessage sends a close message to the client
func (c *Client) writeCloseMessage() bool {
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing close message to %s: %v", c.addr, err)
		}
	}
	return false
}

// writeTextMessage writes a single text frame. Frames are never coalesced:
// each envelope must arrive as its own WebSocket message so client-side
// decoding stays frame-aligned.
func (c *Client) writeTextMessage(message []byte) bool {
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		log.Printf("Error writing message to %s: %v", c.addr, err)
		return false
	}
	return true
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		log.Printf("Error setting write deadline for ping to %s: %v", c.addr, err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		log.Printf("Error writing ping message to %s: %v", c.addr, err)
		return false
	}
	return true
}
