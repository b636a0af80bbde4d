package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

const handshakeTimeout = 5 * time.Second

// Session owns one live connection to the chat server. It replaces the
// module-scoped socket handle of earlier designs: whoever needs to send or
// receive holds a *Session, and its lifecycle is scoped to the client
// session, not the process.
type Session struct {
	conn *websocket.Conn
}

// Dial opens the event channel against the server's /ws endpoint. serverURL
// is the HTTP base URL (for example http://localhost:8080); the scheme is
// rewritten for the WebSocket handshake.
func Dial(ctx context.Context, serverURL string) (*Session, error) {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	// The server enforces an origin allowlist; present the HTTP base URL.
	headers := http.Header{}
	headers.Set("Origin", serverURL)

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", wsURL, err)
	}

	return &Session{conn: conn}, nil
}

// Send writes one encoded frame to the channel.
func (s *Session) Send(frame []byte) error {
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Receive blocks until the next well-formed envelope arrives. Malformed
// frames are skipped; a transport error ends the session and is returned.
func (s *Session) Receive() (protocol.Envelope, error) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return protocol.Envelope{}, err
		}

		env, err := protocol.Decode(raw)
		if err != nil {
			continue
		}
		return env, nil
	}
}

// Close tears down the connection. Safe to call once the session is no
// longer needed; subsequent Receive calls return an error.
func (s *Session) Close() error {
	// Best effort; the server also handles abrupt drops.
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// websocketURL rewrites an HTTP base URL into the ws/wss URL of the event
// channel endpoint.
func websocketURL(serverURL string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("client: invalid server URL %q: %w", serverURL, err)
	}

	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("client: unsupported server URL scheme %q", parsed.Scheme)
	}

	parsed.Path = "/ws"
	return parsed.String(), nil
}
