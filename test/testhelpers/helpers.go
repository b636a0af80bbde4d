// Package testhelpers provides common utilities and helper functions for
// testing the chat server.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests: starting a fully wired server, speaking the chat
// protocol over real WebSocket connections, and querying the presence
// endpoint.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/irvelervel/apr21-chat/internal/protocol"
	"github.com/irvelervel/apr21-chat/internal/server"
)

// TestOrigin is the origin presented by test WebSocket clients; server
// configs in tests must allow it.
const TestOrigin = "http://localhost:8080"

// StartChatServer starts a hub and an httptest server wired with the full
// route set, and registers cleanup for both. The active config is reset to
// defaults (which allow TestOrigin) before starting.
func StartChatServer(t *testing.T) (*server.Hub, *httptest.Server) {
	t.Helper()

	server.SetConfig(nil)

	hub := server.NewHub()
	go hub.Run()

	testServer := httptest.NewServer(server.SetupRoutes(hub))

	t.Cleanup(func() {
		testServer.Close()
		if err := hub.Shutdown(5 * time.Second); err != nil {
			t.Logf("Hub shutdown returned: %v", err)
		}
		server.SetConfig(nil)
	})

	return hub, testServer
}

// BuildWebSocketURL converts an httptest server URL into the ws:// URL of
// the event channel endpoint.
func BuildWebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// the allowed test origin. It returns the connection or an error if the
// connection fails.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", TestOrigin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// MustConnect connects to the event channel and fails the test on error.
func MustConnect(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, err := ConnectWebSocket(wsURL)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// ClaimUsername sends a setUsername event over the connection.
func ClaimUsername(t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()
	frame, err := protocol.Encode(protocol.EventSetUsername, protocol.UsernamePayload{Username: username})
	if err != nil {
		t.Fatalf("Failed to encode identity claim: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("Failed to send identity claim: %v", err)
	}
}

// SendChatMessage builds a chat message from sender and text, sends it, and
// returns the sent message for later assertions.
func SendChatMessage(t *testing.T, conn *websocket.Conn, sender, text string) protocol.Message {
	t.Helper()
	msg := protocol.NewMessage(sender, text)
	frame, err := protocol.Encode(protocol.EventMessage, msg)
	if err != nil {
		t.Fatalf("Failed to encode chat message: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("Failed to send chat message: %v", err)
	}
	return msg
}

// ReceiveEnvelope reads the next envelope from the connection, failing the
// test if nothing well-formed arrives within the timeout.
func ReceiveEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) protocol.Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read envelope: %v", err)
	}
	env, err := protocol.Decode(raw)
	if err != nil {
		t.Fatalf("Received frame that does not decode: %v (%s)", err, raw)
	}
	return env
}

// ExpectEvent asserts that the next envelope on the connection carries the
// given event name and returns it.
func ExpectEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) protocol.Envelope {
	t.Helper()
	env := ReceiveEnvelope(t, conn, timeout)
	if env.Event != event {
		t.Fatalf("Expected event %q, got %q", event, env.Event)
	}
	return env
}

// ExpectNoEvent asserts that nothing arrives on the connection within the
// timeout.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no event, received %s", raw)
	}
}

// FetchOnlineUsers queries the presence endpoint and returns the snapshot.
func FetchOnlineUsers(t *testing.T, baseURL string) []protocol.OnlineUser {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/online-users")
	if err != nil {
		t.Fatalf("Presence query failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Presence query returned status %d", resp.StatusCode)
	}

	var payload protocol.OnlineUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode presence response: %v", err)
	}
	return payload.OnlineUsers
}

// Usernames extracts the username column of a presence snapshot.
func Usernames(users []protocol.OnlineUser) []string {
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Username)
	}
	return names
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}
