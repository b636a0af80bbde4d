package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/irvelervel/apr21-chat/internal/protocol"
	"github.com/irvelervel/apr21-chat/test/testhelpers"
)

// TestServerEndpoints smoke-tests every route on a fully wired server.
func TestServerEndpoints(t *testing.T) {
	_, testServer := testhelpers.StartChatServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"health check", http.MethodGet, "/", http.StatusOK},
		{"presence snapshot", http.MethodGet, "/online-users", http.StatusOK},
		{"presence rejects post", http.MethodPost, "/online-users", http.StatusMethodNotAllowed},
		{"websocket rejects plain request", http.MethodGet, "/ws", http.StatusBadRequest},
		{"websocket rejects post", http.MethodPost, "/ws", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testhelpers.MakeRequest(t, tt.method, testServer.URL+tt.path)
			defer func() { _ = resp.Body.Close() }()
			testhelpers.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}
}

// TestPresenceTracksChurn verifies the snapshot across a series of joins and
// leaves.
func TestPresenceTracksChurn(t *testing.T) {
	_, testServer := testhelpers.StartChatServer(t)
	wsURL := testhelpers.BuildWebSocketURL(testServer.URL)

	first := testhelpers.MustConnect(t, wsURL)
	testhelpers.ClaimUsername(t, first, "carol")
	testhelpers.ExpectEvent(t, first, protocol.EventLoggedIn, 2*time.Second)

	second := testhelpers.MustConnect(t, wsURL)
	testhelpers.ClaimUsername(t, second, "dave")
	testhelpers.ExpectEvent(t, second, protocol.EventLoggedIn, 2*time.Second)
	testhelpers.ExpectEvent(t, first, protocol.EventUserListUpdated, 2*time.Second)

	names := testhelpers.Usernames(testhelpers.FetchOnlineUsers(t, testServer.URL))
	if len(names) != 2 || names[0] != "carol" || names[1] != "dave" {
		t.Errorf("Expected snapshot [carol dave], got %v", names)
	}

	if err := second.Close(); err != nil {
		t.Fatalf("Failed to close connection: %v", err)
	}
	testhelpers.ExpectEvent(t, first, protocol.EventUserListUpdated, 2*time.Second)

	names = testhelpers.Usernames(testhelpers.FetchOnlineUsers(t, testServer.URL))
	if len(names) != 1 || names[0] != "carol" {
		t.Errorf("Expected snapshot [carol], got %v", names)
	}
}
