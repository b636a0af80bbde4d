package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irvelervel/apr21-chat/internal/protocol"
	"github.com/irvelervel/apr21-chat/internal/server"
	"github.com/irvelervel/apr21-chat/test/testhelpers"
)

// TestGracefulShutdownWithClients verifies that the hub shuts down within the
// timeout while clients are connected, and that those clients observe the
// connection closing.
func TestGracefulShutdownWithClients(t *testing.T) {
	server.SetConfig(nil)
	t.Cleanup(func() { server.SetConfig(nil) })

	hub := server.NewHub()
	go hub.Run()

	testServer := httptest.NewServer(server.SetupRoutes(hub))
	defer testServer.Close()

	wsURL := testhelpers.BuildWebSocketURL(testServer.URL)

	alice := testhelpers.MustConnect(t, wsURL)
	testhelpers.ClaimUsername(t, alice, "alice")
	testhelpers.ExpectEvent(t, alice, protocol.EventLoggedIn, 2*time.Second)

	bob := testhelpers.MustConnect(t, wsURL)
	testhelpers.ClaimUsername(t, bob, "bob")
	testhelpers.ExpectEvent(t, bob, protocol.EventLoggedIn, 2*time.Second)
	testhelpers.ExpectEvent(t, alice, protocol.EventUserListUpdated, 2*time.Second)

	start := time.Now()
	if err := hub.Shutdown(5 * time.Second); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Shutdown exceeded timeout: %v", elapsed)
	}

	// Both connections are closed from the server side; subsequent reads
	// must fail.
	if err := bob.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("Expected read to fail after shutdown")
	}
}

// TestShutdownWithoutClients verifies shutdown of an idle hub.
func TestShutdownWithoutClients(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()

	time.Sleep(50 * time.Millisecond)

	if err := hub.Shutdown(2 * time.Second); err != nil {
		t.Errorf("Shutdown of idle hub returned error: %v", err)
	}
}
