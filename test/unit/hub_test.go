package unit

import (
	"testing"
	"time"

	"github.com/irvelervel/apr21-chat/internal/server"
)

// TestNewHub verifies that a fresh hub exposes working channels and an empty
// presence snapshot.
func TestNewHub(t *testing.T) {
	hub := server.NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.GetRegisterChan() == nil {
		t.Error("Register channel is nil")
	}
	if hub.GetUnregisterChan() == nil {
		t.Error("Unregister channel is nil")
	}
	if hub.GetBroadcastChan() == nil {
		t.Error("Broadcast channel is nil")
	}
	if users := hub.OnlineUsers(); len(users) != 0 {
		t.Errorf("Expected empty presence snapshot, got %d entries", len(users))
	}
}

// TestHubShutdown verifies that a running hub shuts down cleanly within the
// timeout.
func TestHubShutdown(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()

	// Give the event loop a moment to start.
	time.Sleep(50 * time.Millisecond)

	if err := hub.Shutdown(2 * time.Second); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

// TestHubShutdownIdempotent verifies that shutting down twice does not hang
// or panic.
func TestHubShutdownIdempotent(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()

	time.Sleep(50 * time.Millisecond)

	if err := hub.Shutdown(2 * time.Second); err != nil {
		t.Errorf("First shutdown returned error: %v", err)
	}
	if err := hub.Shutdown(2 * time.Second); err != nil {
		t.Errorf("Second shutdown returned error: %v", err)
	}
}
