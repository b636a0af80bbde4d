// Package server exposes HTTP handlers, including WebSocket upgrades, the
// online-users presence endpoint, and a health check.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// Handler bundles the HTTP handlers with the hub they operate on. Each
// handler set owns exactly one hub; nothing is shared through package state.
type Handler struct {
	hub *Hub
}

// NewHandler creates a Handler backed by the given hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// WebSocket handles WebSocket upgrade requests and manages client
// connections. It validates that the request uses the GET method, upgrades
// the HTTP connection to WebSocket, creates a new Client instance, and hands
// it to the hub, which launches the read/write pumps.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr)

	// Register the client with the hub; the hub will launch the pump goroutines.
	h.hub.register <- client
}

// OnlineUsers serves the presence snapshot: the username and connection id of
// every identified connection at call time. The response races concurrent
// joins and leaves, which is acceptable; clients re-query on userListUpdated.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Presence endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	response := protocol.OnlineUsersResponse{OnlineUsers: h.hub.OnlineUsers()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error writing online-users response: %v", err)
	}
}

// Health provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat server is running!")
}
