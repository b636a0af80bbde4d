// Package server wires HTTP handlers into a ServeMux for the chat
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes for the given hub: health check, WebSocket endpoint, and the
// online-users presence endpoint.
func SetupRoutes(hub *Hub) *http.ServeMux {
	h := NewHandler(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Health)
	mux.HandleFunc("/ws", h.WebSocket)
	mux.HandleFunc("/online-users", h.OnlineUsers)
	return mux
}
