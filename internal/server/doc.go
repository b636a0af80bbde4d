// Package server implements the chat server core: session management for
// WebSocket connections, identity registration, message broadcast, and the
// online-users presence endpoint.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows.
package server
