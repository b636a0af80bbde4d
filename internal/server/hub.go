// Package server coordinates client registration, identity claims, message
// broadcast, and connection cleanup for the chat system via the Hub type.
package server

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// Hub manages all WebSocket client connections. It owns the online registry
// (the set of connections that completed an identity claim), relays chat
// messages from a sender to every other registered connection, and notifies
// registered connections when the online-user set changes.
//
// Registry mutations happen only inside the Run loop under the mutex;
// presence queries take a read lock and may run concurrently with delivery.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan BroadcastMessage
	register   chan *Client
	unregister chan *Client
	identify   chan identityClaim
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary
// channels and client map. The returned Hub is ready to manage connections
// once Run is started.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan BroadcastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		identify:   make(chan identityClaim),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// GetBroadcastChan returns the channel used for relaying chat messages.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetBroadcastChan() chan<- BroadcastMessage {
	return h.broadcast
}

// OnlineUsers returns a snapshot of the online registry: every connection
// that currently holds an identity, sorted by username. Connections that have
// not claimed a username are invisible to presence.
func (h *Hub) OnlineUsers() []protocol.OnlineUser {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	users := make([]protocol.OnlineUser, 0, len(h.clients))
	for client := range h.clients {
		if !client.identified {
			continue
		}
		users = append(users, protocol.OnlineUser{ID: client.id, Username: client.username})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Username != users[j].Username {
			return users[i].Username < users[j].Username
		}
		return users[i].ID < users[j].ID
	})
	return users
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	_, exists := h.clients[client]
	if !exists || client.closed {
		return false
	}

	// Try to send the message (channel might be closed, so we need to recover from panic)
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration,
// identity claims, unregistration, and message broadcasting. This method
// should be called in a separate goroutine as it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s connected from %s. Total clients: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case claim := <-h.identify:
			h.handleIdentify(claim)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case broadcastMsg := <-h.broadcast:
			h.handleBroadcast(broadcastMsg)
		}
	}
}

// handleIdentify processes a setUsername claim. Blank usernames never reach
// this point (the client pump drops them), but the claim is still validated
// so direct callers cannot register an empty identity. A connection that
// already holds an identity keeps it: the duplicate claim is ignored and no
// membership notification goes out.
func (h *Hub) handleIdentify(claim identityClaim) {
	if claim.client == nil || claim.username == "" {
		return
	}

	h.mutex.Lock()
	if _, exists := h.clients[claim.client]; !exists {
		h.mutex.Unlock()
		return
	}
	if claim.client.identified {
		h.mutex.Unlock()
		log.Printf("Client %s re-sent an identity claim; ignoring", claim.client.id)
		return
	}
	claim.client.username = claim.username
	claim.client.identified = true
	h.mutex.Unlock()

	log.Printf("Client %s registered as %q", claim.client.id, claim.username)

	confirmation, err := protocol.Encode(protocol.EventLoggedIn, nil)
	if err != nil {
		log.Printf("Error encoding registration confirmation: %v", err)
		return
	}
	if !h.safeSend(claim.client, confirmation) {
		log.Printf("Failed to confirm registration for client %s", claim.client.id)
		return
	}

	// Everyone else re-queries /online-users on this hint.
	h.notifyMembershipChanged(claim.client)
}

// handleUnregister removes a connection from the registry. This runs
// synchronously with channel teardown, so a presence query issued after the
// disconnect was processed can never observe the stale entry.
func (h *Hub) handleUnregister(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client)
	client.closed = true
	wasIdentified := client.identified
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	log.Printf("Client %s disconnected from %s. Total clients: %d", client.id, client.addr, clientCount)

	if wasIdentified {
		h.notifyMembershipChanged(nil)
	}
}

// notifyMembershipChanged pushes a payloadless userListUpdated hint to every
// registered connection except exclude. Delivery is fire-and-forget; a full
// send buffer just means the recipient misses the hint.
func (h *Hub) notifyMembershipChanged(exclude *Client) {
	hint, err := protocol.Encode(protocol.EventUserListUpdated, nil)
	if err != nil {
		log.Printf("Error encoding membership notification: %v", err)
		return
	}

	for _, client := range h.registrySnapshot() {
		if client == exclude {
			continue
		}
		h.safeSend(client, hint)
	}
}

// handleBroadcast relays a chat message to every registered connection except
// the sender. Messages from connections without an identity are dropped.
func (h *Hub) handleBroadcast(broadcastMsg BroadcastMessage) {
	if broadcastMsg.Sender != nil && !h.isIdentified(broadcastMsg.Sender) {
		log.Printf("Dropping message from unidentified client %s", broadcastMsg.Sender.id)
		return
	}

	clients := h.registrySnapshot()
	targetCount := h.calculateTargetCount(len(clients), broadcastMsg.Sender)

	log.Printf("Broadcasting message to %d clients", targetCount)

	clientsToRemove := h.broadcastToClients(clients, broadcastMsg)
	h.removeFailedClients(clientsToRemove)
}

func (h *Hub) isIdentified(client *Client) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.clients[client] && client.identified
}

// registrySnapshot returns a thread-safe snapshot of the registered
// (identified) clients.
func (h *Hub) registrySnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.identified {
			clients = append(clients, client)
		}
	}
	return clients
}

// calculateTargetCount determines how many clients will receive the broadcast
func (h *Hub) calculateTargetCount(clientCount int, sender *Client) int {
	targetCount := clientCount
	if sender != nil {
		targetCount--
	}
	if targetCount < 0 {
		targetCount = 0
	}
	return targetCount
}

// broadcastToClients sends the message to all clients except the sender and returns failed clients
func (h *Hub) broadcastToClients(clients []*Client, broadcastMsg BroadcastMessage) []*Client {
	var clientsToRemove []*Client

	for _, client := range clients {
		if broadcastMsg.Sender != nil && client == broadcastMsg.Sender {
			continue
		}
		if !h.safeSend(client, broadcastMsg.Payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	return clientsToRemove
}

// removeFailedClients removes clients that failed to receive messages and closes their channels
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	removedIdentified := false
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client]; exists {
			delete(h.clients, client)
			client.closed = true
			if client.identified {
				removedIdentified = true
			}
			channelsToClose = append(channelsToClose, client.send)
			log.Printf("Client %s removed due to full send buffer", client.id)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}

	if removedIdentified {
		h.notifyMembershipChanged(nil)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	// Close all client connections
	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines
// to complete. It returns after all client connections are closed and
// goroutines have finished, or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
