package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/irvelervel/apr21-chat/internal/protocol"
)

// PresenceClient queries the server's online-users read endpoint. It is the
// pull half of the push-then-pull presence pattern: userListUpdated events
// are only hints, this query returns the authoritative snapshot.
type PresenceClient struct {
	baseURL string
	http    *http.Client
}

// NewPresenceClient creates a presence client for the given HTTP base URL.
func NewPresenceClient(baseURL string) *PresenceClient {
	return &PresenceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Fetch returns the current online-users snapshot. On failure the caller
// keeps its last known snapshot; there is no retry here.
func (p *PresenceClient) Fetch(ctx context.Context) ([]protocol.OnlineUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/online-users", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("client: build presence request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: presence query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client: presence query returned status %d", resp.StatusCode)
	}

	var payload protocol.OnlineUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("client: decode presence response: %w", err)
	}

	return payload.OnlineUsers, nil
}
