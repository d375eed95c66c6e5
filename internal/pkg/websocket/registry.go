package websocket

import (
	"sync"

	"github.com/ridecrew/ridecrew/internal/pkg/logger"
)

// Registry maps an authenticated user id to their active connection.
// Exactly one entry per user per process; a new connection from the same
// user overwrites the prior entry (last-connect-wins). State is process
// local and rebuilt from zero on restart, so presence is best-effort.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a client, unconditionally overwriting any prior entry
// for the same user
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, ok := r.clients[client.UserID]; ok && prior != client {
		logger.Debug("Replacing existing connection for user",
			logger.String("user_id", client.UserID))
	}
	r.clients[client.UserID] = client
}

// Unregister removes the entry for the user if present; no-op otherwise
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, userID)
}

// Release removes the entry only if it still belongs to this client.
// A stale connection being torn down must not evict the connection that
// replaced it.
func (r *Registry) Release(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.clients[client.UserID]; ok && current == client {
		delete(r.clients, client.UserID)
		return true
	}
	return false
}

// Lookup returns the active connection for a user
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, exists := r.clients[userID]
	return client, exists
}

// IsOnline reports whether the user has an active connection
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.clients[userID]
	return exists
}

// ListActive returns a snapshot of all active connections
func (r *Registry) ListActive() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
