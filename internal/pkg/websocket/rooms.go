package websocket

import (
	"sync"

	"github.com/ridecrew/ridecrew/internal/pkg/logger"
)

// Broadcaster manages room membership and fans events out to members.
// Membership is per-connection, additive only, and confers no persisted
// state; callers authorize before joining. Process-local: a multi
// instance deployment needs an external pub/sub layer in front of this.
type Broadcaster struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	registry *Registry
}

// NewBroadcaster creates a broadcaster resolving per-user delivery
// through the given registry
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{
		rooms:    make(map[string]map[*Client]struct{}),
		registry: registry,
	}
}

// Join adds the connection to a room
func (b *Broadcaster) Join(client *Client, roomKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	members, ok := b.rooms[roomKey]
	if !ok {
		members = make(map[*Client]struct{})
		b.rooms[roomKey] = members
	}
	members[client] = struct{}{}
}

// Leave removes the connection from a room; no-op if not a member
func (b *Broadcaster) Leave(client *Client, roomKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if members, ok := b.rooms[roomKey]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(b.rooms, roomKey)
		}
	}
}

// LeaveAll removes the connection from every room it joined. Called on
// disconnect.
func (b *Broadcaster) LeaveAll(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for roomKey, members := range b.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(b.rooms, roomKey)
		}
	}
}

// Members returns a snapshot of the room's member connections
func (b *Broadcaster) Members(roomKey string) []*Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	members := make([]*Client, 0, len(b.rooms[roomKey]))
	for c := range b.rooms[roomKey] {
		members = append(members, c)
	}
	return members
}

// BroadcastToRoom delivers an event to every member connection of the
// room except the optionally excluded one
func (b *Broadcaster) BroadcastToRoom(roomKey, event string, data interface{}, exclude *Client) {
	for _, member := range b.Members(roomKey) {
		if member == exclude {
			continue
		}
		if err := member.Send(event, data); err != nil {
			logger.Warn("Error broadcasting to room member",
				logger.String("room", roomKey),
				logger.String("event", event),
				logger.String("user_id", member.UserID),
				logger.Err(err))
		}
	}
}

// DeliverToUser resolves the user through the registry and delivers the
// event to their connection. Returns false when the user is offline; the
// event is dropped. At-most-once, best-effort: durable delivery belongs
// to the notification store, not here.
func (b *Broadcaster) DeliverToUser(userID, event string, data interface{}) bool {
	client, online := b.registry.Lookup(userID)
	if !online {
		return false
	}
	if err := client.Send(event, data); err != nil {
		logger.Warn("Error delivering event to user",
			logger.String("user_id", userID),
			logger.String("event", event),
			logger.Err(err))
	}
	return true
}
