package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// WireConn is the subset of a websocket connection the registry and
// broadcaster need. *gorilla/websocket.Conn satisfies it.
type WireConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Client is one authenticated realtime connection
type Client struct {
	UserID      string
	User        models.UserSnapshot
	ConnectedAt time.Time
	LastSeen    time.Time

	mu   sync.Mutex
	conn WireConn
}

// NewClient wraps an upgraded connection with its authenticated identity
func NewClient(user models.UserSnapshot, conn WireConn) *Client {
	now := time.Now()
	return &Client{
		UserID:      user.ID.String(),
		User:        user,
		ConnectedAt: now,
		LastSeen:    now,
		conn:        conn,
	}
}

// Read blocks for the next message from the client
func (c *Client) Read() ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("connection is closed")
	}
	_, msg, err := c.conn.ReadMessage()
	if err == nil {
		c.mu.Lock()
		c.LastSeen = time.Now()
		c.mu.Unlock()
	}
	return msg, err
}

// Send marshals data into the event envelope and writes it to the
// connection. Writes are serialized; gorilla connections do not support
// concurrent writers. A nil connection is tolerated for tests.
func (c *Client) Send(event string, data interface{}) error {
	if c.conn == nil {
		return nil
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling message data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(models.WSMessage{
		Event: event,
		Data:  rawData,
	})
}

// SendError sends an error event to this client only
func (c *Client) SendError(code, message string) error {
	return c.Send(constants.EventError, models.WSErrorMessage{
		Code:    code,
		Message: message,
	})
}

// Close closes the underlying connection
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
