package websocket_test

import (
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// fakeConn records frames written to it
type fakeConn struct {
	mu     sync.Mutex
	frames []models.WSMessage
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, v.(models.WSMessage))
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, io.EOF
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		events = append(events, fr.Event)
	}
	return events
}

func newTestClient() (*ws.Client, *fakeConn) {
	conn := &fakeConn{}
	client := ws.NewClient(models.UserSnapshot{ID: uuid.New(), Name: "rider"}, conn)
	return client, conn
}

func TestRegistry_RegisterAndPresence(t *testing.T) {
	registry := ws.NewRegistry()
	client, _ := newTestClient()

	assert.False(t, registry.IsOnline(client.UserID))

	registry.Register(client)
	assert.True(t, registry.IsOnline(client.UserID))

	got, ok := registry.Lookup(client.UserID)
	assert.True(t, ok)
	assert.Same(t, client, got)

	registry.Unregister(client.UserID)
	assert.False(t, registry.IsOnline(client.UserID))
}

func TestRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	registry := ws.NewRegistry()
	registry.Unregister("nobody")
	assert.False(t, registry.IsOnline("nobody"))
}

func TestRegistry_SecondRegisterOverwrites(t *testing.T) {
	registry := ws.NewRegistry()
	first, _ := newTestClient()

	second := ws.NewClient(first.User, &fakeConn{})

	registry.Register(first)
	registry.Register(second)

	got, ok := registry.Lookup(first.UserID)
	assert.True(t, ok)
	assert.Same(t, second, got, "last connect wins")
	assert.Len(t, registry.ListActive(), 1)
}

func TestRegistry_ReleaseOnlyRemovesOwnEntry(t *testing.T) {
	registry := ws.NewRegistry()
	first, _ := newTestClient()
	second := ws.NewClient(first.User, &fakeConn{})

	registry.Register(first)
	registry.Register(second)

	// Stale connection tearing down must not evict its replacement
	assert.False(t, registry.Release(first))
	assert.True(t, registry.IsOnline(first.UserID))

	assert.True(t, registry.Release(second))
	assert.False(t, registry.IsOnline(first.UserID))
}

func TestRegistry_ListActiveIsSnapshot(t *testing.T) {
	registry := ws.NewRegistry()
	a, _ := newTestClient()
	b, _ := newTestClient()
	registry.Register(a)
	registry.Register(b)

	snapshot := registry.ListActive()
	assert.Len(t, snapshot, 2)

	registry.Unregister(a.UserID)
	assert.Len(t, snapshot, 2, "snapshot is not live")
	assert.Len(t, registry.ListActive(), 1)
}
