package websocket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

func TestBroadcaster_RoomIsolation(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	inRoom, inConn := newTestClient()
	outside, outConn := newTestClient()

	broadcaster.Join(inRoom, constants.RoomTripChat("trip-1"))
	broadcaster.Join(outside, constants.RoomTripChat("trip-2"))

	broadcaster.BroadcastToRoom(constants.RoomTripChat("trip-1"), constants.EventNewMessage, map[string]string{"content": "hi"}, nil)

	assert.Equal(t, []string{constants.EventNewMessage}, inConn.events())
	assert.Empty(t, outConn.events())
}

func TestBroadcaster_BroadcastExcludesSender(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	sender, senderConn := newTestClient()
	peer, peerConn := newTestClient()
	room := constants.RoomTripLocation("trip-1")
	broadcaster.Join(sender, room)
	broadcaster.Join(peer, room)

	broadcaster.BroadcastToRoom(room, constants.EventUserLocationUpdate, nil, sender)

	assert.Empty(t, senderConn.events())
	assert.Equal(t, []string{constants.EventUserLocationUpdate}, peerConn.events())
}

func TestBroadcaster_DoubleJoinDeliversOnce(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	client, conn := newTestClient()
	room := constants.RoomTripChat("trip-1")
	broadcaster.Join(client, room)
	broadcaster.Join(client, room)

	broadcaster.BroadcastToRoom(room, constants.EventNewMessage, nil, nil)

	assert.Len(t, conn.events(), 1)
}

func TestBroadcaster_LeaveStopsDelivery(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	client, conn := newTestClient()
	room := constants.RoomTripChat("trip-1")
	broadcaster.Join(client, room)
	broadcaster.Leave(client, room)

	broadcaster.BroadcastToRoom(room, constants.EventNewMessage, nil, nil)

	assert.Empty(t, conn.events())
}

func TestBroadcaster_LeaveAllClearsEveryRoom(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	client, conn := newTestClient()
	chat := constants.RoomTripChat("trip-1")
	location := constants.RoomTripLocation("trip-1")
	broadcaster.Join(client, chat)
	broadcaster.Join(client, location)

	broadcaster.LeaveAll(client)

	broadcaster.BroadcastToRoom(chat, constants.EventNewMessage, nil, nil)
	broadcaster.BroadcastToRoom(location, constants.EventUserLocationUpdate, nil, nil)

	assert.Empty(t, conn.events())
	assert.Empty(t, broadcaster.Members(chat))
	assert.Empty(t, broadcaster.Members(location))
}

func TestBroadcaster_DeliverToUser(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	client, conn := newTestClient()
	registry.Register(client)

	assert.True(t, broadcaster.DeliverToUser(client.UserID, constants.EventNotification, nil))
	assert.Equal(t, []string{constants.EventNotification}, conn.events())
}

func TestBroadcaster_DeliverToOfflineUserDrops(t *testing.T) {
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	assert.False(t, broadcaster.DeliverToUser("ghost", constants.EventNotification, nil))
}
