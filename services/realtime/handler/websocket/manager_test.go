package websocket_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
	handler "github.com/ridecrew/ridecrew/services/realtime/handler/websocket"
)

// scriptedConn feeds queued frames to the read loop and records writes
type scriptedConn struct {
	mu       sync.Mutex
	inbound  [][]byte
	outbound []models.WSMessage
	closed   bool
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return 0, nil, io.EOF
	}
	frame := c.inbound[0]
	c.inbound = c.inbound[1:]
	return 1, frame, nil
}

func (c *scriptedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbound = append(c.outbound, v.(models.WSMessage))
	return nil
}

func (c *scriptedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *scriptedConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := make([]string, 0, len(c.outbound))
	for _, frame := range c.outbound {
		events = append(events, frame.Event)
	}
	return events
}

func (c *scriptedConn) find(event string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, frame := range c.outbound {
		if frame.Event == event {
			return frame.Data, true
		}
	}
	return nil, false
}

func frame(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(models.WSMessage{Event: event, Data: data})
	require.NoError(t, err)
	return raw
}

type broadcastCall struct {
	room     string
	event    string
	excluded *ws.Client
}

type deliverCall struct {
	userID string
	event  string
}

// recordingBroadcaster records fan-out calls instead of writing frames
type recordingBroadcaster struct {
	joins    map[*ws.Client][]string
	leaves   map[*ws.Client][]string
	leftAll  []*ws.Client
	sent     []broadcastCall
	delivers []deliverCall
	online   map[string]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		joins:  make(map[*ws.Client][]string),
		leaves: make(map[*ws.Client][]string),
		online: make(map[string]bool),
	}
}

func (b *recordingBroadcaster) Join(client *ws.Client, roomKey string) {
	b.joins[client] = append(b.joins[client], roomKey)
}

func (b *recordingBroadcaster) Leave(client *ws.Client, roomKey string) {
	b.leaves[client] = append(b.leaves[client], roomKey)
}

func (b *recordingBroadcaster) LeaveAll(client *ws.Client) {
	b.leftAll = append(b.leftAll, client)
}

func (b *recordingBroadcaster) BroadcastToRoom(roomKey, event string, _ interface{}, exclude *ws.Client) {
	b.sent = append(b.sent, broadcastCall{room: roomKey, event: event, excluded: exclude})
}

func (b *recordingBroadcaster) DeliverToUser(userID, event string, _ interface{}) bool {
	b.delivers = append(b.delivers, deliverCall{userID: userID, event: event})
	return b.online[userID]
}

type fakeTripStore struct {
	trips    map[uuid.UUID]*models.Trip
	statuses map[uuid.UUID]models.TripStatus
	stats    map[uuid.UUID]models.TripStats
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{
		trips:    make(map[uuid.UUID]*models.Trip),
		statuses: make(map[uuid.UUID]models.TripStatus),
		stats:    make(map[uuid.UUID]models.TripStats),
	}
}

func (f *fakeTripStore) GetTrip(_ context.Context, tripID uuid.UUID) (*models.Trip, error) {
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, apperr.NotFound("trip %s not found", tripID)
	}
	return trip, nil
}

func (f *fakeTripStore) UpdateTripStatus(_ context.Context, tripID uuid.UUID, status models.TripStatus) error {
	f.statuses[tripID] = status
	return nil
}

func (f *fakeTripStore) UpdateTripStats(_ context.Context, tripID uuid.UUID, stats models.TripStats) error {
	f.stats[tripID] = stats
	return nil
}

type fakeMessageStore struct {
	saved      []models.Message
	history    []models.Message
	err        error
	historyErr error
}

func (f *fakeMessageStore) SaveMessage(_ context.Context, message *models.Message) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *message)
	return nil
}

func (f *fakeMessageStore) GetTripMessages(_ context.Context, _ uuid.UUID, _ int) ([]models.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

type fakeNotificationStore struct {
	saved   []models.Notification
	read    []uuid.UUID
	readErr error
}

func (f *fakeNotificationStore) SaveNotification(_ context.Context, notification *models.Notification) error {
	f.saved = append(f.saved, *notification)
	return nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, notificationID, _ uuid.UUID) error {
	if f.readErr != nil {
		return f.readErr
	}
	f.read = append(f.read, notificationID)
	return nil
}

type fakeUserStore struct {
	snapshots map[uuid.UUID]models.UserSnapshot
	touched   []uuid.UUID
}

func (f *fakeUserStore) GetUserSnapshot(_ context.Context, userID uuid.UUID) (*models.UserSnapshot, error) {
	snapshot, ok := f.snapshots[userID]
	if !ok {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return &snapshot, nil
}

func (f *fakeUserStore) TouchLastSeen(_ context.Context, userID uuid.UUID, _ time.Time) error {
	f.touched = append(f.touched, userID)
	return nil
}

type realtimeFixture struct {
	handler       *handler.Handler
	registry      *ws.Registry
	broadcaster   *recordingBroadcaster
	trips         *fakeTripStore
	messages      *fakeMessageStore
	notifications *fakeNotificationStore
	users         *fakeUserStore

	rider  models.UserSnapshot
	tripID uuid.UUID
}

func newRealtimeFixture(t *testing.T) *realtimeFixture {
	t.Helper()

	f := &realtimeFixture{
		registry:      ws.NewRegistry(),
		broadcaster:   newRecordingBroadcaster(),
		trips:         newFakeTripStore(),
		messages:      &fakeMessageStore{},
		notifications: &fakeNotificationStore{},
		users:         &fakeUserStore{snapshots: make(map[uuid.UUID]models.UserSnapshot)},
		rider:         models.UserSnapshot{ID: uuid.New(), Name: "asha"},
		tripID:        uuid.New(),
	}
	f.trips.trips[f.tripID] = &models.Trip{
		ID:        f.tripID,
		Organizer: f.rider.ID,
		Status:    models.TripStatusPlanned,
	}
	f.handler = handler.NewHandler(f.registry, f.broadcaster, f.trips, f.messages, f.notifications, f.users)
	return f
}

// run feeds the frames through a fresh connection and returns the
// recorded conn after the read loop finishes
func (f *realtimeFixture) run(t *testing.T, frames ...[]byte) *scriptedConn {
	t.Helper()
	conn := &scriptedConn{inbound: frames}
	client := ws.NewClient(f.rider, conn)
	require.NoError(t, f.handler.HandleClient(client))
	return conn
}

func TestHandleClient_ConnectAndDisconnect(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t)

	assert.Equal(t, []string{constants.EventConnected}, conn.events())
	assert.False(t, f.registry.IsOnline(f.rider.ID.String()), "unregistered after read loop ends")
	assert.Len(t, f.broadcaster.leftAll, 1)
	assert.Equal(t, []uuid.UUID{f.rider.ID}, f.users.touched)
}

func TestHandleClient_EnrichesSnapshotFromStore(t *testing.T) {
	f := newRealtimeFixture(t)
	f.users.snapshots[f.rider.ID] = models.UserSnapshot{
		ID:     f.rider.ID,
		Name:   "Asha K",
		Avatar: "https://cdn.example.com/asha.png",
	}

	conn := f.run(t)

	data, ok := conn.find(constants.EventConnected)
	require.True(t, ok)
	var connected struct {
		User models.UserSnapshot `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &connected))
	assert.Equal(t, "Asha K", connected.User.Name)
	assert.NotEmpty(t, connected.User.Avatar)
}

func TestHandleClient_MalformedFrame(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, []byte("not json"))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Equal(t, constants.ErrorInvalidFormat, errEvent.Code)
}

func TestHandleClient_UnknownEventAnswersError(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, frame(t, "warp_drive", map[string]string{}))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Contains(t, errEvent.Message, "warp_drive")
}

func TestJoinTripChat_MemberJoinsAndRoomIsAnnounced(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, frame(t, constants.EventJoinTripChat, map[string]string{"tripId": f.tripID.String()}))

	_, joined := conn.find(constants.EventJoinedTripChat)
	assert.True(t, joined)

	room := constants.RoomTripChat(f.tripID.String())
	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, room, f.broadcaster.sent[0].room)
	assert.Equal(t, constants.EventUserJoinedChat, f.broadcaster.sent[0].event)
	assert.NotNil(t, f.broadcaster.sent[0].excluded, "joiner does not hear their own announcement")
}

func TestJoinTripChat_ReplaysRecentHistory(t *testing.T) {
	f := newRealtimeFixture(t)
	f.messages.history = []models.Message{
		{ID: uuid.New(), TripID: f.tripID, Content: "see you at the fuel stop", Type: models.MessageTypeText},
		{ID: uuid.New(), TripID: f.tripID, Content: "rolling out", Type: models.MessageTypeText},
	}

	conn := f.run(t, frame(t, constants.EventJoinTripChat, map[string]string{"tripId": f.tripID.String()}))

	data, ok := conn.find(constants.EventJoinedTripChat)
	require.True(t, ok)
	var joined struct {
		RecentMessages []models.Message `json:"recentMessages"`
	}
	require.NoError(t, json.Unmarshal(data, &joined))
	require.Len(t, joined.RecentMessages, 2)
	assert.Equal(t, "see you at the fuel stop", joined.RecentMessages[0].Content)
}

func TestJoinTripChat_HistoryFailureStillJoins(t *testing.T) {
	f := newRealtimeFixture(t)
	f.messages.historyErr = assert.AnError

	conn := f.run(t, frame(t, constants.EventJoinTripChat, map[string]string{"tripId": f.tripID.String()}))

	_, joined := conn.find(constants.EventJoinedTripChat)
	assert.True(t, joined)

	joinedRooms := make([]string, 0)
	for _, rooms := range f.broadcaster.joins {
		joinedRooms = append(joinedRooms, rooms...)
	}
	assert.Contains(t, joinedRooms, constants.RoomTripChat(f.tripID.String()))
}

func TestJoinTripChat_NonMemberRejected(t *testing.T) {
	f := newRealtimeFixture(t)
	f.trips.trips[f.tripID].Organizer = uuid.New()

	conn := f.run(t, frame(t, constants.EventJoinTripChat, map[string]string{"tripId": f.tripID.String()}))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Equal(t, constants.ErrorUnauthorized, errEvent.Code)
	assert.Empty(t, f.broadcaster.joins)
}

func TestJoinTripChat_UnknownTrip(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, frame(t, constants.EventJoinTripChat, map[string]string{"tripId": uuid.NewString()}))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Equal(t, constants.ErrorNotFound, errEvent.Code)
}

func TestSendMessage_PersistsThenEchoesToFullRoom(t *testing.T) {
	f := newRealtimeFixture(t)

	f.run(t, frame(t, constants.EventSendMessage, map[string]string{
		"tripId":  f.tripID.String(),
		"content": "regroup at the fuel stop",
	}))

	require.Len(t, f.messages.saved, 1)
	saved := f.messages.saved[0]
	assert.Equal(t, f.rider.ID, saved.SenderID)
	assert.Equal(t, models.MessageTypeText, saved.Type)

	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, constants.EventNewMessage, f.broadcaster.sent[0].event)
	assert.Nil(t, f.broadcaster.sent[0].excluded, "sender receives the server echo")
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, frame(t, constants.EventSendMessage, map[string]string{
		"tripId":  f.tripID.String(),
		"content": "   ",
	}))

	_, hasError := conn.find(constants.EventError)
	assert.True(t, hasError)
	assert.Empty(t, f.messages.saved)
	assert.Empty(t, f.broadcaster.sent)
}

func TestSendMessage_PersistenceFailureAbortsBroadcast(t *testing.T) {
	f := newRealtimeFixture(t)
	f.messages.err = assert.AnError

	conn := f.run(t, frame(t, constants.EventSendMessage, map[string]string{
		"tripId":  f.tripID.String(),
		"content": "hello",
	}))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Equal(t, constants.ErrorInternalError, errEvent.Code)
	assert.Equal(t, "internal error", errEvent.Message, "internal detail is masked")
	assert.Empty(t, f.broadcaster.sent)
}

func TestTyping_ExcludesSenderAndSkipsPersistence(t *testing.T) {
	f := newRealtimeFixture(t)

	f.run(t, frame(t, constants.EventTypingStart, map[string]string{"tripId": f.tripID.String()}))

	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, constants.EventUserTyping, f.broadcaster.sent[0].event)
	assert.NotNil(t, f.broadcaster.sent[0].excluded)
	assert.Empty(t, f.messages.saved)
}

func TestUpdateLocation_BroadcastsToLocationRoom(t *testing.T) {
	f := newRealtimeFixture(t)

	f.run(t, frame(t, constants.EventUpdateLocation, map[string]interface{}{
		"tripId": f.tripID.String(),
		"lat":    28.01,
		"lng":    77.01,
		"speed":  42.0,
	}))

	require.Len(t, f.broadcaster.sent, 1)
	assert.Equal(t, constants.RoomTripLocation(f.tripID.String()), f.broadcaster.sent[0].room)
	assert.Equal(t, constants.EventUserLocationUpdate, f.broadcaster.sent[0].event)
	assert.NotNil(t, f.broadcaster.sent[0].excluded)
}

func TestStartLocationSharing_JoinsRoomAndConfirms(t *testing.T) {
	f := newRealtimeFixture(t)

	conn := f.run(t, frame(t, constants.EventStartLocationSharing, map[string]interface{}{
		"tripId": f.tripID.String(),
		"lat":    28.0,
		"lng":    77.0,
	}))

	_, confirmed := conn.find(constants.EventLocationSharingStarted)
	assert.True(t, confirmed)

	joinedRooms := make([]string, 0)
	for _, rooms := range f.broadcaster.joins {
		joinedRooms = append(joinedRooms, rooms...)
	}
	assert.Equal(t, []string{constants.RoomTripLocation(f.tripID.String())}, joinedRooms)
}

func TestTripCompleted_PersistsStatsAndNotifiesParticipants(t *testing.T) {
	f := newRealtimeFixture(t)
	peer := uuid.New()
	f.trips.trips[f.tripID].Participants = []models.TripParticipant{
		{UserID: peer, Status: models.ParticipantApproved},
	}

	f.run(t, frame(t, constants.EventTripCompleted, map[string]interface{}{
		"tripId": f.tripID.String(),
		"stats": map[string]interface{}{
			"totalDistance": 120.5,
			"totalDuration": 180,
		},
	}))

	assert.Equal(t, models.TripStatusCompleted, f.trips.statuses[f.tripID])
	assert.Equal(t, 120.5, f.trips.stats[f.tripID].TotalDistance)

	require.Len(t, f.broadcaster.delivers, 2)
	recipients := []string{f.broadcaster.delivers[0].userID, f.broadcaster.delivers[1].userID}
	assert.Contains(t, recipients, f.rider.ID.String())
	assert.Contains(t, recipients, peer.String())
	assert.Equal(t, constants.EventTripStatusUpdate, f.broadcaster.delivers[0].event)
}

func TestSendNotification_PersistsEvenWhenOffline(t *testing.T) {
	f := newRealtimeFixture(t)
	recipient := uuid.New()

	conn := f.run(t, frame(t, constants.EventSendNotification, map[string]string{
		"recipientId": recipient.String(),
		"title":       "Ride invite",
		"message":     "Join Sunday's ride",
		"type":        "trip_invite",
	}))

	require.Len(t, f.notifications.saved, 1)
	saved := f.notifications.saved[0]
	assert.Equal(t, recipient, saved.RecipientID)
	assert.Equal(t, models.NotificationUnread, saved.Status)
	require.NotNil(t, saved.SenderID)
	assert.Equal(t, f.rider.ID, *saved.SenderID)

	data, ok := conn.find(constants.EventNotificationSent)
	require.True(t, ok)
	var sent struct {
		Delivered bool `json:"delivered"`
	}
	require.NoError(t, json.Unmarshal(data, &sent))
	assert.False(t, sent.Delivered)
}

func TestSendNotification_DeliveredWhenOnline(t *testing.T) {
	f := newRealtimeFixture(t)
	recipient := uuid.New()
	f.broadcaster.online[recipient.String()] = true

	conn := f.run(t, frame(t, constants.EventSendNotification, map[string]string{
		"recipientId": recipient.String(),
		"title":       "Ride invite",
	}))

	require.Len(t, f.broadcaster.delivers, 1)
	assert.Equal(t, constants.EventNotification, f.broadcaster.delivers[0].event)

	data, ok := conn.find(constants.EventNotificationSent)
	require.True(t, ok)
	var sent struct {
		Delivered bool `json:"delivered"`
	}
	require.NoError(t, json.Unmarshal(data, &sent))
	assert.True(t, sent.Delivered)
}

func TestMarkNotificationRead_UnknownIDAnswersNotFound(t *testing.T) {
	f := newRealtimeFixture(t)
	f.notifications.readErr = apperr.NotFound("notification not found")

	conn := f.run(t, frame(t, constants.EventMarkNotificationRead, map[string]string{
		"notificationId": uuid.NewString(),
	}))

	data, ok := conn.find(constants.EventError)
	require.True(t, ok)
	var errEvent models.WSErrorMessage
	require.NoError(t, json.Unmarshal(data, &errEvent))
	assert.Equal(t, constants.ErrorNotFound, errEvent.Code)
}

func TestMarkNotificationRead_Confirms(t *testing.T) {
	f := newRealtimeFixture(t)
	notificationID := uuid.New()

	conn := f.run(t, frame(t, constants.EventMarkNotificationRead, map[string]string{
		"notificationId": notificationID.String(),
	}))

	assert.Equal(t, []uuid.UUID{notificationID}, f.notifications.read)
	_, confirmed := conn.find(constants.EventNotificationMarkedRead)
	assert.True(t, confirmed)
}
