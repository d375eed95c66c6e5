package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
	"github.com/ridecrew/ridecrew/services/realtime"
)

// Handler owns the realtime event dispatch for one server process
type Handler struct {
	registry      *ws.Registry
	broadcaster   realtime.Broadcaster
	trips         realtime.TripStore
	messages      realtime.MessageStore
	notifications realtime.NotificationStore
	users         realtime.UserStore

	now func() time.Time
}

// NewHandler creates a new realtime event handler
func NewHandler(
	registry *ws.Registry,
	broadcaster realtime.Broadcaster,
	trips realtime.TripStore,
	messages realtime.MessageStore,
	notifications realtime.NotificationStore,
	users realtime.UserStore,
) *Handler {
	return &Handler{
		registry:      registry,
		broadcaster:   broadcaster,
		trips:         trips,
		messages:      messages,
		notifications: notifications,
		users:         users,
		now:           time.Now,
	}
}

// HandleClient runs the read loop for one authenticated connection:
// register, announce, dispatch until the transport closes, then tear
// down. Returns nil on a normal close.
func (h *Handler) HandleClient(client *ws.Client) error {
	// Enrich the token identity with the stored profile; the claims
	// carry no avatar. Best effort, the token name is the fallback.
	if snapshot, err := h.users.GetUserSnapshot(context.Background(), client.User.ID); err == nil {
		client.User = *snapshot
	}

	h.registry.Register(client)
	defer h.disconnect(client)

	if err := client.Send(constants.EventConnected, connectedEvent{
		UserID: client.User.ID,
		User:   client.User,
	}); err != nil {
		return err
	}

	for {
		raw, err := client.Read()
		if err != nil {
			return nil
		}

		var msg models.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(client, constants.ErrorInvalidFormat, "invalid message format")
			continue
		}

		h.dispatch(context.Background(), client, msg)
	}
}

// dispatch routes one inbound event. The switch is closed over the
// known event constants; anything else answers an error event instead
// of being silently ignored.
func (h *Handler) dispatch(ctx context.Context, client *ws.Client, msg models.WSMessage) {
	var err error
	switch msg.Event {
	case constants.EventJoinTripChat:
		err = h.handleJoinTripChat(ctx, client, msg.Data)
	case constants.EventLeaveTripChat:
		err = h.handleLeaveTripChat(ctx, client, msg.Data)
	case constants.EventSendMessage:
		err = h.handleSendMessage(ctx, client, msg.Data)
	case constants.EventTypingStart:
		err = h.handleTyping(ctx, client, msg.Data, true)
	case constants.EventTypingStop:
		err = h.handleTyping(ctx, client, msg.Data, false)
	case constants.EventStartLocationSharing:
		err = h.handleStartLocationSharing(ctx, client, msg.Data)
	case constants.EventUpdateLocation:
		err = h.handleUpdateLocation(ctx, client, msg.Data)
	case constants.EventStopLocationSharing:
		err = h.handleStopLocationSharing(ctx, client, msg.Data)
	case constants.EventTripStarted:
		err = h.handleTripStarted(ctx, client, msg.Data)
	case constants.EventTripCompleted:
		err = h.handleTripCompleted(ctx, client, msg.Data)
	case constants.EventTripUpdate:
		err = h.handleTripUpdate(ctx, client, msg.Data)
	case constants.EventSendNotification:
		err = h.handleSendNotification(ctx, client, msg.Data)
	case constants.EventMarkNotificationRead:
		err = h.handleMarkNotificationRead(ctx, client, msg.Data)
	default:
		h.sendError(client, constants.ErrorInvalidFormat, "unknown event type: "+msg.Event)
		return
	}

	if err != nil {
		h.replyError(client, msg.Event, err)
	}
}

// disconnect tears down connection state. Release only unregisters when
// this client is still the registered one, so a replacement connection
// from the same user survives the stale teardown.
func (h *Handler) disconnect(client *ws.Client) {
	h.broadcaster.LeaveAll(client)
	h.registry.Release(client)

	if err := h.users.TouchLastSeen(context.Background(), client.User.ID, h.now()); err != nil {
		logger.Warn("Failed to update last seen on disconnect",
			logger.String("user_id", client.UserID),
			logger.Err(err))
	}
}

// replyError converts a handler failure into an error event to the
// originating connection only. Internal failures are masked.
func (h *Handler) replyError(client *ws.Client, event string, err error) {
	code := constants.ErrorInternalError
	message := "internal error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		code, message = constants.ErrorValidationFailed, err.Error()
	case apperr.KindForbidden:
		code, message = constants.ErrorUnauthorized, err.Error()
	case apperr.KindNotFound:
		code, message = constants.ErrorNotFound, err.Error()
	case apperr.KindConflict, apperr.KindInvalidState:
		code, message = constants.ErrorValidationFailed, err.Error()
	default:
		logger.Error("Realtime handler failed",
			logger.String("event", event),
			logger.String("user_id", client.UserID),
			logger.Err(err))
	}

	h.sendError(client, code, message)
}

func (h *Handler) sendError(client *ws.Client, code, message string) {
	if err := client.SendError(code, message); err != nil {
		logger.Warn("Failed to send error event",
			logger.String("user_id", client.UserID),
			logger.Err(err))
	}
}

// parseTripID validates a payload trip id
func parseTripID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperr.Validation("tripId is required")
	}
	tripID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("tripId is not a valid id")
	}
	return tripID, nil
}

// memberTrip loads the trip and enforces membership for the client
func (h *Handler) memberTrip(ctx context.Context, client *ws.Client, rawTripID string) (*models.Trip, error) {
	tripID, err := parseTripID(rawTripID)
	if err != nil {
		return nil, err
	}
	trip, err := h.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.IsMember(client.User.ID) {
		return nil, apperr.Forbidden("not a participant of this trip")
	}
	return trip, nil
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return apperr.Validation("event payload is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Validation("malformed event payload")
	}
	return nil
}
