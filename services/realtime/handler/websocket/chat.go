package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// chatHistoryLimit caps the backlog replayed to a joining member.
const chatHistoryLimit = 50

// handleJoinTripChat authorizes membership, joins the chat room and
// announces the joiner to everyone else
func (h *Handler) handleJoinTripChat(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripRoomPayload
	if err := decode(data, &payload); err != nil {
		return err
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	room := constants.RoomTripChat(trip.ID.String())
	h.broadcaster.Join(client, room)

	// History failure should not keep a member out of the room
	history, err := h.messages.GetTripMessages(ctx, trip.ID, chatHistoryLimit)
	if err != nil {
		logger.Warn("failed to load chat history",
			logger.String("trip_id", trip.ID.String()),
			logger.Err(err))
		history = nil
	}

	joined := joinedChatEvent{
		TripID:         trip.ID,
		User:           client.User,
		RecentMessages: history,
	}
	if err := client.Send(constants.EventJoinedTripChat, joined); err != nil {
		return fmt.Errorf("failed to confirm chat join: %w", err)
	}

	announce := roomMembershipEvent{TripID: trip.ID, User: client.User}
	h.broadcaster.BroadcastToRoom(room, constants.EventUserJoinedChat, announce, client)

	return nil
}

// handleLeaveTripChat leaves the room unconditionally; leaving requires
// no authorization
func (h *Handler) handleLeaveTripChat(_ context.Context, client *ws.Client, data json.RawMessage) error {
	var payload tripRoomPayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	tripID, err := parseTripID(payload.TripID)
	if err != nil {
		return err
	}

	room := constants.RoomTripChat(tripID.String())
	h.broadcaster.Leave(client, room)

	event := roomMembershipEvent{TripID: tripID, User: client.User}
	if err := client.Send(constants.EventLeftTripChat, event); err != nil {
		return fmt.Errorf("failed to confirm chat leave: %w", err)
	}
	h.broadcaster.BroadcastToRoom(room, constants.EventUserLeftChat, event, client)

	return nil
}

// handleSendMessage persists the message then broadcasts it to the full
// room. The sender receives the echo too: it carries the server-assigned
// id and timestamp.
func (h *Handler) handleSendMessage(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload sendMessagePayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.Content) == "" {
		return apperr.Validation("message content is required")
	}

	trip, err := h.memberTrip(ctx, client, payload.TripID)
	if err != nil {
		return err
	}

	messageType := payload.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	message := &models.Message{
		ID:        uuid.New(),
		SenderID:  client.User.ID,
		TripID:    trip.ID,
		Content:   payload.Content,
		Type:      messageType,
		Timestamp: h.now(),
	}
	if err := h.messages.SaveMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}

	h.broadcaster.BroadcastToRoom(
		constants.RoomTripChat(trip.ID.String()),
		constants.EventNewMessage,
		chatMessageEvent{
			ID:        message.ID,
			TripID:    message.TripID,
			Content:   message.Content,
			Type:      message.Type,
			Timestamp: message.Timestamp,
			Sender:    client.User,
		},
		nil,
	)

	return nil
}

// handleTyping broadcasts an ephemeral typing indicator, excluding the
// typist. Never persisted, no authorization.
func (h *Handler) handleTyping(_ context.Context, client *ws.Client, data json.RawMessage, typing bool) error {
	var payload tripRoomPayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	tripID, err := parseTripID(payload.TripID)
	if err != nil {
		return err
	}

	h.broadcaster.BroadcastToRoom(
		constants.RoomTripChat(tripID.String()),
		constants.EventUserTyping,
		typingEvent{TripID: tripID, User: client.User, Typing: typing},
		client,
	)

	return nil
}
