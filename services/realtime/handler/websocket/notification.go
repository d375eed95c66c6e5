package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// handleSendNotification delivers in real time when the recipient is
// online and always persists, so offline recipients find it later
func (h *Handler) handleSendNotification(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload sendNotificationPayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	if payload.RecipientID == "" {
		return apperr.Validation("recipientId is required")
	}
	recipientID, err := uuid.Parse(payload.RecipientID)
	if err != nil {
		return apperr.Validation("recipientId is not a valid id")
	}
	if payload.Title == "" && payload.Message == "" {
		return apperr.Validation("notification title or message is required")
	}

	senderID := client.User.ID
	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    &senderID,
		Title:       payload.Title,
		Message:     payload.Message,
		Type:        payload.Type,
		Data:        payload.Data,
		Status:      models.NotificationUnread,
		CreatedAt:   h.now(),
	}

	delivered := h.broadcaster.DeliverToUser(recipientID.String(), constants.EventNotification, notification)

	if err := h.notifications.SaveNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if err := client.Send(constants.EventNotificationSent, notificationSentEvent{
		NotificationID: notification.ID,
		Delivered:      delivered,
	}); err != nil {
		return fmt.Errorf("failed to confirm notification: %w", err)
	}

	return nil
}

// handleMarkNotificationRead flips read state for the caller's own
// notification
func (h *Handler) handleMarkNotificationRead(ctx context.Context, client *ws.Client, data json.RawMessage) error {
	var payload markNotificationReadPayload
	if err := decode(data, &payload); err != nil {
		return err
	}
	notificationID, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		return apperr.Validation("notificationId is not a valid id")
	}

	if err := h.notifications.MarkRead(ctx, notificationID, client.User.ID); err != nil {
		return err
	}

	if err := client.Send(constants.EventNotificationMarkedRead, notificationReadEvent{
		NotificationID: notificationID,
	}); err != nil {
		return fmt.Errorf("failed to confirm read state: %w", err)
	}

	return nil
}
