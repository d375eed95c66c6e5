package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// Inbound payloads

type tripRoomPayload struct {
	TripID string `json:"tripId"`
}

type sendMessagePayload struct {
	TripID  string             `json:"tripId"`
	Content string             `json:"content"`
	Type    models.MessageType `json:"type,omitempty"`
}

type locationSharePayload struct {
	TripID   string   `json:"tripId"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
}

type tripStartedPayload struct {
	TripID    string `json:"tripId"`
	SessionID string `json:"sessionId"`
}

type tripCompletedPayload struct {
	TripID string           `json:"tripId"`
	Stats  models.TripStats `json:"stats"`
}

type tripUpdatePayload struct {
	TripID     string          `json:"tripId"`
	UpdateType string          `json:"updateType"`
	UpdateData json.RawMessage `json:"updateData,omitempty"`
}

type sendNotificationPayload struct {
	RecipientID string          `json:"recipientId"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type markNotificationReadPayload struct {
	NotificationID string `json:"notificationId"`
}

// Outbound payloads

type connectedEvent struct {
	UserID uuid.UUID           `json:"userId"`
	User   models.UserSnapshot `json:"user"`
}

type roomMembershipEvent struct {
	TripID uuid.UUID           `json:"tripId"`
	User   models.UserSnapshot `json:"user"`
}

type joinedChatEvent struct {
	TripID         uuid.UUID           `json:"tripId"`
	User           models.UserSnapshot `json:"user"`
	RecentMessages []models.Message    `json:"recentMessages,omitempty"`
}

type chatMessageEvent struct {
	ID        uuid.UUID           `json:"id"`
	TripID    uuid.UUID           `json:"tripId"`
	Content   string              `json:"content"`
	Type      models.MessageType  `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Sender    models.UserSnapshot `json:"sender"`
}

type typingEvent struct {
	TripID uuid.UUID           `json:"tripId"`
	User   models.UserSnapshot `json:"user"`
	Typing bool                `json:"typing"`
}

type locationUpdateEvent struct {
	TripID    uuid.UUID `json:"tripId"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type tripStatusEvent struct {
	TripID      uuid.UUID         `json:"tripId"`
	Status      models.TripStatus `json:"status"`
	SessionID   string            `json:"sessionId,omitempty"`
	Stats       *models.TripStats `json:"stats,omitempty"`
	TriggeredBy uuid.UUID         `json:"triggeredBy"`
}

type tripUpdateEvent struct {
	TripID     uuid.UUID       `json:"tripId"`
	UpdateType string          `json:"updateType"`
	UpdateData json.RawMessage `json:"updateData,omitempty"`
}

type notificationSentEvent struct {
	NotificationID uuid.UUID `json:"notificationId"`
	Delivered      bool      `json:"delivered"`
}

type notificationReadEvent struct {
	NotificationID uuid.UUID `json:"notificationId"`
}
