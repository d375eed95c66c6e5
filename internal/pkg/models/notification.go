package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks read state
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is a durable notification record. Realtime delivery is
// best-effort; this row is the source of truth for offline recipients.
type Notification struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	RecipientID uuid.UUID          `json:"recipientId" db:"recipient_id"`
	SenderID    *uuid.UUID         `json:"senderId,omitempty" db:"sender_id"`
	Title       string             `json:"title" db:"title"`
	Message     string             `json:"message" db:"message"`
	Type        string             `json:"type" db:"type"`
	Data        json.RawMessage    `json:"data,omitempty" db:"data"`
	Status      NotificationStatus `json:"status" db:"status"`
	ReadAt      *time.Time         `json:"readAt,omitempty" db:"read_at"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
}
