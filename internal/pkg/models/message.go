package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies trip chat messages
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeLocation MessageType = "location"
	MessageTypeSystem   MessageType = "system"
)

// Message is one persisted trip chat message
type Message struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	SenderID  uuid.UUID   `json:"senderId" db:"sender_id"`
	TripID    uuid.UUID   `json:"tripId" db:"trip_id"`
	Content   string      `json:"content" db:"content"`
	Type      MessageType `json:"type" db:"type"`
	Timestamp time.Time   `json:"timestamp" db:"sent_at"`
}
