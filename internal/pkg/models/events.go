package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionEvent is published when a tracking session starts or completes
type SessionEvent struct {
	SessionID     string        `json:"sessionId"`
	TripID        uuid.UUID     `json:"tripId"`
	RiderID       uuid.UUID     `json:"riderId"`
	Status        SessionStatus `json:"status"`
	TotalDistance float64       `json:"totalDistance,omitempty"`
	TotalDuration int           `json:"totalDuration,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// TripCompletedEvent is published when a trip's last session stops
type TripCompletedEvent struct {
	TripID      uuid.UUID `json:"tripId"`
	CompletedAt time.Time `json:"completedAt"`
}
