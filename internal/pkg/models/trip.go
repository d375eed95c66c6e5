package models

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus represents the current status of a trip
type TripStatus string

const (
	TripStatusPlanned   TripStatus = "planned"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// ParticipantStatus represents a participant's membership state on a trip
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantApproved ParticipantStatus = "approved"
	ParticipantRejected ParticipantStatus = "rejected"
)

// TripParticipant is one rider's membership record on a trip
type TripParticipant struct {
	UserID   uuid.UUID         `json:"userId"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// Location is a named geographic point on a trip
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// TripStats aggregates ride statistics persisted when a trip completes
type TripStats struct {
	TotalDistance float64 `json:"totalDistance"`
	TotalDuration int     `json:"totalDuration"`
	AverageSpeed  float64 `json:"averageSpeed"`
	MaxSpeed      float64 `json:"maxSpeed"`
}

// Trip represents a group ride
type Trip struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	Organizer        uuid.UUID         `json:"organizer" db:"organizer"`
	Title            string            `json:"title" db:"title"`
	Status           TripStatus        `json:"status" db:"status"`
	StartLocation    Location          `json:"startLocation"`
	EndLocation      Location          `json:"endLocation"`
	Participants     []TripParticipant `json:"participants"`
	TrackingSessions []string          `json:"trackingSessions"`
	ScheduledAt      *time.Time        `json:"scheduledAt,omitempty" db:"scheduled_at"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty" db:"completed_at"`
	Stats            *TripStats        `json:"stats,omitempty"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time         `json:"updatedAt" db:"updated_at"`
}

// IsMember reports whether the user is the organizer or an approved participant
func (t *Trip) IsMember(userID uuid.UUID) bool {
	if t.Organizer == userID {
		return true
	}
	for _, p := range t.Participants {
		if p.UserID == userID && p.Status == ParticipantApproved {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the organizer plus every approved participant.
// Used for per-user fan-out of trip events.
func (t *Trip) ParticipantIDs() []uuid.UUID {
	ids := []uuid.UUID{t.Organizer}
	for _, p := range t.Participants {
		if p.Status == ParticipantApproved && p.UserID != t.Organizer {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
