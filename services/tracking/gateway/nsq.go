package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/constants"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	nsqpkg "github.com/ridecrew/ridecrew/internal/pkg/nsq"
	"github.com/ridecrew/ridecrew/services/tracking"
)

type trackingGW struct {
	producer *nsqpkg.Producer
}

// NewTrackingGW creates a new tracking event gateway
func NewTrackingGW(producer *nsqpkg.Producer) tracking.TrackingGW {
	return &trackingGW{producer: producer}
}

// PublishSessionStarted announces a freshly opened session
func (g *trackingGW) PublishSessionStarted(_ context.Context, session *models.TrackingSession) error {
	return g.producer.Publish(constants.TopicSessionStarted, models.SessionEvent{
		SessionID: session.SessionID,
		TripID:    session.TripID,
		RiderID:   session.RiderID,
		Status:    session.Status,
		Timestamp: session.StartedAt,
	})
}

// PublishSessionCompleted announces a completed session with its final stats
func (g *trackingGW) PublishSessionCompleted(_ context.Context, session *models.TrackingSession) error {
	event := models.SessionEvent{
		SessionID:     session.SessionID,
		TripID:        session.TripID,
		RiderID:       session.RiderID,
		Status:        session.Status,
		TotalDistance: session.TotalDistance,
		TotalDuration: session.TotalDuration,
	}
	if session.EndedAt != nil {
		event.Timestamp = *session.EndedAt
	}
	return g.producer.Publish(constants.TopicSessionCompleted, event)
}

// PublishTripCompleted announces that a trip's last session has stopped
func (g *trackingGW) PublishTripCompleted(_ context.Context, tripID uuid.UUID) error {
	return g.producer.Publish(constants.TopicTripCompleted, models.TripCompletedEvent{
		TripID:      tripID,
		CompletedAt: time.Now(),
	})
}
