package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// TrackingGW defines the interface for tracking event publication
type TrackingGW interface {
	PublishSessionStarted(ctx context.Context, session *models.TrackingSession) error
	PublishSessionCompleted(ctx context.Context, session *models.TrackingSession) error
	PublishTripCompleted(ctx context.Context, tripID uuid.UUID) error
}
