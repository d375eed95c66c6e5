package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// TrackingRepo defines the interface for tracking session persistence.
// The Mark* methods are conditional updates guarded by the current status;
// they report false when the guard did not match, leaving classification
// of the failure to the caller.
type TrackingRepo interface {
	CreateSession(ctx context.Context, session *models.TrackingSession) error
	GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error)

	UpdatePointData(ctx context.Context, session *models.TrackingSession) (bool, error)
	MarkPaused(ctx context.Context, session *models.TrackingSession) (bool, error)
	MarkResumed(ctx context.Context, session *models.TrackingSession) (bool, error)
	MarkCompleted(ctx context.Context, session *models.TrackingSession) (bool, error)
	MarkCancelled(ctx context.Context, session *models.TrackingSession) (bool, error)
}

// TripStore is the slice of the trip service the tracking core depends on
type TripStore interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	AppendSession(ctx context.Context, tripID uuid.UUID, sessionID string) error
	UpdateTripStatus(ctx context.Context, tripID uuid.UUID, status models.TripStatus) error
	CountNonTerminalSessions(ctx context.Context, tripID uuid.UUID) (int, error)
}

// LocationCache is the live-position side channel backing nearby queries
type LocationCache interface {
	UpdateRiderLocation(ctx context.Context, riderID string, lat, lng float64) error
	RemoveRiderLocation(ctx context.Context, riderID string) error
	NearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyRider, error)
}
