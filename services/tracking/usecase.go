package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// TrackingUC defines the interface for tracking session business logic
type TrackingUC interface {
	// Session lifecycle operations
	StartSession(ctx context.Context, riderID uuid.UUID, req models.StartSessionRequest) (*models.TrackingSession, error)
	PauseSession(ctx context.Context, riderID uuid.UUID, sessionID string, reason string) (*models.TrackingSession, error)
	ResumeSession(ctx context.Context, riderID uuid.UUID, sessionID string) (*models.TrackingSession, error)
	StopSession(ctx context.Context, riderID uuid.UUID, req models.StopSessionRequest) (*models.TrackingSession, error)
	CancelSession(ctx context.Context, riderID uuid.UUID, sessionID string) (*models.TrackingSession, error)

	// Point ingestion and reads
	IngestPoint(ctx context.Context, riderID uuid.UUID, req models.PointRequest) (*models.PointAck, error)
	GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error)
	GetLiveSession(ctx context.Context, sessionID string) (*models.LiveSession, error)

	// Presence queries
	NearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyRider, error)
}
