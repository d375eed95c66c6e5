package trip

import (
	"context"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// TripRepo defines the interface for trip data access operations
type TripRepo interface {
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	AppendSession(ctx context.Context, tripID uuid.UUID, sessionID string) error
	UpdateTripStatus(ctx context.Context, tripID uuid.UUID, status models.TripStatus) error
	UpdateTripStats(ctx context.Context, tripID uuid.UUID, stats models.TripStats) error
	CountNonTerminalSessions(ctx context.Context, tripID uuid.UUID) (int, error)
}
