package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking"
)

// noopGW discards events. Used when no broker is configured.
type noopGW struct{}

// NewNoopTrackingGW creates a gateway that drops all events
func NewNoopTrackingGW() tracking.TrackingGW {
	return noopGW{}
}

func (noopGW) PublishSessionStarted(context.Context, *models.TrackingSession) error { return nil }

func (noopGW) PublishSessionCompleted(context.Context, *models.TrackingSession) error { return nil }

func (noopGW) PublishTripCompleted(context.Context, uuid.UUID) error { return nil }
