package social

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// MessageRepo defines the interface for chat message persistence
type MessageRepo interface {
	SaveMessage(ctx context.Context, message *models.Message) error
	GetTripMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]models.Message, error)
}

// NotificationRepo defines the interface for durable notifications
type NotificationRepo interface {
	SaveNotification(ctx context.Context, notification *models.Notification) error
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
}

// UserRepo defines the slice of user persistence the realtime layer needs
type UserRepo interface {
	GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error)
	TouchLastSeen(ctx context.Context, userID uuid.UUID, at time.Time) error
}
