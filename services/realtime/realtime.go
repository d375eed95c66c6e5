package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
)

// Broadcaster is the fan-out surface realtime handlers drive.
// *websocket.Broadcaster satisfies it; tests substitute a recorder.
type Broadcaster interface {
	Join(client *ws.Client, roomKey string)
	Leave(client *ws.Client, roomKey string)
	LeaveAll(client *ws.Client)
	BroadcastToRoom(roomKey, event string, data interface{}, exclude *ws.Client)
	DeliverToUser(userID, event string, data interface{}) bool
}

// TripStore is the slice of trip persistence the handlers need
type TripStore interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	UpdateTripStatus(ctx context.Context, tripID uuid.UUID, status models.TripStatus) error
	UpdateTripStats(ctx context.Context, tripID uuid.UUID, stats models.TripStats) error
}

// MessageStore persists chat messages and serves room history
type MessageStore interface {
	SaveMessage(ctx context.Context, message *models.Message) error
	GetTripMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]models.Message, error)
}

// NotificationStore persists notifications and read state
type NotificationStore interface {
	SaveNotification(ctx context.Context, notification *models.Notification) error
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
}

// UserStore is the slice of user persistence the handlers need
type UserStore interface {
	GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error)
	TouchLastSeen(ctx context.Context, userID uuid.UUID, at time.Time) error
}
