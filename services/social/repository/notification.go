package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/social"
)

type notificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) social.NotificationRepo {
	return &notificationRepo{db: db}
}

// SaveNotification persists a notification regardless of whether it was
// delivered in real time
func (r *notificationRepo) SaveNotification(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, sender_id, title, message, type, data, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var data interface{}
	if len(notification.Data) > 0 {
		data = []byte(notification.Data)
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.RecipientID,
		notification.SenderID,
		notification.Title,
		notification.Message,
		notification.Type,
		data,
		notification.Status,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	return nil
}

// MarkRead flips a notification to read for its recipient. Scoped to the
// recipient so one user cannot mark another's notifications.
func (r *notificationRepo) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	query := `
		UPDATE notifications SET status = 'read', read_at = NOW()
		WHERE id = $1 AND recipient_id = $2 AND status = 'unread'
	`

	result, err := r.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("notification %s not found", notificationID)
	}

	return nil
}
