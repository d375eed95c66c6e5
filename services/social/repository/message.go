package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/social"
)

type messageRepo struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new chat message repository
func NewMessageRepository(db *sqlx.DB) social.MessageRepo {
	return &messageRepo{db: db}
}

// SaveMessage persists a chat message
func (r *messageRepo) SaveMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, trip_id, content, type, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.SenderID,
		message.TripID,
		message.Content,
		message.Type,
		message.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return nil
}

// GetTripMessages returns the most recent messages for a trip, newest
// first
func (r *messageRepo) GetTripMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, sender_id, trip_id, content, type, sent_at
		FROM messages
		WHERE trip_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, tripID, limit); err != nil {
		return nil, fmt.Errorf("failed to get trip messages: %w", err)
	}

	return messages, nil
}
