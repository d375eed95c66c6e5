package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/social"
)

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) social.UserRepo {
	return &userRepo{db: db}
}

// GetUserSnapshot fetches the fields embedded in broadcast payloads
func (r *userRepo) GetUserSnapshot(ctx context.Context, userID uuid.UUID) (*models.UserSnapshot, error) {
	query := `SELECT id, name, COALESCE(avatar, '') AS avatar FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Name, &user.Avatar)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get user snapshot: %w", err)
	}

	snapshot := user.Snapshot()
	return &snapshot, nil
}

// TouchLastSeen updates the rider's last-seen timestamp on disconnect.
// Best effort; a missing row is not an error worth surfacing.
func (r *userRepo) TouchLastSeen(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_seen = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, at); err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}

	return nil
}
