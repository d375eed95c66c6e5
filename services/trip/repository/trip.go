package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/trip"
)

type tripRepo struct {
	db *sqlx.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sqlx.DB) trip.TripRepo {
	return &tripRepo{db: db}
}

// CreateTrip inserts a new trip row
func (r *tripRepo) CreateTrip(ctx context.Context, t *models.Trip) error {
	startLocation, err := json.Marshal(t.StartLocation)
	if err != nil {
		return fmt.Errorf("failed to marshal start location: %w", err)
	}
	endLocation, err := json.Marshal(t.EndLocation)
	if err != nil {
		return fmt.Errorf("failed to marshal end location: %w", err)
	}
	participants, err := marshalParticipants(t.Participants)
	if err != nil {
		return err
	}
	sessions, err := marshalSessions(t.TrackingSessions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO trips (
			id, organizer, title, status, start_location, end_location,
			participants, tracking_sessions, scheduled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Organizer,
		t.Title,
		t.Status,
		startLocation,
		endLocation,
		participants,
		sessions,
		t.ScheduledAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

// GetTrip retrieves a trip by id
func (r *tripRepo) GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	query := `
		SELECT
			id, organizer, title, status, start_location, end_location,
			participants, tracking_sessions, scheduled_at, completed_at,
			stats, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, tripID)

	t := &models.Trip{}
	var startLocation, endLocation, participants, sessions, stats []byte
	var scheduledAt, completedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.Organizer,
		&t.Title,
		&t.Status,
		&startLocation,
		&endLocation,
		&participants,
		&sessions,
		&scheduledAt,
		&completedAt,
		&stats,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("trip %s not found", tripID)
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	if scheduledAt.Valid {
		t.ScheduledAt = &scheduledAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if err := json.Unmarshal(startLocation, &t.StartLocation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal start location: %w", err)
	}
	if err := json.Unmarshal(endLocation, &t.EndLocation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal end location: %w", err)
	}
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &t.Participants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
		}
	}
	if len(sessions) > 0 {
		if err := json.Unmarshal(sessions, &t.TrackingSessions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking sessions: %w", err)
		}
	}
	if len(stats) > 0 {
		t.Stats = &models.TripStats{}
		if err := json.Unmarshal(stats, t.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trip stats: %w", err)
		}
	}

	return t, nil
}

// AppendSession adds a session id to the trip's session list
func (r *tripRepo) AppendSession(ctx context.Context, tripID uuid.UUID, sessionID string) error {
	query := `
		UPDATE trips SET
			tracking_sessions = tracking_sessions || to_jsonb($2::text),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, tripID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to append session to trip: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("trip %s not found", tripID)
	}

	return nil
}

// UpdateTripStatus advances the trip's status. Completion also stamps
// completed_at.
func (r *tripRepo) UpdateTripStatus(ctx context.Context, tripID uuid.UUID, status models.TripStatus) error {
	query := `UPDATE trips SET status = $2, updated_at = NOW() WHERE id = $1`
	if status == models.TripStatusCompleted {
		query = `UPDATE trips SET status = $2, completed_at = NOW(), updated_at = NOW() WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, tripID, status)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("trip %s not found", tripID)
	}

	return nil
}

// UpdateTripStats persists the aggregated ride statistics
func (r *tripRepo) UpdateTripStats(ctx context.Context, tripID uuid.UUID, stats models.TripStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trip stats: %w", err)
	}

	query := `UPDATE trips SET stats = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, tripID, payload)
	if err != nil {
		return fmt.Errorf("failed to update trip stats: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound("trip %s not found", tripID)
	}

	return nil
}

// CountNonTerminalSessions counts the trip's sessions still active or
// paused
func (r *tripRepo) CountNonTerminalSessions(ctx context.Context, tripID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM tracking_sessions
		WHERE trip_id = $1 AND status IN ('active', 'paused')
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tripID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count live sessions: %w", err)
	}

	return count, nil
}

func marshalParticipants(participants []models.TripParticipant) ([]byte, error) {
	if participants == nil {
		participants = []models.TripParticipant{}
	}
	payload, err := json.Marshal(participants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participants: %w", err)
	}
	return payload, nil
}

func marshalSessions(sessions []string) ([]byte, error) {
	if sessions == nil {
		sessions = []string{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracking sessions: %w", err)
	}
	return payload, nil
}
