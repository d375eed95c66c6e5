package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations
const pgUniqueViolation = "23505"

type trackingRepo struct {
	db *sqlx.DB
}

// NewTrackingRepository creates a new tracking session repository
func NewTrackingRepository(db *sqlx.DB) tracking.TrackingRepo {
	return &trackingRepo{db: db}
}

// CreateSession inserts a new session row. A partial unique index on
// (trip_id, rider_id) over non-terminal statuses rejects a second live
// session for the same rider on the same trip.
func (r *trackingRepo) CreateSession(ctx context.Context, session *models.TrackingSession) error {
	points, pauses, location, err := marshalDocuments(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tracking_sessions (
			session_id, trip_id, rider_id, status, started_at,
			current_location, geohash, route_points, pauses,
			total_distance, total_duration, average_speed, max_speed,
			total_pause_time, speed_sum, speed_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		session.TripID,
		session.RiderID,
		session.Status,
		session.StartedAt,
		location,
		session.Geohash,
		points,
		pauses,
		session.TotalDistance,
		session.TotalDuration,
		session.AverageSpeed,
		session.MaxSpeed,
		session.TotalPauseTime,
		session.SpeedSum,
		session.SpeedCount,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("rider already has an active session for this trip")
		}
		return fmt.Errorf("failed to create tracking session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its id
func (r *trackingRepo) GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error) {
	query := `
		SELECT
			session_id, trip_id, rider_id, status, started_at, ended_at,
			current_location, geohash, route_points, pauses,
			total_distance, total_duration, average_speed, max_speed,
			total_pause_time, speed_sum, speed_count, created_at, updated_at
		FROM tracking_sessions
		WHERE session_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, sessionID)

	session := &models.TrackingSession{}
	var endedAt sql.NullTime
	var geohash sql.NullString
	var location, points, pauses []byte

	err := row.Scan(
		&session.SessionID,
		&session.TripID,
		&session.RiderID,
		&session.Status,
		&session.StartedAt,
		&endedAt,
		&location,
		&geohash,
		&points,
		&pauses,
		&session.TotalDistance,
		&session.TotalDuration,
		&session.AverageSpeed,
		&session.MaxSpeed,
		&session.TotalPauseTime,
		&session.SpeedSum,
		&session.SpeedCount,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("tracking session %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to get tracking session: %w", err)
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	if geohash.Valid {
		session.Geohash = geohash.String
	}
	if err := unmarshalDocuments(session, location, points, pauses); err != nil {
		return nil, err
	}

	return session, nil
}

// UpdatePointData persists the trace and rolling statistics after a point
// ingestion. Guarded on status so a concurrently stopped session rejects
// the write.
func (r *trackingRepo) UpdatePointData(ctx context.Context, session *models.TrackingSession) (bool, error) {
	points, _, location, err := marshalDocuments(session)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tracking_sessions SET
			route_points = $2, current_location = $3, geohash = $4,
			total_distance = $5, average_speed = $6, max_speed = $7,
			speed_sum = $8, speed_count = $9, updated_at = $10
		WHERE session_id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		points,
		location,
		session.Geohash,
		session.TotalDistance,
		session.AverageSpeed,
		session.MaxSpeed,
		session.SpeedSum,
		session.SpeedCount,
		session.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update point data: %w", err)
	}

	return affected(result)
}

// MarkPaused transitions active -> paused, persisting the newly opened
// pause record
func (r *trackingRepo) MarkPaused(ctx context.Context, session *models.TrackingSession) (bool, error) {
	_, pauses, _, err := marshalDocuments(session)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tracking_sessions SET
			status = 'paused', pauses = $2, updated_at = $3
		WHERE session_id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, session.SessionID, pauses, session.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark session paused: %w", err)
	}

	return affected(result)
}

// MarkResumed transitions paused -> active, persisting the closed pause
// record and the accumulated pause time
func (r *trackingRepo) MarkResumed(ctx context.Context, session *models.TrackingSession) (bool, error) {
	_, pauses, _, err := marshalDocuments(session)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tracking_sessions SET
			status = 'active', pauses = $2, total_pause_time = $3, updated_at = $4
		WHERE session_id = $1 AND status = 'paused'
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		pauses,
		session.TotalPauseTime,
		session.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark session resumed: %w", err)
	}

	return affected(result)
}

// MarkCompleted finalizes the session from either live status. Two
// concurrent stop calls race on the guard; exactly one wins.
func (r *trackingRepo) MarkCompleted(ctx context.Context, session *models.TrackingSession) (bool, error) {
	_, pauses, _, err := marshalDocuments(session)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tracking_sessions SET
			status = 'completed', ended_at = $2, pauses = $3,
			total_pause_time = $4, total_duration = $5, average_speed = $6,
			updated_at = $7
		WHERE session_id = $1 AND status IN ('active', 'paused')
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		session.EndedAt,
		pauses,
		session.TotalPauseTime,
		session.TotalDuration,
		session.AverageSpeed,
		session.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark session completed: %w", err)
	}

	return affected(result)
}

// MarkCancelled terminates the session without finalizing statistics
func (r *trackingRepo) MarkCancelled(ctx context.Context, session *models.TrackingSession) (bool, error) {
	_, pauses, _, err := marshalDocuments(session)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE tracking_sessions SET
			status = 'cancelled', ended_at = $2, pauses = $3,
			total_pause_time = $4, updated_at = $5
		WHERE session_id = $1 AND status IN ('active', 'paused')
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		session.EndedAt,
		pauses,
		session.TotalPauseTime,
		session.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark session cancelled: %w", err)
	}

	return affected(result)
}

// marshalDocuments serializes the JSONB columns of a session row
func marshalDocuments(session *models.TrackingSession) (points, pauses, location []byte, err error) {
	routePoints := session.RoutePoints
	if routePoints == nil {
		routePoints = []models.RoutePoint{}
	}
	points, err = json.Marshal(routePoints)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal route points: %w", err)
	}

	pauseRecords := session.Pauses
	if pauseRecords == nil {
		pauseRecords = []models.Pause{}
	}
	pauses, err = json.Marshal(pauseRecords)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal pauses: %w", err)
	}

	if session.CurrentLocation != nil {
		location, err = json.Marshal(session.CurrentLocation)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal current location: %w", err)
		}
	}

	return points, pauses, location, nil
}

// unmarshalDocuments hydrates the JSONB columns back into the session
func unmarshalDocuments(session *models.TrackingSession, location, points, pauses []byte) error {
	if len(points) > 0 {
		if err := json.Unmarshal(points, &session.RoutePoints); err != nil {
			return fmt.Errorf("failed to unmarshal route points: %w", err)
		}
	}
	if len(pauses) > 0 {
		if err := json.Unmarshal(pauses, &session.Pauses); err != nil {
			return fmt.Errorf("failed to unmarshal pauses: %w", err)
		}
	}
	if len(location) > 0 {
		session.CurrentLocation = &models.CurrentLocation{}
		if err := json.Unmarshal(location, session.CurrentLocation); err != nil {
			return fmt.Errorf("failed to unmarshal current location: %w", err)
		}
	}
	return nil
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows > 0, nil
}
