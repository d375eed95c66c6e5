package repository_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, mock
}

func sampleSession() *models.TrackingSession {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.TrackingSession{
		SessionID:   "TRK_1000_abcdef123",
		TripID:      uuid.New(),
		RiderID:     uuid.New(),
		Status:      models.SessionStatusActive,
		StartedAt:   now,
		RoutePoints: []models.RoutePoint{},
		Pauses:      []models.Pause{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateSession_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	session := sampleSession()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracking_sessions")).
		WithArgs(
			session.SessionID, session.TripID, session.RiderID, session.Status, session.StartedAt,
			sqlmock.AnyArg(), session.Geohash, sqlmock.AnyArg(), sqlmock.AnyArg(),
			session.TotalDistance, session.TotalDuration, session.AverageSpeed, session.MaxSpeed,
			session.TotalPauseTime, session.SpeedSum, session.SpeedCount, session.CreatedAt, session.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateSession(context.Background(), session)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSession_DuplicateActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tracking_sessions")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreateSession(context.Background(), sampleSession())
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestGetSession_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("TRK_0_missing").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))

	_, err := repo.GetSession(context.Background(), "TRK_0_missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetSession_HydratesDocuments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	session := sampleSession()
	speed := 30.0
	points, err := json.Marshal([]models.RoutePoint{{Lat: 28.0, Lng: 77.0, Timestamp: session.StartedAt, Speed: &speed}})
	require.NoError(t, err)
	pauses, err := json.Marshal([]models.Pause{{StartTime: session.StartedAt, Reason: "fuel"}})
	require.NoError(t, err)
	location, err := json.Marshal(models.CurrentLocation{Lat: 28.0, Lng: 77.0, Timestamp: session.StartedAt})
	require.NoError(t, err)

	columns := []string{
		"session_id", "trip_id", "rider_id", "status", "started_at", "ended_at",
		"current_location", "geohash", "route_points", "pauses",
		"total_distance", "total_duration", "average_speed", "max_speed",
		"total_pause_time", "speed_sum", "speed_count", "created_at", "updated_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(session.SessionID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			session.SessionID, session.TripID, session.RiderID, "active", session.StartedAt, nil,
			location, "ttnfv2u", points, pauses,
			1.5, 0, 30.0, 30.0,
			0, 30.0, 1, session.CreatedAt, session.UpdatedAt,
		))

	got, err := repo.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, got.Status)
	assert.Len(t, got.RoutePoints, 1)
	assert.Equal(t, 28.0, got.RoutePoints[0].Lat)
	assert.Len(t, got.Pauses, 1)
	assert.True(t, got.Pauses[0].Open())
	require.NotNil(t, got.CurrentLocation)
	assert.Equal(t, "ttnfv2u", got.Geohash)
	assert.Equal(t, 1.5, got.TotalDistance)
	assert.Nil(t, got.EndedAt)
}

func TestUpdatePointData_GuardMiss(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tracking_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdatePointData(context.Background(), sampleSession())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkCompleted_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	session := sampleSession()
	endedAt := session.StartedAt.Add(time.Hour)
	session.Status = models.SessionStatusCompleted
	session.EndedAt = &endedAt
	session.TotalDuration = 60

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tracking_sessions")).
		WithArgs(
			session.SessionID, session.EndedAt, sqlmock.AnyArg(),
			session.TotalPauseTime, session.TotalDuration, session.AverageSpeed,
			session.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkCompleted(context.Background(), session)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCompleted_AlreadyTerminal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewTrackingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tracking_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkCompleted(context.Background(), sampleSession())
	assert.NoError(t, err)
	assert.False(t, ok)
}
