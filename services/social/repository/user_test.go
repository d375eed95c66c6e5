package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/services/social/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	return db, mock
}

func TestGetUserSnapshot_ReturnsBroadcastView(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewUserRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar"}).
			AddRow(userID, "Asha K", "https://cdn.example.com/asha.png"))

	snapshot, err := repo.GetUserSnapshot(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, snapshot.ID)
	assert.Equal(t, "Asha K", snapshot.Name)
	assert.Equal(t, "https://cdn.example.com/asha.png", snapshot.Avatar)
}

func TestGetUserSnapshot_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewUserRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetUserSnapshot(context.Background(), userID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTouchLastSeen(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewUserRepository(db)

	userID := uuid.New()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(userID, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.TouchLastSeen(context.Background(), userID, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
