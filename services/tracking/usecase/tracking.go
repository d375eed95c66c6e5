package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridecrew/ridecrew/internal/pkg/apperr"
	"github.com/ridecrew/ridecrew/internal/pkg/geo"
	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/services/tracking"
)

type trackingUC struct {
	cfg          models.TrackingConfig
	trackingRepo tracking.TrackingRepo
	tripStore    tracking.TripStore
	cache        tracking.LocationCache
	trackingGW   tracking.TrackingGW

	now func() time.Time
}

// NewTrackingUC creates a new tracking use case
func NewTrackingUC(
	cfg models.TrackingConfig,
	trackingRepo tracking.TrackingRepo,
	tripStore tracking.TripStore,
	cache tracking.LocationCache,
	trackingGW tracking.TrackingGW,
) tracking.TrackingUC {
	return &trackingUC{
		cfg:          cfg,
		trackingRepo: trackingRepo,
		tripStore:    tripStore,
		cache:        cache,
		trackingGW:   trackingGW,
		now:          time.Now,
	}
}

// newSessionID generates a session identifier unique across processes
func newSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("TRK_%d_%s", now.UnixMilli(), random[:9])
}

// roundMinutes converts a duration to whole minutes, rounding half up
func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// StartSession opens a new active session for a trip member. The
// duplicate-session check is delegated to the repository's uniqueness
// constraint so two concurrent starts cannot both win.
func (uc *trackingUC) StartSession(ctx context.Context, riderID uuid.UUID, req models.StartSessionRequest) (*models.TrackingSession, error) {
	if req.TripID == "" {
		return nil, apperr.Validation("tripId is required")
	}
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, apperr.Validation("tripId is not a valid id")
	}

	trip, err := uc.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.IsMember(riderID) {
		return nil, apperr.Forbidden("rider is not a participant of this trip")
	}

	now := uc.now()
	startedAt := now
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	session := &models.TrackingSession{
		SessionID:   newSessionID(now),
		TripID:      tripID,
		RiderID:     riderID,
		Status:      models.SessionStatusActive,
		StartedAt:   startedAt,
		RoutePoints: []models.RoutePoint{},
		Pauses:      []models.Pause{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.trackingRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if err := uc.tripStore.AppendSession(ctx, tripID, session.SessionID); err != nil {
		logger.Warn("Failed to append session to trip",
			logger.String("session_id", session.SessionID),
			logger.String("trip_id", tripID.String()),
			logger.Err(err))
	}

	if err := uc.trackingGW.PublishSessionStarted(ctx, session); err != nil {
		logger.Warn("Failed to publish session started event",
			logger.String("session_id", session.SessionID),
			logger.Err(err))
	}

	logger.Info("Tracking session started",
		logger.String("session_id", session.SessionID),
		logger.String("trip_id", tripID.String()),
		logger.String("rider_id", riderID.String()))

	return session, nil
}

// IngestPoint appends a GPS sample to an active session and advances the
// rolling statistics. Distance accumulates between consecutive points
// with no smoothing or outlier rejection, so GPS noise inflates it; that
// is an accepted approximation.
func (uc *trackingUC) IngestPoint(ctx context.Context, riderID uuid.UUID, req models.PointRequest) (*models.PointAck, error) {
	if req.SessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}
	if req.Lat == nil || req.Lng == nil {
		return nil, apperr.Validation("lat and lng are required")
	}

	session, err := uc.trackingRepo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.RiderID != riderID {
		return nil, apperr.Forbidden("session belongs to another rider")
	}
	if session.Status != models.SessionStatusActive {
		return nil, apperr.InvalidState("session is %s, not active", session.Status)
	}

	now := uc.now()
	timestamp := now
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	point := models.RoutePoint{
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Timestamp: timestamp,
		Speed:     req.Speed,
		Altitude:  req.Altitude,
		Accuracy:  req.Accuracy,
	}

	if last := session.LastPoint(); last != nil {
		session.TotalDistance += geo.HaversineKm(last.Lat, last.Lng, point.Lat, point.Lng)
	}
	session.RoutePoints = append(session.RoutePoints, point)

	session.CurrentLocation = &models.CurrentLocation{
		Lat:       point.Lat,
		Lng:       point.Lng,
		Accuracy:  point.Accuracy,
		Timestamp: timestamp,
	}
	session.Geohash = geo.Encode(point.Lat, point.Lng, uc.cfg.GeohashPrecision)

	if point.Speed != nil && *point.Speed > 0 {
		session.SpeedSum += *point.Speed
		session.SpeedCount++
		session.AverageSpeed = geo.MeanSpeed(session.SpeedSum, session.SpeedCount)
		if *point.Speed > session.MaxSpeed {
			session.MaxSpeed = *point.Speed
		}
	}
	session.UpdatedAt = now

	ok, err := uc.trackingRepo.UpdatePointData(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyGuardFailure(ctx, session.SessionID, models.SessionStatusActive)
	}

	if err := uc.cache.UpdateRiderLocation(ctx, riderID.String(), point.Lat, point.Lng); err != nil {
		logger.Warn("Failed to update rider geo position",
			logger.String("rider_id", riderID.String()),
			logger.Err(err))
	}

	return &models.PointAck{
		CurrentLocation:  session.CurrentLocation,
		TotalDistance:    session.TotalDistance,
		AverageSpeed:     session.AverageSpeed,
		MaxSpeed:         session.MaxSpeed,
		RoutePointsCount: len(session.RoutePoints),
	}, nil
}

// PauseSession transitions active -> paused and opens a pause record
func (uc *trackingUC) PauseSession(ctx context.Context, riderID uuid.UUID, sessionID string, reason string) (*models.TrackingSession, error) {
	if sessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}

	session, err := uc.trackingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RiderID != riderID {
		return nil, apperr.Forbidden("session belongs to another rider")
	}
	if session.Status != models.SessionStatusActive {
		return nil, apperr.InvalidState("session is %s, not active", session.Status)
	}

	now := uc.now()
	session.Status = models.SessionStatusPaused
	session.Pauses = append(session.Pauses, models.Pause{
		StartTime: now,
		Reason:    reason,
	})
	session.UpdatedAt = now

	ok, err := uc.trackingRepo.MarkPaused(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyGuardFailure(ctx, sessionID, models.SessionStatusActive)
	}

	return session, nil
}

// ResumeSession transitions paused -> active, closing the open pause and
// accumulating its rounded duration
func (uc *trackingUC) ResumeSession(ctx context.Context, riderID uuid.UUID, sessionID string) (*models.TrackingSession, error) {
	if sessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}

	session, err := uc.trackingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RiderID != riderID {
		return nil, apperr.Forbidden("session belongs to another rider")
	}
	if session.Status != models.SessionStatusPaused {
		return nil, apperr.InvalidState("session is %s, not paused", session.Status)
	}

	now := uc.now()
	uc.closeOpenPause(session, now)
	session.Status = models.SessionStatusActive
	session.UpdatedAt = now

	ok, err := uc.trackingRepo.MarkResumed(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyGuardFailure(ctx, sessionID, models.SessionStatusPaused)
	}

	return session, nil
}

// StopSession completes the session from active or paused. A second stop
// is a Conflict, never a silent no-op. When this was the trip's last live
// session the trip itself is advanced to completed.
func (uc *trackingUC) StopSession(ctx context.Context, riderID uuid.UUID, req models.StopSessionRequest) (*models.TrackingSession, error) {
	if req.SessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}

	session, err := uc.trackingRepo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.RiderID != riderID {
		return nil, apperr.Forbidden("session belongs to another rider")
	}
	if session.Status == models.SessionStatusCompleted {
		return nil, apperr.Conflict("session is already completed")
	}
	if session.Status == models.SessionStatusCancelled {
		return nil, apperr.InvalidState("session is cancelled")
	}

	now := uc.now()
	endedAt := now
	if req.EndedAt != nil {
		endedAt = *req.EndedAt
	}

	// Pause time is never lost on stop-while-paused
	uc.closeOpenPause(session, endedAt)

	session.Status = models.SessionStatusCompleted
	session.EndedAt = &endedAt
	session.TotalDuration = roundMinutes(endedAt.Sub(session.StartedAt))

	activeMinutes := session.TotalDuration - session.TotalPauseTime
	if session.TotalDistance > 0 && activeMinutes > 0 {
		session.AverageSpeed = math.Round(session.TotalDistance / float64(activeMinutes) * 60)
	}
	session.UpdatedAt = now

	ok, err := uc.trackingRepo.MarkCompleted(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyGuardFailure(ctx, req.SessionID, models.SessionStatusActive)
	}

	if err := uc.cache.RemoveRiderLocation(ctx, riderID.String()); err != nil {
		logger.Warn("Failed to remove rider geo position",
			logger.String("rider_id", riderID.String()),
			logger.Err(err))
	}

	if err := uc.trackingGW.PublishSessionCompleted(ctx, session); err != nil {
		logger.Warn("Failed to publish session completed event",
			logger.String("session_id", session.SessionID),
			logger.Err(err))
	}

	uc.completeTripIfDone(ctx, session.TripID)

	logger.Info("Tracking session completed",
		logger.String("session_id", session.SessionID),
		logger.Float64("total_distance", session.TotalDistance),
		logger.Int("total_duration", session.TotalDuration))

	return session, nil
}

// CancelSession terminates the session without finalizing statistics.
// Reachable from active or paused only.
func (uc *trackingUC) CancelSession(ctx context.Context, riderID uuid.UUID, sessionID string) (*models.TrackingSession, error) {
	if sessionID == "" {
		return nil, apperr.Validation("sessionId is required")
	}

	session, err := uc.trackingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RiderID != riderID {
		return nil, apperr.Forbidden("session belongs to another rider")
	}
	if session.Status.IsTerminal() {
		return nil, apperr.Conflict("session is already %s", session.Status)
	}

	now := uc.now()
	uc.closeOpenPause(session, now)
	session.Status = models.SessionStatusCancelled
	session.EndedAt = &now
	session.UpdatedAt = now

	ok, err := uc.trackingRepo.MarkCancelled(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyGuardFailure(ctx, sessionID, models.SessionStatusActive)
	}

	if err := uc.cache.RemoveRiderLocation(ctx, riderID.String()); err != nil {
		logger.Warn("Failed to remove rider geo position",
			logger.String("rider_id", riderID.String()),
			logger.Err(err))
	}

	return session, nil
}

// GetSession returns the full session detail including the trace
func (uc *trackingUC) GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error) {
	return uc.trackingRepo.GetSession(ctx, sessionID)
}

// GetLiveSession returns the lightweight poll view without the trace
func (uc *trackingUC) GetLiveSession(ctx context.Context, sessionID string) (*models.LiveSession, error) {
	session, err := uc.trackingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.LiveSession{
		SessionID:        session.SessionID,
		TripID:           session.TripID,
		RiderID:          session.RiderID,
		Status:           session.Status,
		StartedAt:        session.StartedAt,
		CurrentLocation:  session.CurrentLocation,
		TotalDistance:    session.TotalDistance,
		AverageSpeed:     session.AverageSpeed,
		MaxSpeed:         session.MaxSpeed,
		TotalPauseTime:   session.TotalPauseTime,
		RoutePointsCount: len(session.RoutePoints),
	}, nil
}

// NearbyRiders queries the live geo set around a point
func (uc *trackingUC) NearbyRiders(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyRider, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("lat/lng out of range")
	}
	if radiusKm <= 0 {
		radiusKm = uc.cfg.NearbyRadiusKm
	}
	return uc.cache.NearbyRiders(ctx, lat, lng, radiusKm)
}

// closeOpenPause closes the session's open pause record at the given
// instant and accumulates its rounded duration
func (uc *trackingUC) closeOpenPause(session *models.TrackingSession, at time.Time) {
	idx := session.OpenPause()
	if idx < 0 {
		return
	}
	pause := &session.Pauses[idx]
	end := at
	pause.EndTime = &end
	pause.Duration = roundMinutes(end.Sub(pause.StartTime))
	session.TotalPauseTime += pause.Duration
}

// classifyGuardFailure reloads the session after a conditional update
// matched no row and maps what it finds onto the error taxonomy: a
// concurrent completion surfaces as Conflict, anything else as
// InvalidState against the status the operation required
func (uc *trackingUC) classifyGuardFailure(ctx context.Context, sessionID string, required models.SessionStatus) error {
	current, err := uc.trackingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if current.Status == models.SessionStatusCompleted {
		return apperr.Conflict("session is already completed")
	}
	return apperr.InvalidState("session is %s, not %s", current.Status, required)
}

// completeTripIfDone advances the trip to completed when no live
// sessions remain. Best effort: a failure here leaves the trip active
// and is only logged, the session stop already succeeded.
func (uc *trackingUC) completeTripIfDone(ctx context.Context, tripID uuid.UUID) {
	remaining, err := uc.tripStore.CountNonTerminalSessions(ctx, tripID)
	if err != nil {
		logger.Warn("Failed to count live sessions for trip",
			logger.String("trip_id", tripID.String()),
			logger.Err(err))
		return
	}
	if remaining > 0 {
		return
	}

	if err := uc.tripStore.UpdateTripStatus(ctx, tripID, models.TripStatusCompleted); err != nil {
		logger.Warn("Failed to complete trip",
			logger.String("trip_id", tripID.String()),
			logger.Err(err))
		return
	}

	if err := uc.trackingGW.PublishTripCompleted(ctx, tripID); err != nil {
		logger.Warn("Failed to publish trip completed event",
			logger.String("trip_id", tripID.String()),
			logger.Err(err))
	}
}
