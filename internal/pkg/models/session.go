package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a tracking session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// RoutePoint is a single GPS sample in a session's trace
type RoutePoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`    // km/h
	Altitude  *float64  `json:"altitude,omitempty"` // meters
	Accuracy  *float64  `json:"accuracy,omitempty"`
}

// CurrentLocation is the denormalized copy of the most recent route point.
// The tail of RoutePoints is authoritative; this exists for cheap reads.
type CurrentLocation struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Pause records one pause interval of a session
type Pause struct {
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  int        `json:"duration,omitempty"` // minutes
	Reason    string     `json:"reason,omitempty"`
}

// Open reports whether the pause has not been closed yet
func (p Pause) Open() bool {
	return p.EndTime == nil
}

// TrackingSession is one rider's recorded ride against one trip
type TrackingSession struct {
	SessionID       string           `json:"sessionId" db:"session_id"`
	TripID          uuid.UUID        `json:"tripId" db:"trip_id"`
	RiderID         uuid.UUID        `json:"riderId" db:"rider_id"`
	Status          SessionStatus    `json:"status" db:"status"`
	StartedAt       time.Time        `json:"startedAt" db:"started_at"`
	EndedAt         *time.Time       `json:"endedAt,omitempty" db:"ended_at"`
	CurrentLocation *CurrentLocation `json:"currentLocation,omitempty"`
	Geohash         string           `json:"geohash,omitempty" db:"geohash"`
	RoutePoints     []RoutePoint     `json:"routePoints"`
	Pauses          []Pause          `json:"pauses"`
	TotalDistance   float64          `json:"totalDistance" db:"total_distance"` // km
	TotalDuration   int              `json:"totalDuration" db:"total_duration"` // minutes, set at completion
	AverageSpeed    float64          `json:"averageSpeed" db:"average_speed"`   // km/h
	MaxSpeed        float64          `json:"maxSpeed" db:"max_speed"`           // km/h
	TotalPauseTime  int              `json:"totalPauseTime" db:"total_pause_time"`
	SpeedSum        float64          `json:"-" db:"speed_sum"` // running sum for the incremental mean
	SpeedCount      int              `json:"-" db:"speed_count"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// LastPoint returns the most recently ingested route point, or nil
func (s *TrackingSession) LastPoint() *RoutePoint {
	if len(s.RoutePoints) == 0 {
		return nil
	}
	return &s.RoutePoints[len(s.RoutePoints)-1]
}

// OpenPause returns the index of the open pause record, or -1.
// At most one pause is open at a time.
func (s *TrackingSession) OpenPause() int {
	if n := len(s.Pauses); n > 0 && s.Pauses[n-1].Open() {
		return n - 1
	}
	return -1
}

// StartSessionRequest opens a new tracking session against a trip
type StartSessionRequest struct {
	TripID    string     `json:"tripId"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// StopSessionRequest completes a tracking session
type StopSessionRequest struct {
	SessionID string     `json:"sessionId"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// PauseRequest carries the optional pause reason
type PauseRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PointRequest is a location sample submitted over HTTP
type PointRequest struct {
	SessionID string     `json:"sessionId"`
	Lat       *float64   `json:"lat"`
	Lng       *float64   `json:"lng"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
}

// PointAck is the rolling-statistics response to a recorded point
type PointAck struct {
	CurrentLocation  *CurrentLocation `json:"currentLocation"`
	TotalDistance    float64          `json:"totalDistance"`
	AverageSpeed     float64          `json:"averageSpeed"`
	MaxSpeed         float64          `json:"maxSpeed"`
	RoutePointsCount int              `json:"routePointsCount"`
}

// LiveSession is the lightweight poll view of a session: status, last
// position and rolling statistics without the full trace
type LiveSession struct {
	SessionID        string           `json:"sessionId"`
	TripID           uuid.UUID        `json:"tripId"`
	RiderID          uuid.UUID        `json:"riderId"`
	Status           SessionStatus    `json:"status"`
	StartedAt        time.Time        `json:"startedAt"`
	CurrentLocation  *CurrentLocation `json:"currentLocation,omitempty"`
	TotalDistance    float64          `json:"totalDistance"`
	AverageSpeed     float64          `json:"averageSpeed"`
	MaxSpeed         float64          `json:"maxSpeed"`
	TotalPauseTime   int              `json:"totalPauseTime"`
	RoutePointsCount int              `json:"routePointsCount"`
}

// NearbyRider is a live rider position returned by the nearby query
type NearbyRider struct {
	RiderID    string  `json:"riderId"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distanceKm"`
}
