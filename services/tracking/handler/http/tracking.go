package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/middleware"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
	"github.com/ridecrew/ridecrew/internal/utils"
	"github.com/ridecrew/ridecrew/services/tracking"
)

// TrackingHandler handles HTTP requests for tracking session operations
type TrackingHandler struct {
	trackingUC tracking.TrackingUC
}

// NewTrackingHandler creates a new tracking HTTP handler
func NewTrackingHandler(trackingUC tracking.TrackingUC) *TrackingHandler {
	return &TrackingHandler{trackingUC: trackingUC}
}

// riderID extracts the authenticated rider from the request context
func riderID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(middleware.ContextUserID).(uuid.UUID)
	return id, ok
}

// StartSession handles POST /v1/tracking/start
func (h *TrackingHandler) StartSession(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	session, err := h.trackingUC.StartSession(c.Request().Context(), rider, req)
	if err != nil {
		logger.Warn("Failed to start tracking session",
			logger.String("trip_id", req.TripID),
			logger.String("rider_id", rider.String()),
			logger.Err(err))
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Tracking session started", echo.Map{
		"sessionId": session.SessionID,
		"session":   session,
	})
}

// IngestPoint handles POST /v1/tracking/point
func (h *TrackingHandler) IngestPoint(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.PointRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	ack, err := h.trackingUC.IngestPoint(c.Request().Context(), rider, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Point recorded", ack)
}

// PauseSession handles POST /v1/tracking/:sessionId/pause
func (h *TrackingHandler) PauseSession(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.PauseRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	session, err := h.trackingUC.PauseSession(c.Request().Context(), rider, c.Param("sessionId"), req.Reason)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking session paused", echo.Map{
		"status":     session.Status,
		"pauseCount": len(session.Pauses),
	})
}

// ResumeSession handles POST /v1/tracking/:sessionId/resume
func (h *TrackingHandler) ResumeSession(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	session, err := h.trackingUC.ResumeSession(c.Request().Context(), rider, c.Param("sessionId"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking session resumed", echo.Map{
		"status":         session.Status,
		"totalPauseTime": session.TotalPauseTime,
	})
}

// StopSession handles POST /v1/tracking/stop
func (h *TrackingHandler) StopSession(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.StopSessionRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	session, err := h.trackingUC.StopSession(c.Request().Context(), rider, req)
	if err != nil {
		logger.Warn("Failed to stop tracking session",
			logger.String("session_id", req.SessionID),
			logger.String("rider_id", rider.String()),
			logger.Err(err))
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking session completed", echo.Map{
		"session": session,
	})
}

// CancelSession handles POST /v1/tracking/:sessionId/cancel
func (h *TrackingHandler) CancelSession(c echo.Context) error {
	rider, ok := riderID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	session, err := h.trackingUC.CancelSession(c.Request().Context(), rider, c.Param("sessionId"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking session cancelled", echo.Map{
		"session": session,
	})
}

// GetSession handles GET /v1/tracking/:sessionId
func (h *TrackingHandler) GetSession(c echo.Context) error {
	session, err := h.trackingUC.GetSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking session", session)
}

// GetLiveSession handles GET /v1/tracking/:sessionId/live
func (h *TrackingHandler) GetLiveSession(c echo.Context) error {
	live, err := h.trackingUC.GetLiveSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Live tracking state", live)
}

// NearbyRiders handles GET /v1/riders/nearby
func (h *TrackingHandler) NearbyRiders(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lat is required")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lng is required")
	}

	var radiusKm float64
	if raw := c.QueryParam("radiusKm"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "radiusKm must be a number")
		}
	}

	riders, err := h.trackingUC.NearbyRiders(c.Request().Context(), lat, lng, radiusKm)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Nearby riders", echo.Map{
		"riders": riders,
		"count":  len(riders),
	})
}
