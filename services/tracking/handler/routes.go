package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ridecrew/ridecrew/services/tracking"
	httpHandler "github.com/ridecrew/ridecrew/services/tracking/handler/http"
)

// Handler combines all handlers for the tracking service
type Handler struct {
	trackingHTTP *httpHandler.TrackingHandler
}

// NewHandler creates a new combined handler
func NewHandler(trackingUC tracking.TrackingUC) *Handler {
	return &Handler{
		trackingHTTP: httpHandler.NewTrackingHandler(trackingUC),
	}
}

// RegisterRoutes registers all tracking HTTP routes behind the
// authentication middleware
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	v1 := e.Group("/v1", authMiddleware)

	trackingGroup := v1.Group("/tracking")
	trackingGroup.POST("/start", h.trackingHTTP.StartSession)
	trackingGroup.POST("/point", h.trackingHTTP.IngestPoint)
	trackingGroup.POST("/stop", h.trackingHTTP.StopSession)
	trackingGroup.POST("/:sessionId/pause", h.trackingHTTP.PauseSession)
	trackingGroup.POST("/:sessionId/resume", h.trackingHTTP.ResumeSession)
	trackingGroup.POST("/:sessionId/cancel", h.trackingHTTP.CancelSession)
	trackingGroup.GET("/:sessionId", h.trackingHTTP.GetSession)
	trackingGroup.GET("/:sessionId/live", h.trackingHTTP.GetLiveSession)

	v1.GET("/riders/nearby", h.trackingHTTP.NearbyRiders)
}
