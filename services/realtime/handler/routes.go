package handler

import (
	"github.com/labstack/echo/v4"

	ws "github.com/ridecrew/ridecrew/internal/pkg/websocket"
	"github.com/ridecrew/ridecrew/services/realtime"
	wsHandler "github.com/ridecrew/ridecrew/services/realtime/handler/websocket"
)

// Handler combines all handlers for the realtime service
type Handler struct {
	manager *ws.Manager
	events  *wsHandler.Handler
}

// NewHandler creates a new combined handler
func NewHandler(
	manager *ws.Manager,
	registry *ws.Registry,
	broadcaster realtime.Broadcaster,
	trips realtime.TripStore,
	messages realtime.MessageStore,
	notifications realtime.NotificationStore,
	users realtime.UserStore,
) *Handler {
	return &Handler{
		manager: manager,
		events:  wsHandler.NewHandler(registry, broadcaster, trips, messages, notifications, users),
	}
}

// RegisterRoutes registers the websocket upgrade endpoint. Handshake
// auth happens inside the manager, not the HTTP middleware chain.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", func(c echo.Context) error {
		return h.manager.HandleConnection(c, h.events.HandleClient)
	})
}
