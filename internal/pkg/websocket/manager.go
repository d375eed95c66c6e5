package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	jwtpkg "github.com/ridecrew/ridecrew/internal/pkg/jwt"
	"github.com/ridecrew/ridecrew/internal/pkg/logger"
	"github.com/ridecrew/ridecrew/internal/pkg/models"
)

// Manager authenticates and upgrades incoming realtime connections
type Manager struct {
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		cfg: jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates the handshake, upgrades to a websocket,
// and hands the wrapped client to the handler. The connection is closed
// when the handler returns.
func (m *Manager) HandleConnection(c echo.Context, handle func(*Client) error) error {
	identity, err := m.authenticate(c)
	if err != nil {
		return err
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	client := NewClient(models.UserSnapshot{
		ID:   identity.UserID,
		Name: identity.Name,
	}, ws)

	return handle(client)
}

// authenticate resolves the JWT from the Authorization header, falling
// back to the token query parameter for browser clients that cannot set
// headers on the websocket handshake.
func (m *Manager) authenticate(c echo.Context) (*jwtpkg.Identity, error) {
	tokenString := ""

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
		tokenString = parts[1]
	} else {
		tokenString = c.QueryParam("token")
	}

	if tokenString == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication token is required")
	}

	claims, err := jwtpkg.ValidateToken(tokenString, m.cfg.Secret)
	if err != nil {
		logger.Warn("Token validation failed", logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	identity, err := jwtpkg.IdentityFromClaims(claims)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return identity, nil
}
