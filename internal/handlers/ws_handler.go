package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/chat"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated connections into chat channels
type WSHandler struct {
	hub    *chat.Hub
	sender chat.MessageSender
	logger *zap.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *chat.Hub, sender chat.MessageSender, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, sender: sender, logger: logger}
}

// RegisterWSRoutes registers the websocket route
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect upgrades the request and services the channel until it closes.
// Presence registration happens on the join event, not on upgrade.
func (h *WSHandler) Connect(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Uint("user", currentUserID), zap.Error(err))
		return err
	}

	client := chat.NewClient(h.hub, conn, h.sender, h.logger)
	client.Run()
	return nil
}
