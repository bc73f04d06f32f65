package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/services"
)

// MessageHandler handles the REST side of chat: history, deletion and the
// conversation index. Live traffic goes over the websocket route.
type MessageHandler struct {
	chat *services.ChatService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(chat *services.ChatService) *MessageHandler {
	return &MessageHandler{chat: chat}
}

// RegisterMessageRoutes registers message-related routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages/:userId", h.GetHistory)
	g.DELETE("/messages/:id", h.DeleteMessage)
	g.GET("/conversations", h.GetConversations)
}

// GetHistory returns the transcript between the caller and another user,
// oldest first.
func (h *MessageHandler) GetHistory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	history, err := h.chat.History(c.Request().Context(), currentUserID, uint(otherID))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, history)
}

// DeleteMessage hard-deletes a message (sender only)
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.chat.Delete(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetConversations lists everyone the caller has exchanged messages with
func (h *MessageHandler) GetConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.chat.Conversations(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, conversations)
}
