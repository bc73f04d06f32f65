package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/services"
)

// LikeHandler handles the like toggle on posts
type LikeHandler struct {
	interactions *services.InteractionService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(interactions *services.InteractionService) *LikeHandler {
	return &LikeHandler{interactions: interactions}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post if the caller hasn't liked it yet, unlikes it
// otherwise, and returns the resulting likes list.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	likes, err := h.interactions.ToggleLike(c.Request().Context(), c.Param("id"), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, likes)
}
