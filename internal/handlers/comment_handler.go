package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	interactions *services.InteractionService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(interactions *services.InteractionService) *CommentHandler {
	return &CommentHandler{interactions: interactions}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)
}

// CreateComment adds a comment to a post and returns the updated sequence
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comments, err := h.interactions.AddComment(c.Request().Context(), c.Param("id"), currentUserID, req.Text)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, comments)
}

// DeleteComment removes a comment and returns the updated sequence
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comments, err := h.interactions.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("commentId"), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, comments)
}
