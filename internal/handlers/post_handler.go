package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	interactions   *services.InteractionService
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(interactions *services.InteractionService, postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{
		interactions:   interactions,
		postRepository: postRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/me/all", h.DeleteAllPosts)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post. The image URI, if any, was already uploaded
// through the asset-store collaborator.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.interactions.CreatePost(c.Request().Context(), currentUserID, req.Content, req.Image)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves posts, newest first, optionally filtered by author
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 50 {
		limit = 50
	}

	var posts []models.Post
	var err error
	if author := c.QueryParam("author"); author != "" {
		authorID, perr := strconv.ParseUint(author, 10, 32)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		posts, err = h.postRepository.GetPostsByAuthor(c.Request().Context(), uint(authorID), skip, limit)
	} else {
		posts, err = h.postRepository.GetAllPosts(c.Request().Context(), skip, limit)
	}
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, posts)
}

// DeletePost deletes a post, its likes and its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.interactions.DeletePost(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAllPosts deletes every post the caller has authored
func (h *PostHandler) DeleteAllPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	deleted, err := h.interactions.DeleteAllPosts(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
