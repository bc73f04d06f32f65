package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
)

// ProfileHandler serves profile pages and the discover list. Profiles are
// read-only composites over the user, follow and post stores.
type ProfileHandler struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	posts   repositories.PostRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(users repositories.UserRepository, follows repositories.FollowRepository, posts repositories.PostRepository) *ProfileHandler {
	return &ProfileHandler{users: users, follows: follows, posts: posts}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/me", h.GetMyProfile)
	g.GET("/profile/:userId", h.GetProfile)
	g.GET("/users", h.GetUsers)
}

type profileResponse struct {
	User           *models.User  `json:"user"`
	Posts          []models.Post `json:"posts"`
	FollowersCount int64         `json:"followersCount"`
	FollowingCount int64         `json:"followingCount"`
	IsFollowing    bool          `json:"isFollowing"`
}

// GetMyProfile returns the caller's own profile
func (h *ProfileHandler) GetMyProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return h.renderProfile(c, currentUserID, currentUserID)
}

// GetProfile returns another user's profile, including whether the caller
// follows them.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profileID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	return h.renderProfile(c, uint(profileID), currentUserID)
}

func (h *ProfileHandler) renderProfile(c echo.Context, profileID, viewerID uint) error {
	user, err := h.users.GetUserByID(profileID)
	if err != nil {
		return toHTTPError(err)
	}

	posts, err := h.posts.GetPostsByAuthor(c.Request().Context(), profileID, 0, 50)
	if err != nil {
		return toHTTPError(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	followersCount, err := h.follows.GetFollowersCount(profileID)
	if err != nil {
		return toHTTPError(err)
	}
	followingCount, err := h.follows.GetFollowingCount(profileID)
	if err != nil {
		return toHTTPError(err)
	}

	isFollowing := false
	if viewerID != profileID {
		isFollowing, err = h.follows.IsFollowing(viewerID, profileID)
		if err != nil {
			return toHTTPError(err)
		}
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:           user,
		Posts:          posts,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
	})
}

type discoverUser struct {
	models.UserCompact
	IsFollowing bool `json:"isFollowing"`
}

// GetUsers returns a discover list of other users with the caller's follow
// status against each.
func (h *ProfileHandler) GetUsers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	users, err := h.users.GetUsers(currentUserID, 50)
	if err != nil {
		return toHTTPError(err)
	}

	result := make([]discoverUser, 0, len(users))
	for i := range users {
		isFollowing, err := h.follows.IsFollowing(currentUserID, users[i].ID)
		if err != nil {
			return toHTTPError(err)
		}
		result = append(result, discoverUser{UserCompact: users[i].ToCompact(), IsFollowing: isFollowing})
	}

	return c.JSON(http.StatusOK, result)
}
