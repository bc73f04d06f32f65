package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nordinkamal/sochel/pkg/apperrors"
	"github.com/nordinkamal/sochel/pkg/logger"
	"go.uber.org/zap"
)

// getUserIDFromContext returns the authenticated user id set by the JWT
// middleware, or 0 when the request is unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	return 0
}

// toHTTPError maps the service error taxonomy onto HTTP statuses. Domain
// kinds keep their message; storage failures are logged and surfaced as a
// generic 500 so the cause never reaches an untrusted caller.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrInvalidOperation), errors.Is(err, apperrors.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		logger.Get().Error("storage failure", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
