package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/aviary-social/backend/internal/apperrors"
)

// ErrorHandler maps every error escaping a handler to one response.
// Validation and conflict errors render their field-keyed messages;
// internal errors are logged with full detail and reported to the client
// as an opaque body.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperrors.KindInternal {
			log.Error().Err(appErr).Str("path", c.Path()).Msg("internal error")
		}
		body := any(echo.Map{"error": appErr.Message})
		if len(appErr.Fields) > 0 {
			body = appErr.Fields
		}
		if err := c.JSON(appErr.Status(), body); err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if err := c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message}); err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
		return
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	if err := c.JSON(http.StatusInternalServerError, echo.Map{"error": "something went wrong"}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}
