package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/apperrors"
	"github.com/aviary-social/backend/internal/identity"
	"github.com/aviary-social/backend/internal/repositories"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextKeyUID      = "authUID"
	ContextKeyHandle   = "authHandle"
	ContextKeyImageURL = "authImageURL"
)

// AuthUser is the identity attached to an authenticated request.
type AuthUser struct {
	UID      string
	Handle   string
	ImageURL string
}

// AuthUserFromContext reads the identity Auth stored on the context.
func AuthUserFromContext(c echo.Context) AuthUser {
	uid, _ := c.Get(ContextKeyUID).(string)
	handle, _ := c.Get(ContextKeyHandle).(string)
	imageURL, _ := c.Get(ContextKeyImageURL).(string)
	return AuthUser{UID: uid, Handle: handle, ImageURL: imageURL}
}

// Auth verifies the bearer credential and resolves it to a user handle
// and profile image. Verification failures and unknown subjects both map
// to a generic 403 so provider internals never leak.
func Auth(provider identity.Provider, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return apperrors.Unauthenticated("Unauthorised")
			}

			token := header
			if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}

			uid, err := provider.VerifyToken(c.Request().Context(), token)
			if err != nil {
				return apperrors.InvalidCredential("Unauthorised", err)
			}

			user, err := users.GetUserByProviderUID(c.Request().Context(), uid)
			if err != nil {
				return apperrors.InvalidCredential("Unauthorised", err)
			}

			c.Set(ContextKeyUID, uid)
			c.Set(ContextKeyHandle, user.Handle)
			c.Set(ContextKeyImageURL, user.ImageURL)
			return next(c)
		}
	}
}
