package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/apperrors"
	"github.com/aviary-social/backend/internal/identity"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/objectstorage"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
)

const defaultImageName = "no-image.jpg"

// AuthHandler handles signup and login.
type AuthHandler struct {
	userRepository repositories.UserRepository
	provider       identity.Provider
	storage        objectstorage.Storage
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, provider identity.Provider, storage objectstorage.Storage) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		provider:       provider,
		storage:        storage,
	}
}

// RegisterAuthRoutes registers the unauthenticated auth routes.
func (h *AuthHandler) RegisterAuthRoutes(e *echo.Echo) {
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
}

// Signup validates the request, claims the handle, registers the account
// with the identity provider and stores the profile document keyed by
// handle.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	_, err := h.userRepository.GetUserByHandle(ctx, req.Handle)
	if err == nil {
		return apperrors.Conflict("handle taken", map[string]string{"handle": "Handle is already taken."})
	}
	if !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal(err)
	}

	uid, token, err := h.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return apperrors.Conflict("email taken", map[string]string{"email": "Email is already taken."})
		}
		return apperrors.Internal(err)
	}

	user := models.User{
		Handle:    req.Handle,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
		ImageURL:  h.storage.PublicURL(defaultImageName),
		UserID:    uid,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}

// Login exchanges email/password for a token. Bad credentials come back
// as a generic 403 body regardless of which part was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrWrongCredentials) {
			return &apperrors.Error{
				Kind:    apperrors.KindInvalidCredential,
				Message: "wrong credentials",
				Fields:  map[string]string{"general": "Wrong credentials, please try again."},
			}
		}
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
