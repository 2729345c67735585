package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/apperrors"
	"github.com/aviary-social/backend/internal/middleware"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/objectstorage"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UserHandler handles profile, image and notification-read requests.
type UserHandler struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	likeRepository         repositories.LikeRepository
	notificationRepository repositories.NotificationRepository
	storage                objectstorage.Storage
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	likeRepo repositories.LikeRepository,
	notifRepo repositories.NotificationRepository,
	storage objectstorage.Storage,
) *UserHandler {
	return &UserHandler{
		userRepository:         userRepo,
		postRepository:         postRepo,
		likeRepository:         likeRepo,
		notificationRepository: notifRepo,
		storage:                storage,
	}
}

// RegisterUserRoutes registers the authenticated user routes on the
// protected group and the public profile route on the echo instance.
func (h *UserHandler) RegisterUserRoutes(e *echo.Echo, authed *echo.Group) {
	authed.POST("/user/image", h.UploadImage)
	authed.POST("/user", h.UpdateDetails)
	authed.GET("/user", h.GetAuthenticatedUser)
	authed.POST("/notifications", h.MarkNotificationsRead)
	e.GET("/user/:handle", h.GetUserProfile)
}

// UploadImage stores a profile picture and points the user document at
// its public URL. The fan-out engine propagates the new URL to the
// user's posts.
func (h *UserHandler) UploadImage(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation(map[string]string{"error": "No image file provided"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return apperrors.Validation(map[string]string{"error": "Wrong file type."})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer file.Close()

	name := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	imageURL, err := h.storage.Save(c.Request().Context(), name, contentType, file)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := h.userRepository.UpdateImageURL(c.Request().Context(), authUser.Handle, imageURL); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "image has been uploaded"})
}

// UpdateDetails merges non-blank bio/link/location fields into the user
// document. A link without an http prefix gets http:// prepended.
func (h *UserHandler) UpdateDetails(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)

	var req models.UpdateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}

	details := store.Document{}
	if bio := strings.TrimSpace(req.Bio); bio != "" {
		details["bio"] = bio
	}
	if link := strings.TrimSpace(req.Link); link != "" {
		if !strings.HasPrefix(link, "http") {
			link = "http://" + link
		}
		details["link"] = link
	}
	if location := strings.TrimSpace(req.Location); location != "" {
		details["location"] = location
	}

	if err := h.userRepository.UpdateDetails(c.Request().Context(), authUser.Handle, details); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Details added successfully"})
}

// GetAuthenticatedUser assembles the caller's composite view: profile,
// likes and notifications, in that order.
func (h *UserHandler) GetAuthenticatedUser(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByHandle(ctx, authUser.Handle)
	if err != nil {
		return apperrors.Internal(err)
	}

	likes, err := h.likeRepository.GetLikesByHandle(ctx, authUser.Handle)
	if err != nil {
		return apperrors.Internal(err)
	}

	notifications, err := h.notificationRepository.GetByRecipient(ctx, authUser.Handle)
	if err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"credentials":   user,
		"likes":         likes,
		"notifications": notifications,
	})
}

// GetUserProfile returns a public profile with the user's posts, newest
// first.
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	handle := c.Param("handle")
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal(err)
	}

	posts, err := h.postRepository.GetPostsByHandle(ctx, handle)
	if err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"posts": posts,
	})
}

// MarkNotificationsRead flags the posted notification ids read in one
// batch.
func (h *UserHandler) MarkNotificationsRead(c echo.Context) error {
	var ids []string
	if err := c.Bind(&ids); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}

	if err := h.notificationRepository.MarkRead(c.Request().Context(), ids); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications are marked read"})
}
