package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/apperrors"
	"github.com/aviary-social/backend/internal/middleware"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
)

// CommentHandler handles HTTP requests related to comments.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes.
func (h *CommentHandler) RegisterCommentRoutes(authed *echo.Group) {
	authed.POST("/posts/:postId/comment", h.CreateComment)
}

// CreateComment adds a comment to a post. The comment document is
// created before the counter increments, the same ordering likes use, so
// a crash in between never inflates the counter past the real comment
// count.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)
	postID := c.Param("postId")
	ctx := c.Request().Context()

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.Validation(map[string]string{"body": "Must not be empty"})
	}

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Post not found")
		}
		return apperrors.Internal(err)
	}

	comment := models.Comment{
		PostID:     postID,
		UserHandle: authUser.Handle,
		UserImage:  authUser.ImageURL,
		Body:       req.Body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.commentRepository.CreateComment(ctx, &comment); err != nil {
		return apperrors.Internal(err)
	}
	if err := h.postRepository.IncrementCommentCount(ctx, postID, 1); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusCreated, comment)
}
