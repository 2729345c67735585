package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aviary-social/backend/internal/apperrors"
	"github.com/aviary-social/backend/internal/middleware"
	"github.com/aviary-social/backend/internal/models"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
)

// LikeHandler handles HTTP requests related to likes.
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler.
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
	}
}

// RegisterLikeRoutes registers like-related routes.
func (h *LikeHandler) RegisterLikeRoutes(authed *echo.Group) {
	authed.GET("/posts/:postId/like", h.LikePost)
	authed.GET("/posts/:postId/unlike", h.UnlikePost)
}

// LikePost records a like for the caller and bumps the post's counter
// with an atomic increment. The like document is created before the
// counter moves, so a crash in between leaves the counter behind, never
// ahead.
func (h *LikeHandler) LikePost(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)
	postID := c.Param("postId")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Post does not exist")
		}
		return apperrors.Internal(err)
	}

	_, err = h.likeRepository.GetLikeByUserAndPost(ctx, authUser.Handle, postID)
	if err == nil {
		return apperrors.Conflict("Post already liked", nil)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return apperrors.Internal(err)
	}

	like := models.Like{PostID: postID, UserHandle: authUser.Handle}
	if err := h.likeRepository.CreateLike(ctx, &like); err != nil {
		return apperrors.Internal(err)
	}
	if err := h.postRepository.IncrementLikeCount(ctx, postID, 1); err != nil {
		return apperrors.Internal(err)
	}

	post.LikeCount++
	return c.JSON(http.StatusOK, post)
}

// UnlikePost removes the caller's like and decrements the counter. No
// floor is enforced; a negative count can only come from pre-existing
// inconsistent data.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)
	postID := c.Param("postId")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Post does not exist")
		}
		return apperrors.Internal(err)
	}

	like, err := h.likeRepository.GetLikeByUserAndPost(ctx, authUser.Handle, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.Conflict("Post was not liked", nil)
		}
		return apperrors.Internal(err)
	}

	if err := h.likeRepository.DeleteLike(ctx, like.ID); err != nil {
		return apperrors.Internal(err)
	}
	if err := h.postRepository.IncrementLikeCount(ctx, postID, -1); err != nil {
		return apperrors.Internal(err)
	}

	post.LikeCount--
	return c.JSON(http.StatusOK, post)
}
