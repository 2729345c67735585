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

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPostRoutes registers public post routes on the echo instance
// and protected ones on the authenticated group.
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, authed *echo.Group) {
	e.GET("/posts", h.ListPosts)
	e.GET("/posts/:postId", h.GetPost)
	authed.POST("/posts", h.CreatePost)
	authed.DELETE("/posts/:postId", h.DeletePost)
}

// ListPosts returns every post, newest first.
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return apperrors.Internal(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost creates a post owned by the caller, denormalizing the
// caller's handle and image and zeroing both counters.
func (h *PostHandler) CreatePost(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation(map[string]string{"error": "Invalid request payload"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.Validation(map[string]string{"body": "Your post must have contain words."})
	}

	post := models.Post{
		UserHandle:   authUser.Handle,
		UserImage:    authUser.ImageURL,
		Content:      req.Content,
		CreatedAt:    time.Now().UTC(),
		LikeCount:    0,
		CommentCount: 0,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), &post); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost returns one post with its comments, newest comment first.
func (h *PostHandler) GetPost(c echo.Context) error {
	postID := c.Param("postId")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Post not found")
		}
		return apperrors.Internal(err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, models.PostWithComments{Post: *post, Comments: comments})
}

// DeletePost removes a post after an ownership check. Dependent comments,
// likes and notifications are cleaned up asynchronously by the fan-out
// engine, so they may transiently outlive the post.
func (h *PostHandler) DeletePost(c echo.Context) error {
	authUser := middleware.AuthUserFromContext(c)
	postID := c.Param("postId")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Post is not found")
		}
		return apperrors.Internal(err)
	}
	if post.UserHandle != authUser.Handle {
		return apperrors.Forbidden("Unauthorised")
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "The post has been deleted successfully"})
}
