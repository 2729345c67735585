package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/aviary-social/backend/internal/handlers"
	"github.com/aviary-social/backend/internal/identity"
	"github.com/aviary-social/backend/internal/middleware"
	"github.com/aviary-social/backend/internal/objectstorage"
	"github.com/aviary-social/backend/internal/repositories"
	"github.com/aviary-social/backend/internal/store"
)

// SetupMiddleware configures global echo middleware and the central
// error mapper.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = handlers.ErrorHandler
}

// SetupRoutes wires repositories and handlers onto the echo instance.
// Protected routes share one group behind the auth middleware.
func SetupRoutes(e *echo.Echo, s store.Store, provider identity.Provider, storage objectstorage.Storage) {
	userRepo := repositories.NewStoreUserRepository(s)
	postRepo := repositories.NewStorePostRepository(s)
	commentRepo := repositories.NewStoreCommentRepository(s)
	likeRepo := repositories.NewStoreLikeRepository(s)
	notificationRepo := repositories.NewStoreNotificationRepository(s)

	e.GET("/health", handlers.HealthCheck)

	authed := e.Group("", middleware.Auth(provider, userRepo))

	authHandler := handlers.NewAuthHandler(userRepo, provider, storage)
	authHandler.RegisterAuthRoutes(e)

	userHandler := handlers.NewUserHandler(userRepo, postRepo, likeRepo, notificationRepo, storage)
	userHandler.RegisterUserRoutes(e, authed)

	postHandler := handlers.NewPostHandler(postRepo, commentRepo)
	postHandler.RegisterPostRoutes(e, authed)

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo)
	likeHandler.RegisterLikeRoutes(authed)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(authed)
}
