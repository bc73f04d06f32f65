package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nordinkamal/sochel/internal/chat"
	"github.com/nordinkamal/sochel/internal/handlers"
	"github.com/nordinkamal/sochel/internal/middleware"
	"github.com/nordinkamal/sochel/internal/models"
	"github.com/nordinkamal/sochel/internal/repositories"
	"github.com/nordinkamal/sochel/internal/services"
	"github.com/nordinkamal/sochel/pkg/config"
	"github.com/nordinkamal/sochel/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config) error {
	log := logger.Get()

	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDatabase := db.Mongo.Database("sochel")
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDatabase)
	messageRepo := repositories.NewMongoMessageRepository(mongoDatabase)

	var unreadCache *repositories.UnreadCache
	if db.Redis != nil {
		unreadCache = repositories.NewUnreadCache(db.Redis)
		log.Info("Redis unread counter cache enabled")
	}

	// --- Initialize Services ---
	hub := chat.NewHub(log)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, unreadCache, log)
	interactionService := services.NewInteractionService(userRepo, followRepo, postRepo, notificationService, log)
	chatService := services.NewChatService(messageRepo, userRepo, hub, notificationService, log)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	followHandler := handlers.NewFollowHandler(interactionService)
	followHandler.RegisterFollowRoutes(api)

	postHandler := handlers.NewPostHandler(interactionService, postRepo)
	postHandler.RegisterPostRoutes(api)

	likeHandler := handlers.NewLikeHandler(interactionService)
	likeHandler.RegisterLikeRoutes(api)

	commentHandler := handlers.NewCommentHandler(interactionService)
	commentHandler.RegisterCommentRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)

	messageHandler := handlers.NewMessageHandler(chatService)
	messageHandler.RegisterMessageRoutes(api)

	profileHandler := handlers.NewProfileHandler(userRepo, followRepo, postRepo)
	profileHandler.RegisterProfileRoutes(api)

	wsHandler := handlers.NewWSHandler(hub, chatService, log)
	wsHandler.RegisterWSRoutes(api)

	log.Info("All routes configured")
	return nil
}
