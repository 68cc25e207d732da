package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/ai"
	"nudduck.com/nudduck/internal/config"
	"nudduck.com/nudduck/internal/handler"
	"nudduck.com/nudduck/internal/middleware"
	"nudduck.com/nudduck/internal/repository"
	"nudduck.com/nudduck/internal/service"
	"nudduck.com/nudduck/pkg/logger"
	"nudduck.com/nudduck/pkg/storage"
)

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	lifeGraphRepo := repository.NewLifeGraphRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		return nil, err
	}

	var searchSvc service.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient)
	}

	generator, err := ai.NewGeminiClient(context.Background())
	if err != nil {
		return nil, err
	}

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handler.NewAuthHandler(authSvc)

	rateLimits := service.RateLimits{
		Global:  cfg.RateLimitGlobal,
		Post:    cfg.RateLimitPost,
		Comment: cfg.RateLimitComment,
	}

	communitySvc := service.NewCommunityService(postRepo, searchSvc, redisClient, rateLimits)
	communityHandler := handler.NewCommunityHandler(communitySvc)

	commentSvc := service.NewCommentService(commentRepo, postRepo, userRepo, notificationSvc, redisClient, rateLimits)
	commentHandler := handler.NewCommentHandler(commentSvc)

	simulationSvc := service.NewSimulationService(chatRepo, generator)
	simulationHandler := handler.NewSimulationHandler(simulationSvc)

	profileSvc := service.NewProfileService(userRepo, lifeGraphRepo, imageStorage)
	profileHandler := handler.NewProfileHandler(profileSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	// Public reads
	api.GET("/community", communityHandler.GetPosts)
	api.GET("/community/search", communityHandler.SearchPosts)
	api.GET("/community/category/:category", communityHandler.GetPostsByCategory)
	api.GET("/community/:postId", communityHandler.GetPost)
	api.GET("/community/:postId/comments", commentHandler.GetComments)
	api.GET("/community/comments/:commentId/replies", commentHandler.GetReplies)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/community", communityHandler.CreatePost)
		protected.PATCH("/community/:postId", communityHandler.UpdatePost)
		protected.DELETE("/community/:postId", communityHandler.DeletePost)

		protected.POST("/community/:postId/comments", commentHandler.CreateComment)
		protected.POST("/community/comments/:commentId/replies", commentHandler.CreateReply)
		protected.PATCH("/community/comments/:commentId", commentHandler.UpdateComment)
		protected.DELETE("/community/comments/:commentId", commentHandler.DeleteComment)

		simulation := protected.Group("/simulation")
		{
			simulation.GET("", simulationHandler.GetUserHistory)
			simulation.GET("/:sessionId", simulationHandler.GetSessionHistory)
			simulation.POST("/start-chat", simulationHandler.StartChat)
			simulation.POST("/ask", simulationHandler.AskAI)
		}

		profile := protected.Group("/profile")
		{
			profile.GET("/me", profileHandler.GetMyProfile)
			profile.PUT("", profileHandler.UpdateProfile)
			profile.POST("/image", profileHandler.UpdateProfileImage)
			profile.DELETE("", profileHandler.DeleteAccount)

			profile.POST("/life-graphs", profileHandler.CreateLifeGraph)
			profile.GET("/life-graphs", profileHandler.GetLifeGraphs)
			profile.DELETE("/life-graphs/:graphId", profileHandler.DeleteLifeGraph)
			profile.PUT("/life-graphs/:graphId/favorite", profileHandler.SetFavoriteLifeGraph)
		}

		protected.GET("/users/:userId", profileHandler.GetUserProfile)

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.GET("/ws", notificationHandler.HandleWebSocket)
		}
	}

	return &Server{engine: router, cfg: cfg}, nil
}

// Engine exposes the underlying router, mainly for the http server and tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
