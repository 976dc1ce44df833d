package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/elemephant/backend/internal/handlers"
	"github.com/elemephant/backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	ElephantHandler    *handlers.ElephantHandler
	StoryHandler       *handlers.StoryHandler
	GenerationHandler  *handlers.GenerationHandler
	PlaceholderHandler *handlers.PlaceholderHandler
	AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("elemephant-backend"))

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/elephants", cfg.ElephantHandler.List)
		api.GET("/elephants/placeholder", cfg.PlaceholderHandler.Render)
		api.GET("/elephants/stories", cfg.StoryHandler.List)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAdmin())
	// Elephants
	protected.POST("/elephants/upload", cfg.ElephantHandler.Upload)
	protected.DELETE("/elephants/delete", cfg.ElephantHandler.Delete)
	protected.GET("/elephants/usage", cfg.ElephantHandler.Usage)
	// Generation
	protected.POST("/elephants/generate", cfg.GenerationHandler.GenerateImage)
	protected.POST("/elephants/stories/generate", cfg.GenerationHandler.GenerateStory)
	// Stories
	protected.POST("/elephants/stories", cfg.StoryHandler.Create)
	protected.DELETE("/elephants/stories", cfg.StoryHandler.Delete)

	return router
}
