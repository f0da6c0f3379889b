package routes

import (
	"net/http"

	"taskmanager/internal/adapter/http/handler"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/config"
	"taskmanager/pkg/logging"
	"taskmanager/pkg/middlewares"
	"taskmanager/pkg/telemetry"

	"github.com/gin-gonic/gin"
)

type UserHandlersConfig struct {
	AuthHandler *handler.AuthHandler
	UserHandler *handler.UserHandler

	Tokens port.TokenProvider
	Users  port.UserService
}

type TaskHandlersConfig struct {
	TaskHandler *handler.TaskHandler

	Sessions port.SessionResolver
	Metrics  *telemetry.AppMetrics
}

// SetupUserRouter wires the user service surface: public register and
// login plus the bearer-protected profile routes.
func SetupUserRouter(handlers UserHandlersConfig, metrics *telemetry.AppMetrics, logger *logging.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	router := newRouter(metrics, logger, cfg)

	setupUserRoutes(router, handlers)

	return router
}

// SetupTaskRouter wires the task service surface behind the session
// middleware.
func SetupTaskRouter(handlers TaskHandlersConfig, metrics *telemetry.AppMetrics, logger *logging.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	router := newRouter(metrics, logger, cfg)

	setupTaskRoutes(router, handlers)

	return router
}

func newRouter(metrics *telemetry.AppMetrics, logger *logging.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middlewares.SetupGinMiddleware(router, metrics, logger, cfg)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(corsMiddleware())

	return router
}

func setupUserRoutes(router *gin.Engine, handlers UserHandlersConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "user-service"})
	})

	public := router.Group("/api")
	{
		public.POST("/register", handlers.AuthHandler.Register)
		public.POST("/login", handlers.AuthHandler.Login)
	}

	protected := router.Group("/api")
	protected.Use(middleware.BearerMiddleware(handlers.Tokens, handlers.Users))
	{
		protected.GET("/auth/validate", handlers.UserHandler.ValidateToken)
		protected.GET("/profile", handlers.UserHandler.GetProfile)
		protected.GET("/users", handlers.UserHandler.ListUsers)
	}
}

func setupTaskRoutes(router *gin.Engine, handlers TaskHandlersConfig) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	protected := router.Group("/api")
	protected.Use(middleware.SessionMiddleware(handlers.Sessions, handlers.Metrics))
	{
		protected.GET("/tasks", handlers.TaskHandler.ListTasks)
		protected.POST("/tasks", handlers.TaskHandler.CreateTask)
		protected.PATCH("/tasks/:id/done", handlers.TaskHandler.MarkDone)
		protected.PATCH("/tasks/:id/reactivate", handlers.TaskHandler.Reactivate)
		protected.DELETE("/tasks/:id", handlers.TaskHandler.DeleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-User-Email")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupUserRouterForTests skips telemetry and rate limiting.
func SetupUserRouterForTests(handlers UserHandlersConfig) *gin.Engine {
	router := newTestRouter()

	setupUserRoutes(router, handlers)

	return router
}

// SetupTaskRouterForTests skips telemetry and rate limiting.
func SetupTaskRouterForTests(handlers TaskHandlersConfig) *gin.Engine {
	router := newTestRouter()

	setupTaskRoutes(router, handlers)

	return router
}

func newTestRouter() *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	return router
}
