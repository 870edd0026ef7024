package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tripbuddy/internal/handler"
	"tripbuddy/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	RideHandler         *handler.RideHandler
	BookingHandler      *handler.BookingHandler
	NotificationHandler *handler.NotificationHandler
	ContactHandler      *handler.ContactHandler
	WSHandler           *handler.WSHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	JWTSecret           string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		// Public auth routes.
		auth := v1.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
			auth.GET("/verify", deps.AuthHandler.Verify)
			auth.POST("/resend-verification", deps.AuthHandler.ResendVerification)
		}

		// Live notification channel authenticates via query token.
		v1.GET("/ws", deps.WSHandler.Connect)

		// Everything below requires a resolved current user.
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(deps.JWTSecret))
		authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		{
			users := authed.Group("/users")
			{
				users.GET("/me", deps.UserHandler.Me)
				users.DELETE("/me", deps.UserHandler.Delete)
				users.POST("/me/offering", deps.UserHandler.ActivateOffering)
				users.POST("/me/finding", deps.UserHandler.ActivateFinding)
			}

			rides := authed.Group("/rides")
			{
				rides.POST("", deps.RideHandler.Post)
				rides.GET("", deps.RideHandler.Search)
				rides.GET("/:id", deps.RideHandler.Get)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.POST("", deps.BookingHandler.Book)
				bookings.GET("", deps.BookingHandler.List)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", deps.NotificationHandler.List)
				notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
				notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
			}

			authed.POST("/contact", deps.ContactHandler.Submit)
		}
	}

	return router
}
