package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/realtime"
	httpHandler "vendor-portal/interfaces/http"
	"vendor-portal/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	productHandler httpHandler.IProductHandler,
	moderationHandler httpHandler.IModerationHandler,
	storefrontHandler httpHandler.IStorefrontHandler,
	healthHandler httpHandler.IHealthHandler,
	userRepository repository.IUser,
	publishHub *realtime.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", healthHandler.Health)

	// Storefront connect routes; the callback arrives from the platform
	// without a bearer token.
	if storefrontHandler != nil {
		router.GET("/auth/shopify", storefrontHandler.GetAuthURL)
		router.GET("/auth/shopify/callback", storefrontHandler.Callback)
	}

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	if storefrontHandler != nil {
		api.GET("/storefront/status", storefrontHandler.Status)
	}

	products := api.Group("/products")
	{
		products.POST("", productHandler.Submit)
		products.GET("", productHandler.ListMine)
		products.GET("/:productId", productHandler.Get)
	}

	if publishHub != nil {
		api.GET("/publish/stream", publishHub.Serve)
	}

	moderation := api.Group("/moderation")
	moderation.Use(middleware.RequireAdmin())
	{
		moderation.GET("/pending", productHandler.ListPending)
		moderation.POST("/products/:productId/approve", moderationHandler.Approve)
		moderation.POST("/products/:productId/reject", moderationHandler.Reject)
		moderation.GET("/products/:productId/publish-status", moderationHandler.PublishStatus)
		moderation.GET("/products/:productId/audits", moderationHandler.AuditLog)
	}

	return router
}
