package api

import (
	"net/http"

	"mailwiki-backend/internal/auth/delivery"
	authUsecase "mailwiki-backend/internal/auth/usecase"
	syncDelivery "mailwiki-backend/internal/sync/delivery"
	"mailwiki-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, syncHandler *syncDelivery.SyncHandler, cfg *config.Config) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.POST("/google/callback", authHandler.GoogleCallback)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Config routes (protected)
		userConfig := api.Group("/config")
		userConfig.Use(delivery.AuthMiddleware(authUsecase))
		{
			userConfig.GET("", authHandler.GetConfig)
			userConfig.PUT("", authHandler.UpdateConfig)
		}

		// Cron routes, guarded by the shared cron secret
		cron := api.Group("/cron")
		cron.Use(delivery.CronAuthMiddleware(cfg))
		{
			cron.GET("/sync", syncHandler.Run)
			cron.POST("/sync", syncHandler.Run)
		}
	}
}
