package delivery

import (
	"net/http"
	"strings"

	"mailwiki-backend/internal/auth/usecase"
	"mailwiki-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		user, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// CronAuthMiddleware guards the batch sync endpoint with a shared
// secret so only the scheduler host can trigger runs.
func CronAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.CronSecret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cron secret not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "Bearer "+cfg.CronSecret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
			c.Abort()
			return
		}

		c.Next()
	}
}
